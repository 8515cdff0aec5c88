package middleware

import (
	"net/http"

	"github.com/ariebrainware/aba-tracker/config"
	"github.com/ariebrainware/aba-tracker/events"
	"github.com/ariebrainware/aba-tracker/storage"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const (
	dbKey         = "db"
	configKey     = "config"
	imageStoreKey = "image_store"
	publisherKey  = "event_publisher"
)

// CORSMiddleware configures CORS headers for incoming requests.
func CORSMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE, PATCH")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "X-Requested-With, Content-Type, Authorization")
		c.Writer.Header().Set("Access-Control-Max-Age", "86400")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")

		// For preflight requests, respond with 204 and abort further processing.
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// DatabaseMiddleware makes db available to handlers through GetDB.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db != nil {
			c.Set(dbKey, db.WithContext(c.Request.Context()))
		}
		c.Next()
	}
}

// GetDB returns the request-scoped database, or nil when none was injected.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(dbKey)
	if !ok {
		return nil
	}
	db, _ := v.(*gorm.DB)
	return db
}

// ConfigMiddleware makes cfg available to handlers through GetConfig.
func ConfigMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(configKey, cfg)
		c.Next()
	}
}

// GetConfig returns the injected configuration, or nil.
func GetConfig(c *gin.Context) *config.Config {
	v, ok := c.Get(configKey)
	if !ok {
		return nil
	}
	cfg, _ := v.(*config.Config)
	return cfg
}

// ImageStoreMiddleware makes the upload backend available through GetImageStore.
func ImageStoreMiddleware(store storage.ImageStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(imageStoreKey, store)
		c.Next()
	}
}

// GetImageStore returns the injected image store, or nil.
func GetImageStore(c *gin.Context) storage.ImageStore {
	v, ok := c.Get(imageStoreKey)
	if !ok {
		return nil
	}
	s, _ := v.(storage.ImageStore)
	return s
}

// PublisherMiddleware makes the event publisher available through GetPublisher.
func PublisherMiddleware(p events.Publisher) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(publisherKey, p)
		c.Next()
	}
}

// GetPublisher returns the injected publisher, falling back to a NopPublisher.
func GetPublisher(c *gin.Context) events.Publisher {
	if v, ok := c.Get(publisherKey); ok {
		if p, ok := v.(events.Publisher); ok && p != nil {
			return p
		}
	}
	return events.NopPublisher{}
}
