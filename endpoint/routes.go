package endpoint

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/ariebrainware/aba-tracker/config"
	"github.com/ariebrainware/aba-tracker/events"
	"github.com/ariebrainware/aba-tracker/middleware"
	"github.com/ariebrainware/aba-tracker/observability"
	"github.com/ariebrainware/aba-tracker/storage"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Options carries the dependencies of the HTTP API.
type Options struct {
	Config     *config.Config
	DB         *gorm.DB
	ImageStore storage.ImageStore
	Publisher  events.Publisher
}

// NewRouter builds the gin engine with every route of the API.
func NewRouter(opts Options) *gin.Engine {
	RegisterValidators()
	cfg := opts.Config
	if cfg == nil {
		cfg = &config.Config{AppName: "ABA Tracker"}
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = events.NopPublisher{}
	}

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.Metrics())

	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": fmt.Sprintf("Welcome to %s!", cfg.AppName),
		})
	})
	router.GET("/healthz", healthz(opts.DB))
	router.GET("/metrics", gin.WrapH(observability.Handler()))
	if cfg.UploadDriver == "local" && strings.HasPrefix(cfg.UploadBaseURL, "/") && cfg.UploadDir != "" {
		router.Static(cfg.UploadBaseURL, cfg.UploadDir)
	}

	api := router.Group("/api")
	api.Use(
		middleware.DatabaseMiddleware(opts.DB),
		middleware.ConfigMiddleware(cfg),
		middleware.ImageStoreMiddleware(opts.ImageStore),
		middleware.PublisherMiddleware(publisher),
		middleware.EndpointCallLogger(),
	)

	auth := api.Group("/auth")
	{
		limited := middleware.RateLimiter(middleware.RateLimitConfigFrom(cfg))
		auth.POST("/login", limited, Login)
		auth.POST("/register", limited, Register)
		auth.DELETE("/logout", middleware.ValidateLoginToken(), Logout)
	}

	admin := api.Group("/admin", middleware.AdminOnly()...)
	{
		admin.POST("/create-therapist", CreateTherapist)
		admin.POST("/create-patient", CreatePatient)
		admin.POST("/assign-therapist", AssignTherapist)
		admin.DELETE("/unassign-therapist", UnassignTherapist)
		admin.GET("/therapists", ListTherapists)
		admin.GET("/patients", ListPatients)
	}

	therapist := api.Group("/therapist", middleware.TherapistOnly()...)
	{
		therapist.GET("/patients", ListMyPatients)
		therapist.GET("/patient/:id", GetPatient)
		therapist.GET("/patient/:id/sessions", ListPatientSessions)

		therapist.POST("/create-goal", CreateGoal)
		therapist.GET("/my-goals", ListMyGoals)
		therapist.GET("/goals", ListMyGoals)
		therapist.GET("/my-images", ListMyImages)
		therapist.PUT("/goal/:id", UpdateGoal)
		therapist.DELETE("/goal/:id", DeleteGoal)
		therapist.GET("/goal/:id/images", GetGoalImages)
		therapist.POST("/assign-goal", AssignGoal)
		therapist.DELETE("/unassign-goal", UnassignGoal)
		therapist.POST("/upload-image", UploadImage)

		therapist.POST("/sessions", RecordSession)
		therapist.POST("/session", StartSession)
		therapist.POST("/session/:id/results", RecordSessionResults)
		therapist.PUT("/session/:id/note", SetSessionNote)
	}

	return router
}

func healthz(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Database not configured", Err: fmt.Errorf("db is nil")})
			return
		}
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			util.CallServerError(c, util.APIErrorParams{Msg: "Database unreachable", Err: err})
			return
		}
		util.CallSuccessOK(c, util.APISuccessParams{Msg: "ok", Data: map[string]interface{}{"status": "ok"}})
	}
}
