package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ariebrainware/aba-tracker/config"
	"github.com/ariebrainware/aba-tracker/endpoint"
	"github.com/ariebrainware/aba-tracker/events"
	"github.com/ariebrainware/aba-tracker/storage"
	"github.com/ariebrainware/aba-tracker/util"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx)
	},
}

func serve(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	util.SetSecurityLoggerDB(db)

	if _, err := config.ConnectRedis(cfg); err != nil {
		// Rate limiting and token revocation degrade without Redis.
		log.Printf("Warning: Redis unavailable: %v", err)
	}

	if cfg.GeoIPDBPath != "" {
		if err := util.InitGeoIP(cfg.GeoIPDBPath); err != nil {
			log.Printf("Warning: GeoIP disabled: %v", err)
		} else {
			defer util.CloseGeoIP()
		}
	}

	images, err := storage.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("image storage: %w", err)
	}

	publisher := events.New(cfg)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Printf("Error closing event publisher: %v", err)
		}
	}()

	gin.SetMode(cfg.GinMode)
	router := endpoint.NewRouter(endpoint.Options{
		Config:     cfg,
		DB:         db,
		ImageStore: images,
		Publisher:  publisher,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("%s listening on %s", cfg.AppName, srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
