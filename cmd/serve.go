package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"hotel-management/config"
	"hotel-management/middleware"
	"hotel-management/observability"
	"hotel-management/routes"
	"hotel-management/services"
	"hotel-management/session"
	"hotel-management/utils"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web server",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.close()
	log := a.log

	if err := a.migrate(); err != nil {
		return err
	}

	rdb, err := config.ConnectRedis(ctx, a.cfg.Redis)
	if err != nil {
		return err
	}
	defer rdb.Close()

	codec := session.NewCookieCodec(a.cfg.Session.Secret)
	sessions := session.NewManager(session.NewRedisStore(rdb, ""), codec, session.Options{
		CookieName: a.cfg.Session.CookieName,
		TTL:        a.cfg.Session.TTL,
		Secure:     a.cfg.Session.Secure,
	}, log.Named("session"))

	limiter := middleware.NewIPRateLimiter(a.cfg.RateLimit.PerMinute, a.cfg.RateLimit.Burst, 5*time.Minute)
	defer limiter.Stop()

	if a.cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if !a.cfg.SMTP.Enabled() {
		log.Warn("SMTP is not configured; reset codes are only logged")
	}

	router, err := routes.SetupRouter(routes.Deps{
		Config:   a.cfg,
		DB:       a.db,
		Sessions: sessions,
		Mailer:   utils.NewSMTPMailer(a.cfg.SMTP, log.Named("mail")),
		Avatars:  services.NewAvatarStore(a.cfg),
		Hasher:   a.hasher,
		Metrics:  observability.NewMetrics(),
		Limiter:  limiter,
		Log:      log,
	})
	if err != nil {
		return fmt.Errorf("setup router: %w", err)
	}

	srv := &http.Server{
		Addr:              ":" + a.cfg.Port,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutdown signal received, shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server stopped gracefully")
	return nil
}
