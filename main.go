package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"caravan-share/apiclient"
	"caravan-share/config"
	"caravan-share/controllers"
	"caravan-share/middleware"
	"caravan-share/routes"
	"caravan-share/services"
)

func main() {
	// Load .env (optional)
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  .env not found or couldn't load it; continuing with environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("❌ %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	api, err := apiclient.New(cfg.API.BaseURL, cfg.API.Timeout)
	if err != nil {
		log.Fatalf("❌ caravan API client: %v", err)
	}
	log.Printf("✅ Caravan API at %s", api.BaseURL())
	if cfg.API.LogoutPath == "" {
		log.Println("⚠️  CARAVAN_LOGOUT_PATH not set; logout will only clear local session state")
	}

	// Booking journal is optional
	var journal *services.BookingJournal
	if cfg.Journal.Enabled() {
		db, err := config.ConnectJournal(cfg.Journal, !cfg.IsProduction())
		if err != nil {
			log.Fatalf("❌ Booking journal connect failed: %v", err)
		}
		journal = services.NewBookingJournal(db)
		log.Printf("✅ Booking journal connected (database %s)", cfg.Journal.DBName)
	} else {
		log.Println("ℹ️  No MySQL configured; booking journal disabled")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize services
	registry := services.NewSessionRegistry(api, cfg.API.LogoutPath, cfg.Session.IdleTTL)
	go registry.Run(ctx, cfg.Session.SweepInterval)

	listingReader := services.NewListingReader(api)
	var recorder services.AttemptRecorder
	if journal != nil {
		recorder = journal
	}
	submitter := services.NewReservationSubmitter(recorder)

	loginLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				loginLimiter.Prune(time.Hour)
			}
		}
	}()

	cookie := middleware.CookieOptions{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Session.SecureCookie,
		MaxAge: int(cfg.Session.IdleTTL.Seconds()),
	}

	// Build router
	router := routes.SetupRouter(routes.Deps{
		Registry:     registry,
		Cookie:       cookie,
		Origins:      cfg.CORS.AllowedOrigins,
		LoginLimiter: loginLimiter,
		Sessions:     controllers.NewSessionController(registry, cookie),
		Listings:     controllers.NewListingController(listingReader),
		Reservations: controllers.NewReservationController(submitter, journal),
	})

	addr := ":" + cfg.Server.Port
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.API.Timeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("🚀 Server starting on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ ListenAndServe(): %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("⚠️  Shutdown signal received, shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}
