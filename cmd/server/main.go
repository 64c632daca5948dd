package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vms-backend/internal/auth"
	"vms-backend/internal/config"
	"vms-backend/internal/database"
	"vms-backend/internal/db"
	"vms-backend/internal/handlers"
	"vms-backend/internal/health"
	h "vms-backend/internal/http"
	"vms-backend/internal/mailer"
	"vms-backend/internal/middleware"
	"vms-backend/internal/monitoring"
	"vms-backend/internal/qr"
	"vms-backend/internal/repositories"
	"vms-backend/internal/services"
	"vms-backend/internal/ws"
	"vms-backend/migrations"
)

func main() {
	// Parse command-line flags
	port := flag.Int("port", 0, "Server port (overrides config)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	if *port != 0 {
		cfg.Server.Port = *port
	}

	// Connect to database and run migrations
	pool := db.Connect(cfg)
	defer pool.Close()

	migrator := database.NewMigrator(pool, migrations.FS)
	if err := migrator.RunMigrations(context.Background()); err != nil {
		log.Fatalf("Migrations failed: %v", err)
	}

	// Initialize JWT manager
	jwtManager := auth.NewJWTManager(cfg)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(pool)
	staffRepo := repositories.NewStaffRepository(pool)
	visitorRepo := repositories.NewVisitorRepository(pool)
	visitLogRepo := repositories.NewVisitLogRepository(pool)

	// QR generation and mail delivery
	qrGen, err := qr.NewGenerator(cfg.QR.Folder)
	if err != nil {
		log.Fatalf("Failed to initialize QR generator: %v", err)
	}
	var mail mailer.Mailer
	if cfg.SMTP.Enabled {
		mail = mailer.NewSMTPMailer(cfg.SMTP)
	} else {
		mail = mailer.NewMockMailer()
	}

	// Websocket hub for live dashboard events
	hub := ws.NewHub(cfg.CORS.AllowedOrigins)
	go hub.Run()

	// Initialize services
	userService := services.NewUserService(userRepo, jwtManager)
	staffService := services.NewStaffService(staffRepo, userRepo, visitorRepo)
	visitorService := services.NewVisitorService(visitorRepo, visitLogRepo, staffRepo, qrGen, mail, hub)
	dashboardService := services.NewDashboardService(visitorRepo)
	exportService := services.NewExportService(visitorRepo)

	// Background overdue sweeper
	sweeper := services.NewOverdueSweeper(
		visitorService,
		time.Duration(cfg.Sweeper.IntervalMinutes)*time.Minute,
		time.Duration(cfg.Sweeper.CutoffHours)*time.Hour,
	)
	sweeper.Start()
	defer sweeper.Stop()

	// Monitoring: resource sampler plus per-request metrics
	monitoringStore := monitoring.NewStore(pool)
	monitoringService := monitoring.NewMonitoringService(monitoringStore)
	monitoringService.StartCollection()
	defer monitoringService.StopCollection()

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtManager)
	apiLogging := middleware.NewAPILoggingMiddleware(monitoringStore)

	// Initialize handlers
	router := h.NewRouter(h.Deps{
		Config:            cfg,
		Auth:              authMiddleware,
		APILogging:        apiLogging,
		AuthHandler:       handlers.NewAuthHandler(userService),
		UserHandler:       handlers.NewUserHandler(userService),
		VisitorHandler:    handlers.NewVisitorHandler(visitorService, exportService),
		StaffHandler:      handlers.NewStaffHandler(staffService),
		DashboardHandler:  handlers.NewDashboardHandler(dashboardService),
		MonitoringHandler: handlers.NewMonitoringHandler(monitoringStore),
		HealthHandler:     handlers.NewHealthHandler(health.NewHealthChecker(pool)),
		Hub:               hub,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("✓ Server running on %s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("→ Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Forced shutdown: %v", err)
	}
}
