package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/hypernova-labs/einvoice-service/internal/api"
	"github.com/hypernova-labs/einvoice-service/internal/config"
	"github.com/hypernova-labs/einvoice-service/internal/database"
	"github.com/hypernova-labs/einvoice-service/internal/email"
	"github.com/hypernova-labs/einvoice-service/internal/myinvois"
	"github.com/hypernova-labs/einvoice-service/internal/services"
	"github.com/hypernova-labs/einvoice-service/internal/workflows"
	"github.com/sirupsen/logrus"
)

func main() {
	// Cargar configuración
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	// Configurar logging
	logger := setupLogger(cfg)
	logger.Info("Starting e-Invoice Service...")

	// Configurar modo de Gin
	if cfg.IsDevelopment() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	startupCtx, cancelStartup := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStartup()

	// Cliente de MyInvois
	creds := myinvois.CredentialsFromConfig(cfg)
	if !creds.HasClientCredentials() {
		logger.Warn("MyInvois client credentials not provided, submissions will fail with AuthError")
	}
	client := myinvois.NewClient(creds, myinvois.Options{
		AuthTimeout:   cfg.MyInvois.AuthTimeout,
		SubmitTimeout: cfg.MyInvois.SubmitTimeout,
		QueryTimeout:  cfg.MyInvois.QueryTimeout,
		Logger:        logger,
	})

	deps := services.Dependencies{
		QR:        services.NewQRService(cfg.MyInvois.PortalURL),
		DemoDelay: cfg.MyInvois.DemoDelay,
	}

	healthChecks := map[string]api.HealthChecker{}

	// Conectar a la base de datos
	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.Connect(startupCtx, cfg)
		if err != nil {
			logger.Fatalf("Error connecting to database: %v", err)
		}
		defer db.Close()
		db.LogStats(logger)
		healthChecks["database"] = db

		if err := db.EnsureSchema(startupCtx); err != nil {
			logger.Fatalf("Error creating database schema: %v", err)
		}
		deps.Ledger = database.NewSubmissionRepository(db, logger)
		logger.Info("Submission ledger enabled")
	} else {
		logger.Warn("Database disabled, submissions will not be recorded")
	}

	// Conectar a Redis
	if cfg.Redis.Enabled {
		redis, err := database.ConnectRedis(startupCtx, cfg)
		if err != nil {
			logger.Warnf("Error connecting to Redis: %v", err)
		} else {
			defer redis.Close()
			healthChecks["redis"] = redis
			deps.Idempotency = database.NewIdempotencyStore(redis, cfg.Redis.IdempotencyTTL, logger)
		}
	}
	if deps.Idempotency == nil {
		logger.Info("Using in-memory idempotency store")
		deps.Idempotency = database.NewMemoryIdempotencyStore(cfg.Redis.IdempotencyTTL)
	}

	// Archivo de documentos
	if cfg.ArchiveEnabled() {
		archiveClient, err := database.NewArchiveClient(startupCtx, &cfg.Storage, logger)
		if err != nil {
			logger.Warnf("Error initializing archive client: %v", err)
		} else {
			if err := archiveClient.HealthCheck(startupCtx); err != nil {
				logger.Warnf("Archive health check failed: %v", err)
			} else {
				logger.Info("Archive storage connection healthy")
			}
			healthChecks["archive"] = archiveClient
			deps.Archive = services.NewArchiveService(archiveClient, services.NewReceiptGenerator(deps.QR, logger), logger)
		}
	} else {
		logger.Warn("Archive storage credentials not provided, documents will not be archived")
	}

	// Inicializar servicio de Resend
	if cfg.Email.ResendAPIKey != "" {
		deps.Notifier = email.NewResendService(cfg.Email.ResendAPIKey, cfg.Email.From, cfg.MyInvois.PortalURL, logger)
		logger.Info("Resend service initialized successfully")
	} else {
		logger.Warn("Resend API key not provided, email notifications will not be sent")
	}

	// Inicializar cliente de Inngest
	inngestClient, err := workflows.NewInngestClient(cfg, logger)
	if err != nil {
		logger.Warnf("Error initializing Inngest client: %v", err)
		inngestClient = nil
	} else {
		deps.Events = inngestClient
	}

	einvoiceService := services.NewEInvoiceService(client, deps, logger)

	var inngestHandler http.Handler
	if inngestClient != nil {
		inngestHandler, err = inngestClient.RegisterWorkflows(einvoiceService)
		if err != nil {
			logger.Warnf("Error registering workflows: %v", err)
			inngestHandler = nil
		}
	} else {
		logger.Warn("Inngest credentials not provided, failed submissions will not be retried")
	}

	// Inicializar API
	apiHandler := api.NewAPI(einvoiceService, deps.QR, cfg.Server.Env, logger)

	// Configurar router
	router := setupRouter(apiHandler, inngestHandler, healthChecks, cfg, logger)

	// Crear servidor HTTP
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Canal para señales de terminación
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Iniciar servidor en goroutine
	go func() {
		logger.Infof("Server starting on %s:%s", cfg.Server.Host, cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Error starting server: %v", err)
		}
	}()

	// Esperar señal de terminación
	<-quit
	logger.Info("Shutting down server...")

	// Contexto con timeout para shutdown graceful
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown graceful del servidor
	if err := server.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	// Esperar archivado y notificaciones pendientes
	einvoiceService.Wait()

	if db != nil {
		db.LogStats(logger)
	}

	logger.Info("Server exited")
}

// setupLogger configura el logger según la configuración
func setupLogger(cfg *config.Config) *logrus.Logger {
	logger := logrus.New()

	// Configurar nivel de log
	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	// Configurar formato
	if cfg.Logging.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}

// setupRouter configura el router principal
func setupRouter(apiHandler *api.API, inngestHandler http.Handler, healthChecks map[string]api.HealthChecker, cfg *config.Config, logger *logrus.Logger) *gin.Engine {
	router := gin.New()

	// Middleware global
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(api.CorrelationIDMiddleware(logger))
	router.Use(api.CORSMiddleware(cfg.Server.CORSOrigins))

	// Health check
	router.GET("/health", api.SystemHealth(healthChecks, logger))

	// Endpoints de e-Invoice
	apiHandler.RegisterRoutes(router)

	// Workflows de Inngest
	if inngestHandler != nil {
		router.Any("/api/inngest", gin.WrapH(inngestHandler))
	}

	return router
}
