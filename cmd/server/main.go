package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/ceylontrails/tourism-backend/internal/cache"
	"github.com/ceylontrails/tourism-backend/internal/config"
	"github.com/ceylontrails/tourism-backend/internal/database"
	"github.com/ceylontrails/tourism-backend/internal/handlers"
	"github.com/ceylontrails/tourism-backend/internal/metrics"
	"github.com/ceylontrails/tourism-backend/internal/middleware"
	"github.com/ceylontrails/tourism-backend/internal/services"
	"github.com/ceylontrails/tourism-backend/pkg/jwt"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting CeylonTrails Tourism Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	// Set log level
	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	// Set Gin mode
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	// Initialize database connection
	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}
	logger.Info("Database connection established")

	// Register Prometheus collectors
	metrics.Register()

	// Initialize repositories
	bookingRepo := database.NewBookingRepository(db)
	paymentRepo := database.NewPaymentRepository(db)
	itineraryRepo := database.NewItineraryRepository(db)
	catalogRepo := database.NewCatalogRepository(db)
	auditRepo := database.NewBookingAuditRepository(db, logger)

	// Optional Redis cache for public share-code reads. Leaving
	// REDIS_ADDRESS unset runs the server without caching.
	var itineraryCache services.ItineraryCache
	if cfg.Redis.Address != "" {
		logger.Infof("Connecting to Redis at %s...", cfg.Redis.Address)
		redisClient := cache.NewRedisClient(cfg.Redis)

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := cache.Ping(pingCtx, redisClient); err != nil {
			logger.Warnf("Redis unreachable, running without itinerary cache: %v", err)
		} else {
			itineraryCache = cache.NewItineraryCache(redisClient, cfg.Redis.CacheTTL)
			logger.Info("Redis connection established")
		}
		cancel()
	} else {
		logger.Info("REDIS_ADDRESS not set, itinerary cache disabled")
	}

	// Initialize services
	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	bookingService := services.NewBookingService(bookingRepo, logger)
	paymentService := services.NewPaymentService(paymentRepo, bookingRepo, logger)
	lifecycleService := services.NewLifecycleService(
		bookingService,
		paymentService,
		bookingRepo,
		paymentRepo,
		auditRepo,
		logger,
	)
	itineraryService := services.NewItineraryService(itineraryRepo, itineraryCache, logger)
	invoiceService := services.NewInvoiceService(bookingRepo, paymentRepo, catalogRepo, logger)
	logger.Info("Services initialized")

	// Initialize handlers
	bookingHandler := handlers.NewBookingHandler(lifecycleService, bookingService, invoiceService, auditRepo, logger)
	itineraryHandler := handlers.NewItineraryHandler(itineraryService, logger)
	catalogHandler := handlers.NewCatalogHandler(catalogRepo)

	// Initialize Gin router
	router := gin.New()

	// Middleware
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))
	router.Use(middleware.MetricsMiddleware())
	router.Use(middleware.RequestTimeout(cfg.Server.RequestTimeout))

	// CORS configuration
	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     cfg.CORS.AllowedMethods,
		AllowHeaders:     cfg.CORS.AllowedHeaders,
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	// Health check and metrics endpoints
	router.GET("/health", healthCheckHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Public catalog listings
		destinations := v1.Group("/destinations")
		{
			destinations.GET("", catalogHandler.ListDestinations)
			destinations.GET("/:id", catalogHandler.GetDestination)
		}
		events := v1.Group("/events")
		{
			events.GET("", catalogHandler.ListEvents)
			events.GET("/:id", catalogHandler.GetEvent)
		}

		// Public shared itinerary view
		v1.GET("/shared/:code", itineraryHandler.GetSharedItinerary)

		// Booking routes (all protected)
		bookings := v1.Group("/bookings")
		bookings.Use(middleware.AuthMiddleware(jwtService))
		{
			bookings.POST("", bookingHandler.PlaceBooking)
			bookings.GET("", bookingHandler.ListBookings)
			bookings.GET("/:id", bookingHandler.GetBooking)
			bookings.POST("/:id/cancel", bookingHandler.CancelBooking)
			bookings.POST("/:id/payment-proof", bookingHandler.UploadPaymentProof)
			bookings.POST("/:id/complete-payment", bookingHandler.CompletePayment)
			bookings.POST("/:id/fail-payment", bookingHandler.FailPayment)
			bookings.POST("/:id/refund", bookingHandler.RefundPayment)
			bookings.GET("/:id/invoice", bookingHandler.GetInvoice)
			bookings.GET("/:id/events", bookingHandler.GetBookingEvents)
		}

		// Itinerary routes (all protected)
		itineraries := v1.Group("/itineraries")
		itineraries.Use(middleware.AuthMiddleware(jwtService))
		{
			itineraries.POST("", itineraryHandler.CreateItinerary)
			itineraries.GET("", itineraryHandler.ListItineraries)
			itineraries.GET("/:id", itineraryHandler.GetItinerary)
			itineraries.PUT("/:id", itineraryHandler.UpdateItinerary)
			itineraries.DELETE("/:id", itineraryHandler.DeleteItinerary)
			itineraries.POST("/:id/destinations", itineraryHandler.AddDestination)
			itineraries.DELETE("/:id/destinations/:destinationId", itineraryHandler.RemoveDestination)
		}
	}

	// Configure HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Errorf("Server forced to shutdown: %v", err)
	}

	logger.Info("Server exited successfully")
}

// requestLogger middleware for logging HTTP requests
func requestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)

		fields := logrus.Fields{
			"status":     c.Writer.Status(),
			"method":     c.Request.Method,
			"path":       path,
			"query":      query,
			"ip":         c.ClientIP(),
			"latency_ms": latency.Milliseconds(),
			"user_agent": c.Request.UserAgent(),
		}

		if userCtx, exists := middleware.GetUserContext(c); exists {
			fields["user_id"] = userCtx.UserID
		}

		entry := logger.WithFields(fields)

		status := c.Writer.Status()
		switch {
		case status >= 500:
			entry.Error("Request completed with server error")
		case status >= 400:
			entry.Warn("Request completed with client error")
		default:
			entry.Info("Request completed successfully")
		}
	}
}

// healthCheckHandler returns a health check endpoint
func healthCheckHandler(db database.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		dbStatus := "healthy"
		if err := db.Ping(); err != nil {
			dbStatus = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": dbStatus,
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  dbStatus,
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
