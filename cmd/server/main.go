package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/shinasport/terminal-booking-backend/internal/config"
	"github.com/shinasport/terminal-booking-backend/internal/database"
	"github.com/shinasport/terminal-booking-backend/internal/handlers"
	"github.com/shinasport/terminal-booking-backend/internal/middleware"
	"github.com/shinasport/terminal-booking-backend/internal/services"
	"github.com/shinasport/terminal-booking-backend/pkg/jwt"
	"github.com/sirupsen/logrus"
)

var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	logger.Info("Starting Terminal Booking Backend")
	logger.Infof("Version: %s, Build Time: %s", version, buildTime)

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	logLevel, err := logrus.ParseLevel(cfg.Server.LogLevel)
	if err != nil {
		logger.Warn("Invalid log level, using INFO")
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}

	logger.Info("Connecting to database...")
	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	logger.Info("Database connection established")

	logger.Info("Initializing services...")
	jwtService := jwt.NewService(
		cfg.JWT.Secret,
		cfg.JWT.RefreshSecret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)
	userRepository := database.NewUserRepository(db)
	refreshTokenRepository := database.NewRefreshTokenRepository(db)
	bookingRepository := database.NewBookingRepository(db)
	portRepository := database.NewPortRepository(db)
	carrierRepository := database.NewCarrierRepository(db)

	authService := services.NewAuthService(userRepository, cfg.Security.BcryptCost, cfg.Security.AutoVerifyEmail)
	bookingService := services.NewBookingService(bookingRepository)
	receiptService := services.NewReceiptService(cfg.Receipts.Enabled, cfg.Receipts.TerminalName)
	if cfg.Receipts.Enabled {
		logger.Info("PDF receipt rendering enabled")
	} else {
		logger.Info("PDF receipt rendering disabled")
	}
	logger.Info("Services initialized")

	authHandler := handlers.NewAuthHandler(jwtService, authService, userRepository, refreshTokenRepository, cfg)
	bookingHandler := handlers.NewBookingHandler(bookingRepository, bookingService, receiptService)
	portHandler := handlers.NewPortHandler(portRepository)
	carrierHandler := handlers.NewCarrierHandler(carrierRepository)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", healthCheckHandler(db))

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/register", authHandler.Register)
			auth.POST("/login", authHandler.Login)
			auth.POST("/refresh", authHandler.Refresh)

			protected := auth.Group("")
			protected.Use(middleware.AuthMiddleware(jwtService))
			{
				protected.POST("/logout", authHandler.Logout)
				protected.GET("/me", authHandler.Me)

				admin := protected.Group("/users")
				admin.Use(middleware.RequireAdmin())
				{
					admin.GET("", authHandler.ListUsers)
					admin.PATCH("/:id", authHandler.UpdateUser)
					admin.DELETE("/:id", authHandler.DeleteUser)
				}
			}
		}

		bookings := api.Group("/bookings")
		{
			bookings.GET("", bookingHandler.List)
			bookings.POST("", middleware.OptionalAuth(jwtService), bookingHandler.Create)
			bookings.GET("/search", bookingHandler.Search)
			bookings.GET("/:reference", bookingHandler.GetByReference)
			bookings.GET("/:reference/receipt/pdf", bookingHandler.ReceiptPDF)
		}

		ports := api.Group("/ports")
		{
			ports.GET("", portHandler.List)
			ports.POST("", portHandler.Create)
			ports.GET("/:id", portHandler.Get)
			ports.PUT("/:id", portHandler.Update)
			ports.PATCH("/:id", portHandler.Update)
			ports.DELETE("/:id", portHandler.Delete)
		}

		carriers := api.Group("/carriers")
		{
			carriers.GET("", carrierHandler.List)
			carriers.POST("", carrierHandler.Create)
			carriers.GET("/:id", carrierHandler.Get)
			carriers.PUT("/:id", carrierHandler.Update)
			carriers.PATCH("/:id", carrierHandler.Update)
			carriers.DELETE("/:id", carrierHandler.Delete)
		}
	}

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Infof("Server starting on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

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
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"database": "unhealthy",
				"error":    err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"database":  "healthy",
			"version":   version,
			"timestamp": time.Now().Unix(),
		})
	}
}
