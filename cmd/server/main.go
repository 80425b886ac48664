package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"theorie-backend-go/internal/api"
	"theorie-backend-go/internal/config"
	"theorie-backend-go/internal/content"
	"theorie-backend-go/internal/core"
	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/middleware"
	"theorie-backend-go/internal/payment"
	"theorie-backend-go/pkg/cache"
	"theorie-backend-go/pkg/mailer"
)

func main() {
	// --- 1. Initialize Logger (Zap) ---
	// NewDevelopment gives human-readable output; switch to zap.NewProduction()
	// or a custom configuration for production deployments.
	zapLogger, err := zap.NewDevelopment()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()
	zapLogger.Info("Zap logger initialized successfully.")

	// --- 2. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to load application configuration", zap.Error(err))
	}
	zapLogger.Info("Application configuration loaded successfully.")

	// --- 3. Initialize Firebase Admin SDK (includes Firestore and Auth clients) ---
	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancelInitCtx()
	if err := db.InitFirestore(initCtx, appConfig); err != nil {
		zapLogger.Fatal("CRITICAL_ERROR: Failed to initialize Firestore and Firebase Admin SDK", zap.Error(err))
	}
	zapLogger.Info("Firebase Admin SDK (Firestore, Auth) initialized successfully.")

	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firestore client is nil after initialization. Application cannot start.")
	}
	if firebaseAuthClient == nil {
		zapLogger.Fatal("CRITICAL_ERROR: Firebase Auth client is nil after initialization. Application cannot start.")
	}

	// --- 4. Initialize Repositories ---
	userRepo := db.NewFirestoreUserRepository(firestoreClient)
	attemptRepo := db.NewFirestoreAttemptRepository(firestoreClient)
	examRepo := db.NewFirestoreExamRepository(firestoreClient)
	lessonRepo := db.NewFirestoreLessonRepository(firestoreClient)
	signRepo := db.NewFirestoreSignRepository(firestoreClient)
	webhookRepo := db.NewFirestoreWebhookEventRepository(firestoreClient)
	zapLogger.Info("Repositories initialized successfully.")

	// Embedded exams and signs keep the read paths alive when Firestore is
	// unreachable.
	staticStore := content.NewStaticStore()

	// --- 5. Initialize Cache (optional) ---
	var contentCache cache.Cache
	if appConfig.RedisAddr != "" {
		contentCache, err = cache.NewRedisCache(cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
		})
		if err != nil {
			// The cache is an optimization, not a dependency.
			zapLogger.Warn("Redis unavailable, continuing without cache", zap.Error(err))
			contentCache = cache.Noop()
		} else {
			zapLogger.Info("Redis cache initialized", zap.String("addr", appConfig.RedisAddr))
		}
	} else {
		contentCache = cache.Noop()
		zapLogger.Info("REDIS_ADDR not configured, cache disabled.")
	}

	// --- 6. Initialize Mailer (optional) and Payment Client ---
	mail := mailer.New(mailer.Config{
		Host:     appConfig.SMTPHost,
		Port:     appConfig.SMTPPort,
		Username: appConfig.SMTPUsername,
		Password: appConfig.SMTPPassword,
		From:     appConfig.MailFrom,
	})
	if mail == nil {
		zapLogger.Info("SMTP_HOST not configured, confirmation mail disabled.")
	}

	paymentClient := payment.NewClient(appConfig.PaymentAPIURL, appConfig.PaymentAPIKey)

	// --- 7. Initialize Services ---
	userService := core.NewUserService(userRepo, attemptRepo)
	examService := core.NewExamService(examRepo, staticStore, attemptRepo, userRepo)
	lessonService := core.NewLessonService(lessonRepo, userRepo)
	signService := core.NewSignService(signRepo, staticStore.SignRepository(), contentCache)
	billingService := core.NewBillingService(
		userRepo,
		webhookRepo,
		paymentClient,
		mail,
		appConfig.PaymentWebhookSecret,
		appConfig.CheckoutRedirectURL,
	)
	zapLogger.Info("Core services initialized successfully.")

	// --- 8. Setup Gin HTTP Engine ---
	if strings.ToLower(appConfig.GinMode) == "release" {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	// gin.New() keeps control over the middleware stack.
	router := gin.New()

	// --- 9. Apply Global Middleware (Order is important) ---
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	// LoadConfig guarantees ClientURL is set.
	router.Use(middleware.CORSMiddleware(appConfig))
	zapLogger.Info("CORS Middleware enabled", zap.String("clientURL", appConfig.ClientURL))

	// --- 10. Setup API Routes ---
	api.SetupRoutes(
		router,
		appConfig,
		zapLogger,
		userService,
		examService,
		lessonService,
		signService,
		billingService,
	)

	// --- 11. Configure and Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:    serverAddr,
		Handler: router,
	}

	zapLogger.Info("Starting HTTP server...", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 12. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)

	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	// Give active connections time to finish before the server is closed.
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()

	zapLogger.Info("Attempting graceful shutdown of HTTP server...")
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Fatal("Server forced to shutdown due to error during graceful shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting gracefully.")
}
