package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"theorie-backend-go/internal/config"
	"theorie-backend-go/internal/core"
	"theorie-backend-go/internal/db"
	"theorie-backend-go/internal/middleware"
)

// SetupRoutes configures all the application routes with their handlers and
// middleware. Global middleware (Logging, Recovery, CORS) are applied to the
// router instance before this function is called, in main.go.
//
// Content routes (exams, lessons, signs, entitlement) use OptionalToken so
// anonymous visitors can browse; the services decide what they may actually
// do. Profile, submission and checkout routes require a verified token.
func SetupRoutes(
	router *gin.Engine,
	appConfig *config.Config,
	logger *zap.Logger,
	userService core.UserService,
	examService core.ExamService,
	lessonService core.LessonService,
	signService core.SignService,
	billingService core.BillingService,
) {
	// The Firebase Auth client must be available after db.InitFirestore().
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firebaseAuthClient == nil {
		logger.Fatal("CRITICAL_SETUP_ERROR: Firebase Auth client is not initialized. AuthMiddleware cannot be created, and routes will not be set up.")
		panic("Firebase Auth client is nil during route setup. Ensure db.InitFirestore() was called and succeeded.")
	}
	authMW := middleware.NewAuthMiddleware(firebaseAuthClient)

	authHandler := NewAuthHandler(userService)
	userHandler := NewUserHandler(userService)
	examHandler := NewExamHandler(examService)
	lessonHandler := NewLessonHandler(lessonService)
	signHandler := NewSignHandler(signService)
	billingHandler := NewBillingHandler(billingService)

	apiV1 := router.Group("/api/v1")
	{
		// --- User and Authentication Endpoints ---
		userGroup := apiV1.Group("/users")
		{
			// Called after client-side Firebase login/signup to ensure the
			// backend profile exists.
			userGroup.POST("/initialize", authMW.VerifyToken(), authHandler.InitializeUserProfile)
			userGroup.GET("/me", authMW.VerifyToken(), userHandler.GetCurrentUserProfile)

			// Entitlement tolerates anonymous callers: they get the
			// free-trial view the landing page renders.
			userGroup.GET("/me/entitlement", authMW.OptionalToken(), userHandler.GetEntitlement)
		}

		// --- Exam Endpoints ---
		examGroup := apiV1.Group("/exams", authMW.OptionalToken())
		{
			examGroup.GET("", examHandler.ListExams)
			examGroup.GET("/:slug", examHandler.GetExam)
			// Browsing is open to everyone. Starting and generating go
			// through the service gate, which rejects anonymous callers;
			// OptionalToken keeps the error a 402/401 from the gate rather
			// than a blanket 401 from the middleware.
			examGroup.POST("/:slug/start", examHandler.StartExam)
			examGroup.POST("/generate", examHandler.GenerateExam)
		}

		// --- Attempt Endpoints ---
		// Submitting and history require a verified identity: attempts are
		// owned records.
		attemptGroup := apiV1.Group("/attempts", authMW.VerifyToken())
		{
			attemptGroup.GET("", examHandler.AttemptHistory)
			attemptGroup.POST("/:attemptId/submit", examHandler.SubmitExam)
		}

		// --- Lesson Endpoints ---
		lessonGroup := apiV1.Group("/lessons", authMW.OptionalToken())
		{
			lessonGroup.GET("", lessonHandler.ListLessons)
			lessonGroup.GET("/:slug", lessonHandler.GetLesson)
		}

		// --- Traffic Sign Endpoints ---
		signGroup := apiV1.Group("/signs")
		{
			signGroup.GET("", signHandler.ListSigns)
			signGroup.GET("/quiz", signHandler.Quiz)
		}

		// --- Billing Endpoints ---
		billingGroup := apiV1.Group("/billing")
		{
			billingGroup.POST("/create-checkout-session", authMW.VerifyToken(), billingHandler.CreateCheckoutSession)

			// Public webhook endpoint for the payment provider (no
			// VerifyToken here). The provider authenticates via the
			// signature header, verified by the service.
			billingGroup.POST("/webhooks/payment", billingHandler.HandlePaymentWebhook)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "UP", "message": "Theorie backend is healthy."})
	})

	logger.Info("API routes configured successfully under /api/v1 and /health.")
}
