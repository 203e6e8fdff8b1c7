package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/lshigami/Kadabra/config"
	"github.com/lshigami/Kadabra/database"
	_ "github.com/lshigami/Kadabra/docs" // Swagger docs
	"github.com/lshigami/Kadabra/internal/controller"
	"github.com/lshigami/Kadabra/internal/logger"
	"github.com/lshigami/Kadabra/internal/model"
	"github.com/lshigami/Kadabra/internal/repository"
	"github.com/lshigami/Kadabra/internal/service"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

// @title Interview Practice API
// @version 1.0
// @description Single-user interview practice chatbot: asks CS interview questions, evaluates free-text answers with AI feedback, and compiles a final review.
// @host localhost:8080
// @BasePath /
// @schemes http https
func main() {
	logger.Init()

	app := fx.New(
		fx.Provide(
			config.NewConfig,
			database.NewDatabase,
			NewGinEngine,
		),

		// Repositories
		fx.Provide(
			repository.NewSessionRepository,
			repository.NewQuestionRepository,
		),

		// Services
		fx.Provide(
			service.NewGeminiClient,
			service.NewIntentClassifier,
			service.NewAnswerEvaluator,
			service.NewFollowupGenerator,
			service.NewClarifyService,
			service.NewReportCompiler,
			service.NewSessionService,
			service.NewQuestionService,
			service.NewInteractionService,
		),

		// Controllers
		fx.Provide(
			controller.NewSessionController,
			controller.NewQuestionController,
			controller.NewInteractionController,
			controller.NewHealthController,
		),

		fx.Invoke(RegisterRoutesAndStartServer),
		fx.Invoke(AutoMigrateDB),
		fx.Invoke(database.StartSessionSweeper),
	)

	if err := app.Start(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}

	<-app.Done()
	log.Info().Msg("Application shutting down gracefully...")
}

func NewGinEngine() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	r.Use(gin.LoggerWithFormatter(func(param gin.LogFormatterParams) string {
		log.Info().
			Str("client_ip", param.ClientIP).
			Str("method", param.Method).
			Str("path", param.Path).
			Int("status_code", param.StatusCode).
			Dur("latency", param.Latency).
			Str("error_message", param.ErrorMessage).
			Msg("gin_request")
		return ""
	}))
	r.Use(gin.Recovery())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	return r
}

// RegisterRoutesAndStartServer configures routes and manages the HTTP server
// lifecycle through fx hooks.
func RegisterRoutesAndStartServer(
	lc fx.Lifecycle,
	router *gin.Engine,
	cfg *config.Config,
	sessionCtrl *controller.SessionController,
	questionCtrl *controller.QuestionController,
	interactionCtrl *controller.InteractionController,
	healthCtrl *controller.HealthController,
) {
	sessionGroup := router.Group("/session")
	{
		sessionGroup.GET("/start", sessionCtrl.StartSession)
		sessionGroup.POST("/delete", sessionCtrl.DeleteAllSessions)
		sessionGroup.DELETE("/delete", sessionCtrl.DeleteAllSessions)
	}

	questionGroup := router.Group("/questions")
	{
		questionGroup.POST("/add", questionCtrl.AddQuestion)
		questionGroup.GET("", questionCtrl.GetAllQuestions)
	}

	router.POST("/interaction/interact", interactionCtrl.Interact)
	router.GET("/health", healthCtrl.Health)

	server := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info().Msgf("Interview practice API starting on port %s", cfg.Server.Port)
			log.Info().Msgf("Swagger UI available at http://localhost:%s/swagger/index.html", cfg.Server.Port)
			go func() {
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					log.Fatal().Err(err).Msg("Server ListenAndServe failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info().Msg("Server shutting down...")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return server.Shutdown(shutdownCtx)
		},
	})
}

func AutoMigrateDB(db *gorm.DB) error {
	log.Info().Msg("Running database migrations...")
	err := db.AutoMigrate(
		&model.Question{},
		&model.Session{},
	)
	if err != nil {
		// Degraded mode: the process stays up so the health endpoint can
		// report the broken database instead of the service flapping.
		log.Error().Err(err).Msg("Database migration failed; continuing in degraded mode")
		return nil
	}
	log.Info().Msg("Database migration completed successfully.")
	return nil
}
