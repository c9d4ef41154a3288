package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/yourusername/quiz-api/internal/config"
	"github.com/yourusername/quiz-api/internal/handler"
	"github.com/yourusername/quiz-api/internal/middleware"
	pgRepo "github.com/yourusername/quiz-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/quiz-api/internal/repository/redis"
	"github.com/yourusername/quiz-api/internal/service"
	ws "github.com/yourusername/quiz-api/internal/websocket"
	"github.com/yourusername/quiz-api/pkg/auth"
	"github.com/yourusername/quiz-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	isProduction := gin.Mode() == gin.ReleaseMode

	// Контекст приложения: отменяется при остановке и завершает фоновые горутины
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString(), !isProduction)
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db, cfg.Database.MigrationsPath); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Redis: кеш викторин, rate limiting и Pub/Sub
	redisClient, err := database.NewUniversalRedisClient(ctx, cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	quizRepo := pgRepo.NewQuizRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	answerRepo := pgRepo.NewAnswerRepo(db)
	categoryRepo := pgRepo.NewCategoryRepo(db)
	tagRepo := pgRepo.NewTagRepo(db)
	participantRepo := pgRepo.NewParticipantRepo(db)
	feedbackRepo := pgRepo.NewFeedbackRepo(db)
	invalidTokenRepo := pgRepo.NewInvalidTokenRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// PubSubProvider нужен только в кластерном режиме
	var pubSubProvider ws.PubSubProvider = &ws.NoOpPubSub{}
	if cfg.WebSocket.Cluster.Enabled {
		log.Println("Инициализация Redis PubSub для кластеризации WebSocket...")
		redisProvider, errProv := ws.NewRedisPubSub(redisClient)
		if errProv != nil {
			log.Printf("Ошибка при создании Redis PubSub провайдера: %v. Кластеризация WS будет неактивна.", errProv)
		} else {
			pubSubProvider = redisProvider
		}
	}

	// Хаб событий викторин
	pongWait := time.Duration(cfg.WebSocket.Limits.PongWait) * time.Second
	hub := ws.NewHub(ws.HubConfig{
		Clustered:       cfg.WebSocket.Cluster.Enabled,
		Channel:         cfg.WebSocket.Cluster.EventsChannel,
		InstanceID:      cfg.WebSocket.Cluster.InstanceID,
		BroadcastBuffer: cfg.WebSocket.Buffers.BroadcastBuffer,
		Client: ws.ClientConfig{
			WriteWait:      time.Duration(cfg.WebSocket.Limits.WriteWait) * time.Second,
			PongWait:       pongWait,
			PingInterval:   pongWait * 9 / 10,
			MaxMessageSize: int64(cfg.WebSocket.Limits.MaxMessageSize),
			SendBuffer:     cfg.WebSocket.Buffers.ClientSendBuffer,
		},
	}, pubSubProvider)
	go hub.Run(ctx)

	jwtService, err := auth.NewJWTService(
		cfg.JWT.Secret,
		cfg.JWT.ExpirationHrs,
		invalidTokenRepo,
		cfg.JWT.CleanupInterval,
		pubSubProvider,
		ctx,
	)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем сервисы
	authService, err := service.NewAuthService(userRepo, jwtService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}
	catalogService := service.NewCatalogService(categoryRepo, tagRepo)
	quizService := service.NewQuizService(quizRepo, categoryRepo, tagRepo, cacheRepo, cfg.Quiz.CacheTTL())
	questionService := service.NewQuestionService(quizRepo, questionRepo, answerRepo, cacheRepo)
	attemptService := service.NewAttemptService(quizRepo, questionRepo, participantRepo, hub)
	feedbackService := service.NewFeedbackService(quizRepo, participantRepo, feedbackRepo, hub)

	// Инициализируем обработчики
	pages := handler.PageConfig{DefaultPageSize: cfg.Quiz.DefaultPageSize, MaxPageSize: cfg.Quiz.MaxPageSize}
	authHandler := handler.NewAuthHandler(authService)
	catalogHandler := handler.NewCatalogHandler(catalogService)
	quizHandler := handler.NewQuizHandler(quizService, pages)
	questionHandler := handler.NewQuestionHandler(questionService)
	attemptHandler := handler.NewAttemptHandler(attemptService, pages)
	feedbackHandler := handler.NewFeedbackHandler(feedbackService, pages)
	wsHandler := handler.NewWSHandler(hub, quizService, cfg.Server.AllowedOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(redisClient)
	attemptLimit := rateLimiter.Limit(middleware.AttemptRateLimitConfig(cfg.RateLimit.AttemptMaxRequests, cfg.RateLimit.AttemptWindowSec))
	authLimit := rateLimiter.Limit(middleware.AuthRateLimitConfig(cfg.RateLimit.AuthMaxRequests, cfg.RateLimit.AuthWindowSec))

	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery(), middleware.RequestID())

	// В production не доверяем прокси-заголовкам (защита от IP spoofing)
	trustedProxies := []string{"127.0.0.1", "::1"}
	if isProduction {
		trustedProxies = nil
	}
	if err := router.SetTrustedProxies(trustedProxies); err != nil {
		log.Printf("Warning: failed to set trusted proxies: %v", err)
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	requireAuth := authMiddleware.RequireAuth()
	optionalAuth := authMiddleware.OptionalAuth()
	staffOnly := []gin.HandlerFunc{requireAuth, authMiddleware.RequireStaff()}

	api := router.Group("/api")
	{
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authLimit, authHandler.Register)
			authGroup.POST("/login", authLimit, authHandler.Login)
			authGroup.POST("/logout", requireAuth, authHandler.Logout)
			authGroup.GET("/me", requireAuth, authHandler.GetMe)
		}

		categories := api.Group("/categories")
		{
			categories.GET("", catalogHandler.ListCategories)
			categories.POST("", append(staffOnly, catalogHandler.CreateCategory)...)

			withID := categories.Group("/:id", middleware.ExtractUintParam("id", "categoryID"))
			withID.GET("", catalogHandler.GetCategory)
			withID.PUT("", append(staffOnly, catalogHandler.UpdateCategory)...)
			withID.DELETE("", append(staffOnly, catalogHandler.DeleteCategory)...)
		}

		tags := api.Group("/tags")
		{
			tags.GET("", catalogHandler.ListTags)
			tags.POST("", append(staffOnly, catalogHandler.CreateTag)...)

			withID := tags.Group("/:id", middleware.ExtractUintParam("id", "tagID"))
			withID.GET("", catalogHandler.GetTag)
			withID.PUT("", append(staffOnly, catalogHandler.UpdateTag)...)
			withID.DELETE("", append(staffOnly, catalogHandler.DeleteTag)...)
		}

		quizzes := api.Group("/quizzes")
		{
			quizzes.GET("", quizHandler.ListQuizzes)
			quizzes.POST("", append(staffOnly, quizHandler.CreateQuiz)...)

			// Попытки: лимит считается по пользователю, поэтому RequireAuth идет первым
			quizzes.POST("/start", requireAuth, attemptLimit, attemptHandler.StartAttempt)
			quizzes.POST("/submit", requireAuth, attemptLimit, attemptHandler.SubmitAttempt)

			quizWithID := quizzes.Group("/:id", middleware.ExtractUintParam("id", "quizID"))
			{
				quizWithID.GET("", optionalAuth, quizHandler.GetQuiz)
				quizWithID.PUT("", append(staffOnly, quizHandler.UpdateQuiz)...)
				quizWithID.DELETE("", append(staffOnly, quizHandler.DeleteQuiz)...)

				quizWithID.GET("/questions", optionalAuth, questionHandler.ListQuestions)
				quizWithID.POST("/questions", append(staffOnly, questionHandler.CreateQuestion)...)

				quizWithID.GET("/attempt", requireAuth, attemptHandler.GetAttempt)
				quizWithID.GET("/participants", append(staffOnly, attemptHandler.ListParticipants)...)
				quizWithID.GET("/participants/export", append(staffOnly, attemptHandler.ExportParticipants)...)

				quizWithID.GET("/feedback", feedbackHandler.ListFeedback)
				quizWithID.POST("/feedback", requireAuth, attemptLimit, feedbackHandler.SubmitFeedback)
			}
		}

		questions := api.Group("/questions/:id", middleware.ExtractUintParam("id", "questionID"))
		{
			questions.GET("", optionalAuth, questionHandler.GetQuestion)
			questions.PUT("", append(staffOnly, questionHandler.UpdateQuestion)...)
			questions.DELETE("", append(staffOnly, questionHandler.DeleteQuestion)...)
			questions.GET("/answers", optionalAuth, questionHandler.ListAnswers)
			questions.POST("/answers", append(staffOnly, questionHandler.CreateAnswer)...)
		}

		answers := api.Group("/answers/:id", middleware.ExtractUintParam("id", "answerID"))
		{
			answers.GET("", optionalAuth, questionHandler.GetAnswer)
			answers.PUT("", append(staffOnly, questionHandler.UpdateAnswer)...)
			answers.DELETE("", append(staffOnly, questionHandler.DeleteAnswer)...)
		}

		feedback := api.Group("/feedback/:id", middleware.ExtractUintParam("id", "feedbackID"))
		{
			feedback.GET("", feedbackHandler.GetFeedback)
			feedback.PUT("", requireAuth, feedbackHandler.UpdateFeedback)
			feedback.DELETE("", requireAuth, feedbackHandler.DeleteFeedback)
		}
	}

	router.GET("/health", gin.WrapF(ws.HealthCheckHandler(hub)))
	api.GET("/ws/metrics", append(staffOnly, gin.WrapF(ws.MetricsHandler(hub)))...)

	// Поток событий викторины; браузер передает токен через ?token=
	router.GET("/ws/quizzes/:id", requireAuth, middleware.ExtractUintParam("id", "quizID"), wsHandler.HandleQuizEvents)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}
	log.Println("Shutting down server...")

	// Останавливаем хаб, JWT-очистку и подписки
	cancel()

	if err := pubSubProvider.Close(); err != nil {
		log.Printf("Error closing PubSub provider: %v", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
