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
	"github.com/yourusername/mozart-api/internal/config"
	"github.com/yourusername/mozart-api/internal/exercise"
	"github.com/yourusername/mozart-api/internal/handler"
	"github.com/yourusername/mozart-api/internal/middleware"
	"github.com/yourusername/mozart-api/internal/realtime"
	pgRepo "github.com/yourusername/mozart-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/mozart-api/internal/repository/redis"
	"github.com/yourusername/mozart-api/internal/service"
	"github.com/yourusername/mozart-api/pkg/auth"
	"github.com/yourusername/mozart-api/pkg/database"
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

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	userRepo := pgRepo.NewUserRepo(db)
	identityRepo := pgRepo.NewUserIdentityRepo(db)
	exerciseTypeRepo := pgRepo.NewExerciseTypeRepo(db)
	attemptRepo := pgRepo.NewAttemptRepo(db)
	scoreRepo := pgRepo.NewScoreRepo(db)
	friendshipRepo := pgRepo.NewFriendshipRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем JWT сервис
	jwtService, err := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.ExpirationHrs)
	if err != nil {
		log.Printf("Failed to initialize JWTService: %v", err)
		os.Exit(1)
	}

	// Инициализируем email-сервис: Resend в проде, заглушка локально
	var emailService service.EmailService = &service.NoopEmailService{}
	if cfg.Email.Enabled {
		emailService, err = service.NewResendEmailService(cfg.Email.ResendAPIKey, cfg.Email.From)
		if err != nil {
			log.Printf("Failed to initialize ResendEmailService: %v", err)
			os.Exit(1)
		}
		log.Println("Отправка писем через Resend включена")
	}

	// Инициализируем WebSocket hub для событий прогресса
	hub := realtime.NewHub()

	// Инициализируем сервисы
	authService, err := service.NewAuthService(userRepo, identityRepo, jwtService, emailService)
	if err != nil {
		log.Printf("Failed to initialize AuthService: %v", err)
		os.Exit(1)
	}

	stateStore, err := service.NewOAuthStateStore(cacheRepo)
	if err != nil {
		log.Printf("Failed to initialize OAuthStateStore: %v", err)
		os.Exit(1)
	}

	// OAuth-провайдеры создаются только при наличии учетных данных
	var googleOAuth *service.GoogleOAuthService
	if cfg.OAuth.Google.ClientID != "" {
		googleOAuth, err = service.NewGoogleOAuthService(userRepo, identityRepo, stateStore, jwtService, emailService, cfg.OAuth.Google)
		if err != nil {
			log.Printf("Failed to initialize GoogleOAuthService: %v", err)
			os.Exit(1)
		}
		log.Println("Вход через Google включен")
	}

	var facebookOAuth *service.FacebookOAuthService
	if cfg.OAuth.Facebook.ClientID != "" {
		facebookOAuth, err = service.NewFacebookOAuthService(userRepo, identityRepo, stateStore, jwtService, emailService, cfg.OAuth.Facebook)
		if err != nil {
			log.Printf("Failed to initialize FacebookOAuthService: %v", err)
			os.Exit(1)
		}
		log.Println("Вход через Facebook включен")
	}

	generator := exercise.NewGenerator()

	exerciseService, err := service.NewExerciseService(generator, exerciseTypeRepo)
	if err != nil {
		log.Printf("Failed to initialize ExerciseService: %v", err)
		os.Exit(1)
	}

	progressService, err := service.NewProgressService(db, attemptRepo, scoreRepo, exerciseTypeRepo, cacheRepo, hub)
	if err != nil {
		log.Printf("Failed to initialize ProgressService: %v", err)
		os.Exit(1)
	}

	userService, err := service.NewUserService(userRepo, scoreRepo, attemptRepo, friendshipRepo, cacheRepo)
	if err != nil {
		log.Printf("Failed to initialize UserService: %v", err)
		os.Exit(1)
	}

	allowedOrigins := []string{
		cfg.Frontend.URL,
		"http://localhost:5173",
		"http://localhost:3000",
	}

	// Инициализируем обработчики
	authHandler := handler.NewAuthHandler(authService, cfg.JWT.ExpirationHrs*3600)
	oauthHandler := handler.NewOAuthHandler(googleOAuth, facebookOAuth, cfg.Frontend.URL)
	exerciseHandler := handler.NewExerciseHandler(exerciseService, progressService)
	userHandler := handler.NewUserHandler(userService)
	wsHandler := handler.NewWSHandler(hub, jwtService, allowedOrigins)

	// Инициализируем middleware
	authMiddleware := middleware.NewAuthMiddleware(jwtService)
	rateLimiter := middleware.NewRateLimiter(cacheRepo)

	isProduction := gin.Mode() == gin.ReleaseMode

	// Инициализируем роутер Gin
	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		// Production: не доверять прокси-заголовкам
		// Если используете load balancer, замените nil на []string{"IP_БАЛАНСИРОВЩИКА"}
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		// Development: доверяем localhost
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length", "X-RateLimit-Limit", "X-RateLimit-Remaining"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Аутентификация
		authGroup := api.Group("/auth")
		authGroup.Use(rateLimiter.LimitByIP(middleware.DefaultAuthRateLimitConfig()))
		{
			strict := rateLimiter.Limit(middleware.StrictAuthRateLimitConfig())
			authGroup.POST("/register", strict, authHandler.Register)
			authGroup.POST("/login", strict, authHandler.Login)

			// Маршруты, требующие аутентификации
			authedAuth := authGroup.Group("/")
			authedAuth.Use(authMiddleware.RequireAuth())
			{
				authedAuth.GET("/me", authHandler.Me)
				authedAuth.POST("/change-password", authHandler.ChangePassword)
				authedAuth.GET("/social-accounts", authHandler.SocialAccounts)
				authedAuth.DELETE("/social-accounts/:provider", authHandler.DisconnectSocial)
			}
		}

		// OAuth-провайдеры (редиректный поток)
		oauthGroup := api.Group("/oauth")
		oauthGroup.Use(rateLimiter.LimitByIP(middleware.DefaultAuthRateLimitConfig()))
		{
			oauthGroup.GET("/google", oauthHandler.GoogleLogin)
			oauthGroup.GET("/google/callback", oauthHandler.GoogleCallback)
			oauthGroup.GET("/facebook", oauthHandler.FacebookLogin)
			oauthGroup.GET("/facebook/callback", oauthHandler.FacebookCallback)
		}

		// Упражнения: генерация и проверка доступны гостям,
		// но токен, если он передан, кладёт user_id в контекст
		exercises := api.Group("/exercise")
		exercises.Use(rateLimiter.LimitByIP(middleware.ExerciseRateLimitConfig()), authMiddleware.OptionalAuth())
		{
			exercises.GET("/types", exerciseHandler.ListTypes)
			exercises.GET("/:category/:difficulty",
				middleware.ValidateCategoryParam(),
				middleware.ValidateDifficultyParam(),
				exerciseHandler.Generate)

			validate := exercises.Group("/validate")
			{
				validate.POST("/guess-note", exerciseHandler.ValidateGuessNote)
				validate.POST("/intervals", exerciseHandler.ValidateIntervals)
				validate.POST("/harmonies", exerciseHandler.ValidateHarmonies)
				validate.POST("/:category", exerciseHandler.ValidateValue)
			}

			// Сабмит и история требуют аутентификации
			authedExercises := exercises.Group("")
			authedExercises.Use(authMiddleware.RequireAuth())
			{
				authedExercises.POST("/submit", exerciseHandler.Submit)
				authedExercises.GET("/attempts", exerciseHandler.GetAttempts)
			}
		}

		// Пользователи
		users := api.Group("/user")
		users.Use(authMiddleware.RequireAuth())
		{
			users.GET("/profile", userHandler.GetProfile)
			users.PUT("/profile", userHandler.UpdateProfile)
			users.PUT("/preferences", userHandler.UpdatePreferences)
			users.GET("/scores", userHandler.GetScores)
			users.GET("/leaderboard/friends", userHandler.GetFriendsLeaderboard)

			friends := users.Group("/friends")
			{
				friends.GET("", userHandler.ListFriends)
				friends.POST("", userHandler.AddFriend)
				friends.DELETE("/:id", middleware.ExtractUintParam("id", "friend_id"), userHandler.RemoveFriend)
			}
		}

		// Лидерборды (публичные маршруты)
		api.GET("/user/leaderboard/global", userHandler.GetGlobalLeaderboard)
		api.GET("/user/leaderboard/exercise/:category", userHandler.GetExerciseLeaderboard)
		api.GET("/user/leaderboard/export", userHandler.ExportLeaderboard)
	}

	// WebSocket маршрут
	router.GET("/ws", wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Закрываем WebSocket соединения
	hub.Shutdown()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
