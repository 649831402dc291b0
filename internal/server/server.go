package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/kodcommunity/forum/backend/internal/auth"
	"github.com/kodcommunity/forum/backend/internal/config"
	"github.com/kodcommunity/forum/backend/internal/handlers"
	"github.com/kodcommunity/forum/backend/internal/logging"
	"github.com/kodcommunity/forum/backend/internal/middleware"
	"github.com/kodcommunity/forum/backend/internal/repository"
	"github.com/kodcommunity/forum/backend/internal/services"
)

// HealthChecker reports the state of the backing store.
type HealthChecker interface {
	Health() map[string]string
}

// HealthFunc adapts a function to HealthChecker.
type HealthFunc func() map[string]string

func (f HealthFunc) Health() map[string]string { return f() }

type Server struct {
	cfg     *config.Config
	log     logging.Logger
	issuer  *auth.TokenIssuer
	health  HealthChecker
	handler *handlers.Handler
}

// New wires services and handlers over repos.
func New(cfg *config.Config, log logging.Logger, repos *repository.Repositories, health HealthChecker) *Server {
	issuer := auth.NewTokenIssuer(cfg.JWTSecret, cfg.SessionTTL)
	notifier := services.NewNotificationService(repos.Notifications, repos.Users, log)

	handler := handlers.NewHandler(handlers.Services{
		Users:         services.NewUserService(repos.Users, notifier, log),
		Questions:     services.NewQuestionService(repos.Questions, repos.Users, notifier, log),
		Votes:         services.NewVotingService(repos.Questions, notifier, log),
		Messaging:     services.NewMessagingService(repos.Conversations, repos.Users, log),
		Notifications: notifier,
	}, handlers.Session{
		Issuer:     issuer,
		CookieName: cfg.SessionCookie,
		Secure:     cfg.CookieSecure,
	})

	return &Server{
		cfg:     cfg,
		log:     log,
		issuer:  issuer,
		health:  health,
		handler: handler,
	}
}

// HTTPServer returns the configured *http.Server
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:         s.cfg.Addr(),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(s.log))

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Authorization", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.Use(middleware.SessionAuth(s.issuer, s.cfg.SessionCookie))

	// Health check endpoint
	r.GET("/health", s.healthHandler)

	h := s.handler
	api := r.Group("/auth")
	{
		// Public routes
		api.POST("/register", h.Auth.Register)
		api.POST("/login", h.Auth.Login)
		api.POST("/logout", h.Auth.Logout)
		api.GET("/check-session", h.Auth.CheckSession)

		api.GET("/question", h.Question.GetQuestions)
		api.GET("/questions/popular", h.Question.GetPopularQuestions)
		api.GET("/question/:id", h.Question.GetQuestion)
		api.GET("/question/:id/answers", h.Answer.GetAnswers)

		api.GET("/users/:id", h.User.GetUserProfile)
		api.GET("/users/:id/followers", h.User.GetFollowers)
		api.GET("/users/:id/following", h.User.GetFollowing)

		// Protected routes (authentication required)
		protected := api.Group("")
		protected.Use(middleware.RequireAuth())
		{
			protected.GET("/me", h.Auth.GetMe)
			protected.PUT("/profile", h.User.UpdateProfile)
			protected.POST("/users/:id/follow", h.User.FollowUser)
			protected.DELETE("/users/:id/follow", h.User.UnfollowUser)

			protected.POST("/question", h.Question.CreateQuestion)
			protected.POST("/question/:id/vote", h.Question.VoteQuestion)
			protected.POST("/question/:id/answers", h.Answer.CreateAnswer)

			protected.GET("/notifications", h.Notification.GetNotifications)
			protected.POST("/notifications/:id/read", h.Notification.MarkRead)

			// Messaging
			protected.POST("/start", h.Conversation.StartConversation)
			protected.GET("/getconvo", h.Conversation.GetConversations)
			protected.POST("/:conversationId/message", h.Conversation.PostMessage)
			protected.GET("/:conversationId/messages", h.Conversation.GetMessages)
		}
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	stats := s.health.Health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}
