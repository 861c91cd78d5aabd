package server

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/social-graph/backend/internal/config"
	"github.com/emilythestrangee/social-graph/backend/internal/database"
	"github.com/emilythestrangee/social-graph/backend/internal/handlers"
	"github.com/emilythestrangee/social-graph/backend/internal/middleware"
	"github.com/emilythestrangee/social-graph/backend/internal/notification"
	"github.com/emilythestrangee/social-graph/backend/internal/relationship"
	"github.com/emilythestrangee/social-graph/backend/internal/repository"
	"github.com/emilythestrangee/social-graph/backend/pkg/logger"
)

// HealthChecker reports the status of a backing service.
type HealthChecker interface {
	Health() map[string]string
}

type Server struct {
	cfg      *config.Config
	db       HealthChecker
	handler  *handlers.Handler
	sessions *middleware.Sessions
}

// NewServer wires repositories, the relationship engine and handlers on top of db
func NewServer(cfg *config.Config, db database.Service) (*http.Server, error) {
	if err := handlers.RegisterValidators(); err != nil {
		return nil, err
	}

	gormDB := db.GetDB()
	users := repository.NewUserRepository(gormDB)
	notifications := repository.NewNotificationRepository(gormDB)

	engine := relationship.NewEngine(
		repository.NewRelationshipStore(gormDB),
		notification.NewFanout(notifications),
		cfg.StoreTimeout,
	)
	sessions := middleware.NewSessions(cfg.JWTSecret, cfg.SessionTTL, cfg.SecureCookie, users)

	newServer := &Server{
		cfg:      cfg,
		db:       db,
		sessions: sessions,
		handler: handlers.NewHandler(handlers.Deps{
			Relationships: engine,
			Accounts:      users,
			ViewerHistory: repository.NewViewerHistoryRepository(gormDB),
			Notifications: notification.NewService(notifications, cfg.NotificationRetention()),
			Sessions:      sessions,
		}),
	}

	server := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      newServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	logger.Info("Server configured", "port", cfg.Port, "env", cfg.AppEnv)
	return server, nil
}

// RegisterRoutes sets up all application routes
func (s *Server) RegisterRoutes() *gin.Engine {
	r := gin.Default()
	r.Use(middleware.RequestID())

	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Accept", "Content-Type", "X-Requested-With", middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", s.healthHandler)

	requireAuth := s.sessions.RequireAuth()
	h := s.handler

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		auth.POST("/signup", h.Auth.Signup)
		auth.POST("/login", h.Auth.Login)
		auth.POST("/logout", requireAuth, h.Auth.Logout)

		user := api.Group("/user")
		user.GET("/me", requireAuth, h.Auth.GetMe)
		user.POST("/togglePrivate", requireAuth, h.User.TogglePrivate)
		user.GET("/:username", s.sessions.OptionalAuth(), h.User.GetUserProfile)

		follow := api.Group("/follow", requireAuth)
		follow.POST("/toggleFollow/:username", h.Follow.ToggleFollow)
		follow.DELETE("/follower-delete/:followerId/:username", h.Follow.DeleteFollower)
		follow.GET("/followers/:username", h.Follow.GetFollowers)
		follow.GET("/following/:username", h.Follow.GetFollowing)
		follow.GET("/mutual/:username1/:username2", h.Follow.GetMutual)
		follow.GET("/getStatusFollow/:username", h.Follow.GetStatusFollow)
		follow.GET("/getStatusFollowing/:username", h.Follow.GetStatusFollowing)

		requests := api.Group("/followRequest", requireAuth)
		requests.GET("/requests", h.FollowRequest.GetRequests)
		requests.POST("/confirm/:requestId", h.FollowRequest.ConfirmRequest)
		requests.POST("/reject/:requestId", h.FollowRequest.RejectRequest)

		api.GET("/notification/all", requireAuth, h.Notification.GetAll)

		history := api.Group("/viewerHistory", requireAuth)
		history.GET("", h.ViewerHistory.GetViewers)
		history.POST("/toggle", h.ViewerHistory.Toggle)
	}

	return r
}

func (s *Server) healthHandler(c *gin.Context) {
	stats := s.db.Health()
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, stats)
}
