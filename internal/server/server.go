package server

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mechamederoot1/projeto-unipass/internal/admin"
	"github.com/mechamederoot1/projeto-unipass/internal/auth"
	"github.com/mechamederoot1/projeto-unipass/internal/checkin"
	"github.com/mechamederoot1/projeto-unipass/internal/config"
	"github.com/mechamederoot1/projeto-unipass/internal/gamification"
	"github.com/mechamederoot1/projeto-unipass/internal/gym"
	"github.com/mechamederoot1/projeto-unipass/internal/review"
	"github.com/mechamederoot1/projeto-unipass/internal/subscription"
	"github.com/mechamederoot1/projeto-unipass/internal/support"
	"github.com/mechamederoot1/projeto-unipass/internal/user"
)

// Handlers bundles the per-domain HTTP handlers the router mounts.
type Handlers struct {
	Users         *user.Handler
	Gyms          *gym.Handler
	Checkins      *checkin.Handler
	Subscriptions *subscription.Handler
	Gamification  *gamification.Handler
	Reviews       *review.Handler
	Support       *support.Handler
	Admin         *admin.Handler
}

type Server struct {
	router *gin.Engine
	config *config.Config
	http   *http.Server
}

func New(cfg *config.Config, h Handlers) *Server {
	router := gin.Default()
	router.Use(corsMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	SetupSwagger(router)

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)

	public := router.Group("/api")
	{
		public.POST("/auth/register", h.Users.Register)
		public.POST("/auth/login", h.Users.Login)
		public.POST("/auth/refresh", h.Users.Refresh)

		public.GET("/gyms", h.Gyms.ListGyms)
		public.GET("/gyms/search", h.Gyms.SearchGyms)
		public.GET("/gyms/:gymID", h.Gyms.GetGym)
		public.GET("/gyms/:gymID/reviews", h.Reviews.ListReviews)
	}

	protected := router.Group("/api")
	protected.Use(authMiddleware)
	{
		protected.GET("/users/me", h.Users.GetMe)
		protected.PUT("/users/me", h.Users.UpdateMe)
		protected.GET("/users/me/stats", h.Users.GetMyStats)

		protected.POST("/checkins", h.Checkins.CreateCheckIn)
		protected.GET("/checkins", h.Checkins.History)
		protected.POST("/checkins/checkout", h.Checkins.Checkout)
		protected.GET("/checkins/active", h.Checkins.GetActive)

		protected.GET("/subscriptions/plans", h.Subscriptions.ListPlans)
		protected.GET("/subscriptions/my-subscription", h.Subscriptions.MySubscription)
		protected.POST("/subscriptions/subscribe/:planID", h.Subscriptions.Subscribe)
		protected.POST("/subscriptions/cancel", h.Subscriptions.Cancel)
		protected.POST("/subscriptions/renew", h.Subscriptions.Renew)
		protected.GET("/subscriptions/limits", h.Subscriptions.Limits)
		protected.GET("/subscriptions/payment-history", h.Subscriptions.PaymentHistory)

		protected.GET("/gamification/points", h.Gamification.GetPoints)
		protected.GET("/gamification/achievements", h.Gamification.GetAchievements)
		protected.GET("/gamification/leaderboard", h.Gamification.GetLeaderboard)
		protected.POST("/gamification/checkin-points", h.Gamification.AwardCheckinPoints)
		protected.GET("/gamification/point-history", h.Gamification.GetPointHistory)

		protected.POST("/gyms/:gymID/reviews", h.Reviews.CreateReview)

		protected.POST("/support/tickets", h.Support.CreateTicket)
		protected.GET("/support/tickets", h.Support.MyTickets)
	}

	adminGroup := router.Group("/api/admin")
	adminGroup.Use(authMiddleware, auth.RequirePermission(auth.ActionManagePlatform))
	{
		adminGroup.GET("/dashboard", h.Admin.GetDashboard)
		adminGroup.GET("/users", h.Admin.ListUsers)
		adminGroup.PATCH("/users/:id/status", h.Admin.ToggleUserStatus)
		adminGroup.GET("/gyms", h.Admin.ListGyms)
		adminGroup.POST("/gyms", h.Gyms.CreateGym)
		adminGroup.PATCH("/gyms/:gymID", h.Gyms.UpdateGym)
		adminGroup.PATCH("/gyms/:gymID/status", h.Admin.ToggleGymStatus)
		adminGroup.GET("/analytics/overview", h.Admin.GetAnalytics)
		adminGroup.GET("/audit-logs", h.Admin.GetAuditLogs)

		adminGroup.GET("/support/tickets", h.Support.ListTickets)
		adminGroup.POST("/support/tickets/:id/resolve", h.Support.ResolveTicket)
	}

	gymAdmin := router.Group("/api/gym-admin")
	gymAdmin.Use(authMiddleware, auth.RequirePermission(auth.ActionManageGym))
	{
		gymAdmin.GET("/dashboard", h.Admin.GetGymDashboard)
		gymAdmin.GET("/active-checkins", h.Admin.GetActiveCheckins)
		gymAdmin.POST("/force-checkout/:id", h.Admin.ForceCheckout)
		gymAdmin.PATCH("/update-capacity", h.Admin.UpdateCapacity)
		gymAdmin.GET("/reports/checkins", h.Admin.GetCheckinsReport)
	}

	return &Server{
		router: router,
		config: cfg,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:    ":" + port,
		Handler: s.router,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

// Router exposes the gin engine for tests.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
