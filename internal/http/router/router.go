package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/homeservice-backend/internal/config"
	"github.com/ignatzorin/homeservice-backend/internal/http/handlers"
	"github.com/ignatzorin/homeservice-backend/internal/http/middleware"
	"github.com/ignatzorin/homeservice-backend/internal/models"
	"github.com/ignatzorin/homeservice-backend/internal/service"
)

func SetupRouter(
	cfg *config.Config,
	authHandler *handlers.AuthHandler,
	profileHandler *handlers.ProfileHandler,
	jobHandler *handlers.JobHandler,
	offerHandler *handlers.OfferHandler,
	walletHandler *handlers.WalletHandler,
	reviewHandler *handlers.ReviewHandler,
	notificationHandler *handlers.NotificationHandler,
	catalogHandler *handlers.CatalogHandler,
	healthHandler *handlers.HealthHandler,
	wsHandler *handlers.WSHandler,
	tokenManager *service.TokenManager,
) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.Default()
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.CORSMiddleware(cfg.AllowedOrigins))

	r.GET("/health", healthHandler.Health)
	r.StaticFS("/media", http.Dir(cfg.MediaStoragePath))

	api := r.Group("/api")

	authGroup := api.Group("/auth")
	authRateLimit := middleware.RateLimitMiddleware(cfg.RateLimitLimit, cfg.RateLimitPeriod)
	authGroup.Use(authRateLimit)
	{
		authGroup.POST("/register", authHandler.Register)
		authGroup.POST("/login", authHandler.Login)
		authGroup.POST("/refresh", authHandler.Refresh)
	}

	protectedAuth := api.Group("/auth")
	protectedAuth.Use(middleware.AuthMiddleware(tokenManager))
	{
		protectedAuth.POST("/logout", authHandler.Logout)
	}

	// Публичные маршруты
	api.GET("/ws", wsHandler.Handle)
	api.GET("/categories", catalogHandler.ListCategories)
	api.GET("/technicians/:id", middleware.UUIDValidator("id"), profileHandler.GetTechnician)
	api.GET("/technicians/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListByTechnician)

	// Защищённые маршруты
	protected := api.Group("/")
	protected.Use(middleware.AuthMiddleware(tokenManager))
	{
		// Заявки
		protected.GET("/jobs/open", jobHandler.ListOpen)
		protected.GET("/jobs/my", middleware.RequireRole(models.RoleCustomer), jobHandler.ListMine)
		protected.GET("/jobs/assigned", middleware.RequireRole(models.RoleTechnician), jobHandler.ListAssigned)
		protected.POST("/jobs", middleware.RequireRole(models.RoleCustomer), jobHandler.Create)
		protected.GET("/jobs/:id", middleware.UUIDValidator("id"), jobHandler.Get)
		protected.PATCH("/jobs/:id/pending", middleware.UUIDValidator("id"), jobHandler.MarkPending)
		protected.POST("/jobs/:id/cancel", middleware.UUIDValidator("id"), jobHandler.Cancel)
		protected.POST("/jobs/:id/complete", middleware.UUIDValidator("id"), jobHandler.Complete)
		protected.POST("/jobs/:id/photos", middleware.UUIDValidator("id"), jobHandler.AddPhoto)

		// Предложения
		protected.POST("/jobs/:id/offers", middleware.UUIDValidator("id"), middleware.RequireRole(models.RoleTechnician), offerHandler.Submit)
		protected.GET("/jobs/:id/offers", middleware.UUIDValidator("id"), offerHandler.ListByJob)
		protected.POST("/offers/:id/accept", middleware.UUIDValidator("id"), offerHandler.Accept)
		protected.GET("/offers/my", middleware.RequireRole(models.RoleTechnician), offerHandler.ListMine)

		// Кошелёк
		protected.GET("/wallet", walletHandler.Get)
		protected.POST("/wallet/top-up", walletHandler.TopUp)
		protected.POST("/wallet/withdraw", walletHandler.Withdraw)
		protected.GET("/wallet/transactions", walletHandler.Transactions)
		protected.POST("/wallet/close", walletHandler.Close)

		// Отзывы
		protected.POST("/jobs/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.Submit)
		protected.GET("/jobs/:id/reviews", middleware.UUIDValidator("id"), reviewHandler.ListByJob)

		// Уведомления
		protected.GET("/notifications", notificationHandler.List)
		protected.GET("/notifications/unread/count", notificationHandler.CountUnread)
		protected.PUT("/notifications/:id/read", middleware.UUIDValidator("id"), notificationHandler.MarkRead)
		protected.PUT("/notifications/read-all", notificationHandler.MarkAllRead)
		protected.DELETE("/notifications", notificationHandler.DeleteAll)

		// Профиль
		protected.POST("/profile/addresses", profileHandler.SaveAddress)
		protected.GET("/profile/addresses", profileHandler.ListAddresses)
		protected.PATCH("/profile/addresses/:id/default", middleware.UUIDValidator("id"), profileHandler.SetDefaultAddress)
		protected.DELETE("/profile/addresses/:id", middleware.UUIDValidator("id"), profileHandler.DeleteAddress)
		protected.PUT("/profile/skills", middleware.RequireRole(models.RoleTechnician), profileHandler.SetSkills)

		// Компания
		protected.POST("/company/technicians", middleware.RequireRole(models.RoleCompany), profileHandler.AddCompanyTechnician)
		protected.GET("/company/technicians", middleware.RequireRole(models.RoleCompany), profileHandler.ListCompanyTechnicians)
	}

	return r
}
