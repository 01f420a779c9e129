package api

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"wqsolutions/internal/api/middleware"
	"wqsolutions/internal/auth"
	"wqsolutions/internal/config"
	"wqsolutions/internal/schema"
)

// RegisterRoutes mounts every API route. Content routes are generated from
// the entity registry; one controller serves them all.
func RegisterRoutes(
	router *gin.Engine,
	db *gorm.DB,
	authService *auth.Service,
	redisClient redis.UniversalClient,
	logger *slog.Logger,
	store UploadStore,
	cfg *config.Config,
) {
	contentHandler := NewContentHandler(db, store, logger, cfg.Clamd.Addr)
	authHandler := NewAuthHandler(db, authService, redisClient, logger, cfg.RateLimit.LoginPerHour)
	inquiryHandler := NewInquiryHandler(db, redisClient, logger, cfg.RateLimit.InquiryPerHour)
	sitemapHandler := NewSitemapHandler(db, logger, cfg.Site.BaseURL)
	authMiddleware := middleware.AuthMiddleware(authService)

	router.GET("/sitemap.xml", sitemapHandler.Sitemap)
	router.GET("/robots.txt", sitemapHandler.Robots)

	v1 := router.Group("/api/v1")

	authGroup := v1.Group("/auth")
	{
		authGroup.POST("/login", authHandler.Login)
		authGroup.GET("/me", authMiddleware, authHandler.Me)
		authGroup.POST("/change-password", authMiddleware, authHandler.ChangePassword)
	}

	v1.POST("/inquiries", inquiryHandler.Create)

	admin := v1.Group("/admin", authMiddleware, middleware.RequireRole(
		auth.RoleEditor, auth.RoleAdmin, auth.RoleSuperadmin,
	))
	adminOnly := middleware.RequireRole(auth.RoleAdmin, auth.RoleSuperadmin)

	for _, e := range schema.Registry() {
		if e.Singleton {
			page := strings.TrimSuffix(e.Name, "_page")
			v1.GET("/pages/"+page, contentHandler.GetSingleton(e))
			admin.PUT("/pages/"+page, contentHandler.UpdateSingleton(e))
			continue
		}

		public := v1.Group("/" + e.Table)
		{
			public.GET("", contentHandler.List(e, true))
			public.GET("/:id", contentHandler.Get(e))
			if e.HasSlug {
				public.GET("/slug/:slug", contentHandler.GetBySlug(e))
			}
		}

		admin.GET("/"+e.Table, contentHandler.List(e, false))
		admin.POST("/"+e.Table, contentHandler.Create(e))
		admin.PUT("/"+e.Table+"/:id", contentHandler.Update(e))
		admin.DELETE("/"+e.Table+"/:id", adminOnly, contentHandler.Delete(e))
	}

	admin.GET("/inquiries", inquiryHandler.List)
	admin.GET("/inquiries/export/excel", inquiryHandler.ExportExcel)
	admin.GET("/inquiries/export/pdf", inquiryHandler.ExportPDF)
	admin.GET("/inquiries/:id", inquiryHandler.Get)
	admin.PATCH("/inquiries/:id/read", inquiryHandler.MarkRead)
	admin.DELETE("/inquiries/:id", adminOnly, inquiryHandler.Delete)

	users := admin.Group("/users", middleware.RequireRole(auth.RoleSuperadmin))
	{
		users.GET("", authHandler.ListUsers)
		users.POST("", authHandler.CreateUser)
		users.PUT("/:id", authHandler.UpdateUser)
		users.DELETE("/:id", authHandler.DeleteUser)
	}
}
