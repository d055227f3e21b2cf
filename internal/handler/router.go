package handler

import (
	"net/http"

	"gamevault/backend/internal/auth"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// NewRouter wires every route. apiMiddleware runs on the API group only,
// ahead of optional authentication, so it sees the identity once c.Next returns.
func NewRouter(h *Handler, authn *auth.Authenticator, prefix string, apiMiddleware ...gin.HandlerFunc) *gin.Engine {
	useJSONFieldNames()

	router := gin.Default()

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	api := router.Group(prefix)
	api.Use(apiMiddleware...)
	api.Use(authn.OptionalAuthMiddleware())
	{
		api.GET("/health", h.Health)

		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", h.Register)
			authRoutes.POST("/login", h.Login)

			protected := authRoutes.Group("")
			protected.Use(authn.AuthMiddleware())
			protected.POST("/logout", h.Logout)
			protected.GET("/me", h.Me)
			protected.PUT("/update-profile", h.UpdateProfile)
		}

		gameRoutes := api.Group("/games")
		{
			gameRoutes.GET("", h.ListGames)
			gameRoutes.GET("/featured", h.FeaturedGames)
			gameRoutes.GET("/free", h.FreeGames)
			gameRoutes.GET("/on-sale", h.OnSaleGames)
			gameRoutes.GET("/:id", h.GetGame)
		}

		api.GET("/reviews/recent", h.RecentReviews)
		reviewRoutes := api.Group("/reviews")
		reviewRoutes.Use(authn.AuthMiddleware())
		{
			reviewRoutes.POST("", h.CreateReview)
			reviewRoutes.PUT("/:id", h.UpdateReview)
			reviewRoutes.DELETE("/:id", h.DeleteReview)
		}

		api.GET("/user/reviews", authn.AuthMiddleware(), h.UserReviews)

		// Admin routes (protected by auth and admin check)
		adminRoutes := api.Group("/admin")
		adminRoutes.Use(authn.AuthMiddleware(), auth.AdminMiddleware())
		{
			adminRoutes.GET("/stats", h.Stats)
			adminRoutes.GET("/reviews", h.AdminListReviews)
			adminRoutes.GET("/activity", h.AdminActivity)

			adminGameRoutes := adminRoutes.Group("/games")
			{
				adminGameRoutes.GET("", h.AdminListGames)
				adminGameRoutes.POST("", h.CreateGame)
				adminGameRoutes.PUT("/:id", h.UpdateGame)
				adminGameRoutes.DELETE("/:id", h.DeleteGame)
			}
		}
	}

	return router
}

// Health godoc
// @Summary      Health check
// @Description  Reports whether the database answers.
// @Tags         ops
// @Produce      json
// @Success      200  {object}  map[string]string "{"status": "ok"}"
// @Failure      503  {object}  map[string]string "{"status": "unavailable"}"
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request.Context())
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}
