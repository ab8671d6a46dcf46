package handlers

import (
	"net/http"
	"path/filepath"

	"marketplace/internal/logger"
	"marketplace/internal/service"

	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// templatesGlob locates the server-rendered views relative to the working
// directory.
const templatesGlob = "web/templates/*.html"

// Handler wires HTTP layer to services and logging.
type Handler struct {
	services *service.Service
	log      *logger.Logger
}

// NewHandler constructs a new HTTP handler with dependencies.
func NewHandler(services *service.Service, log *logger.Logger) *Handler {
	return &Handler{services: services, log: log}
}

// InitRoutes builds and returns the Gin router with all routes registered.
func (h *Handler) InitRoutes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Templates are optional in tests; LoadHTMLGlob panics on an empty match.
	if matches, _ := filepath.Glob(templatesGlob); len(matches) > 0 {
		router.LoadHTMLGlob(templatesGlob)
	}

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health endpoint
	router.GET("/health", h.health)

	// Auth endpoints
	h.registerAuthRoutes(router)

	// JSON API (protected)
	h.registerAPIRoutes(router)

	// Server-rendered views (protected; token travels in ?token= links)
	h.registerWebRoutes(router)

	// Live item-event feed; query-token auth works where headers can't be set.
	router.GET("/ws", h.authMiddleware, h.wsConnect)

	return router
}

func (h *Handler) registerAuthRoutes(r *gin.Engine) {
	auth := r.Group("/auth")
	{
		auth.POST("/sign-up", h.signUp)
		auth.POST("/sign-in", h.signIn)
	}
}

func (h *Handler) registerAPIRoutes(r *gin.Engine) {
	api := r.Group("/api/v1", h.authMiddleware)
	{
		items := api.Group("/items")
		{
			items.GET("", h.listItems)
			items.POST("", h.createItem)
			items.GET("/:id", h.showItem)
			items.PUT("/:id", h.updateItem)
			items.DELETE("/:id", h.destroyItem)
		}

		api.GET("/market", h.browseMarket)
		api.GET("/logs", h.getLogs)

		account := api.Group("/account")
		{
			account.POST("/password", h.changePassword)
			account.DELETE("", h.deleteAccount)
		}
	}
}

func (h *Handler) registerWebRoutes(r *gin.Engine) {
	web := r.Group("/items", h.authMiddleware)
	{
		web.GET("", h.webItemsIndex)
		web.GET("/new", h.webItemNew)
		web.GET("/:id", h.webItemShow)
		web.GET("/:id/edit", h.webItemEdit)
		web.POST("", h.webItemCreate)
		web.POST("/:id", h.webItemUpdate)
		web.POST("/:id/delete", h.webItemDelete)
	}
}

// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200  {object}  map[string]string
// @Router       /health [get]
func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
