package api

import (
	"net/http"

	"pantry-planner/internal/auth"
	"pantry-planner/internal/backup"
	"pantry-planner/internal/clipper"
	"pantry-planner/internal/config"
	"pantry-planner/internal/ingredient"
	"pantry-planner/internal/mealplan"
	"pantry-planner/internal/messaging"
	"pantry-planner/internal/metrics"
	"pantry-planner/internal/notify"
	"pantry-planner/internal/recipe"
	"pantry-planner/internal/shopping"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Server wires the HTTP handlers to their collaborators.
type Server struct {
	cfg    *config.Config
	logger *zap.Logger

	authManager *auth.Manager
	hub         *messaging.Hub
	metrics     *metrics.Store
	clipper     *clipper.Clipper
	notifier    *notify.Notifier
	exporter    *backup.Exporter

	ingredientRepo *ingredient.Repository
	recipeRepo     *recipe.Repository
	planRepo       *mealplan.Repository
	shoppingRepo   *shopping.Repository
}

// NewServer creates a Server. The clipper and notifier may be nil when the
// Gemini or Telegram integration is not configured; their endpoints then
// report the feature as unavailable.
func NewServer(
	cfg *config.Config,
	logger *zap.Logger,
	authManager *auth.Manager,
	hub *messaging.Hub,
	metricsStore *metrics.Store,
	clip *clipper.Clipper,
	notifier *notify.Notifier,
	exporter *backup.Exporter,
	ingredientRepo *ingredient.Repository,
	recipeRepo *recipe.Repository,
	planRepo *mealplan.Repository,
	shoppingRepo *shopping.Repository,
) *Server {
	return &Server{
		cfg:            cfg,
		logger:         logger,
		authManager:    authManager,
		hub:            hub,
		metrics:        metricsStore,
		clipper:        clip,
		notifier:       notifier,
		exporter:       exporter,
		ingredientRepo: ingredientRepo,
		recipeRepo:     recipeRepo,
		planRepo:       planRepo,
		shoppingRepo:   shoppingRepo,
	}
}

// Router builds the gin engine with middleware and all routes.
func (s *Server) Router() *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(s.requestLogger())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = s.cfg.AllowedOrigins
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	corsConfig.AllowCredentials = true
	engine.Use(cors.New(corsConfig))

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.POST("/auth/token", s.issueToken)

	api := engine.Group("/api")
	api.Use(s.authManager.Middleware())
	{
		api.GET("/ingredients", s.listIngredients)
		api.POST("/ingredients", s.createIngredient)
		api.GET("/ingredients/:id", s.getIngredient)
		api.PUT("/ingredients/:id", s.updateIngredient)
		api.DELETE("/ingredients/:id", s.deleteIngredient)

		api.GET("/recipes", s.listRecipes)
		api.POST("/recipes", s.createRecipe)
		api.POST("/recipes/clip", s.clipRecipe)
		api.GET("/recipes/:id", s.getRecipe)
		api.PUT("/recipes/:id", s.updateRecipe)
		api.DELETE("/recipes/:id", s.deleteRecipe)

		api.GET("/mealplans/current", s.getCurrentWeekPlan)
		api.GET("/mealplans/:id", s.getMealPlan)
		api.PUT("/mealplans/slots/:slotID", s.assignSlot)
		api.DELETE("/mealplans/slots/:slotID", s.clearSlot)
		api.DELETE("/mealplans/:id", s.deleteMealPlan)

		api.POST("/shopping/generate", s.generateShoppingList)
		api.GET("/shopping", s.listShoppingLists)
		api.GET("/shopping/:id", s.getShoppingList)
		api.PUT("/shopping/:id/items", s.updateShoppingListItems)
		api.POST("/shopping/:id/share", s.shareShoppingList)
		api.DELETE("/shopping/:id", s.deleteShoppingList)

		api.GET("/events", s.streamEvents)
		api.POST("/export", s.exportUserData)
		api.GET("/metrics/daily", s.dailyMetrics)
	}

	return engine
}

func respondError(c *gin.Context, status int, err error) {
	c.JSON(status, gin.H{"error": err.Error()})
}
