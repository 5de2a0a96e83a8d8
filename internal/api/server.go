package api

import (
	"errors"
	"net/http"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"dryckeslager/internal/inventory"
	"dryckeslager/internal/models"
	"dryckeslager/internal/monitoring"
	"dryckeslager/internal/settings"
)

// Server is the HTTP surface over the inventory and settings stores.
type Server struct {
	Router *gin.Engine

	inventory  *inventory.Store
	settings   *settings.Store
	metrics    *monitoring.Collector
	hub        *Hub
	authSecret string
	log        *logrus.Logger
}

// NewServer creates the API server and configures all routes. When
// authSecret is non-empty, every /api/v1 request must carry a valid JWT
// bearer token signed with it.
func NewServer(inv *inventory.Store, set *settings.Store, metrics *monitoring.Collector, authSecret string, log *logrus.Logger) *Server {
	if log == nil {
		log = logrus.StandardLogger()
	}

	s := &Server{
		Router:     gin.Default(),
		inventory:  inv,
		settings:   set,
		metrics:    metrics,
		hub:        NewHub(log),
		authSecret: authSecret,
		log:        log,
	}

	s.setupRoutes()
	return s
}

// Hub returns the websocket event hub so the caller can wire it to the
// inventory store's action callback.
func (s *Server) Hub() *Hub {
	return s.hub
}

// setupRoutes configures all API endpoints
func (s *Server) setupRoutes() {
	// Health check
	s.Router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := s.Router.Group("/api/v1")
	if s.authSecret != "" {
		v1.Use(s.authMiddleware())
	}
	{
		// Beverage management
		v1.GET("/beverages", s.ListBeverages)
		v1.POST("/beverages", s.CreateBeverage)
		v1.GET("/beverages/search", s.SearchBeverages)
		v1.GET("/beverages/stock/:level", s.BeveragesByLevel)
		v1.GET("/beverages/:id", s.GetBeverage)
		v1.PATCH("/beverages/:id", s.UpdateBeverage)
		v1.DELETE("/beverages/:id", s.DeleteBeverage)

		// Stock operations
		v1.POST("/beverages/:id/restock", s.Restock)
		v1.POST("/beverages/:id/consume", s.Consume)
		v1.GET("/stock/summary", s.StockSummary)

		// History
		v1.GET("/history", s.GetHistory)
		v1.DELETE("/history", s.ClearHistory)

		// Settings
		v1.GET("/settings", s.GetSettings)
		v1.PUT("/settings/thresholds", s.UpdateThresholds)
		v1.PUT("/settings/thresholds/low", s.UpdateLowThreshold)
		v1.PUT("/settings/thresholds/medium", s.UpdateMediumThreshold)
		v1.PUT("/settings/theme", s.UpdateTheme)
		v1.GET("/settings/dark-mode", s.DarkMode)

		// Event feed
		v1.GET("/events", s.hub.HandleEvents)
	}
}

// authMiddleware validates the JWT bearer token on every request.
func (s *Server) authMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(s.authSecret), nil
		})
		if err != nil || !token.Valid {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Next()
	}
}

// Beverage management handlers

func (s *Server) ListBeverages(c *gin.Context) {
	c.JSON(http.StatusOK, s.inventory.Beverages())
}

func (s *Server) CreateBeverage(c *gin.Context) {
	var input inventory.BeverageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	beverage, err := s.inventory.AddBeverage(input)
	if err != nil {
		s.rejectError(c, err)
		return
	}

	s.recordMutation("add_beverage")
	c.JSON(http.StatusCreated, beverage)
}

func (s *Server) GetBeverage(c *gin.Context) {
	beverage, err := s.inventory.Beverage(c.Param("id"))
	if err != nil {
		s.rejectError(c, err)
		return
	}
	c.JSON(http.StatusOK, beverage)
}

func (s *Server) UpdateBeverage(c *gin.Context) {
	var update inventory.BeverageUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	beverage, err := s.inventory.UpdateBeverage(c.Param("id"), update)
	if err != nil {
		s.rejectError(c, err)
		return
	}

	s.recordMutation("update_beverage")
	c.JSON(http.StatusOK, beverage)
}

func (s *Server) DeleteBeverage(c *gin.Context) {
	if err := s.inventory.DeleteBeverage(c.Param("id")); err != nil {
		s.rejectError(c, err)
		return
	}

	s.recordMutation("delete_beverage")
	c.JSON(http.StatusOK, gin.H{"message": "Beverage deleted"})
}

func (s *Server) SearchBeverages(c *gin.Context) {
	results := s.inventory.SearchBeverages(c.Query("q"))
	if results == nil {
		results = []models.Beverage{}
	}
	c.JSON(http.StatusOK, results)
}

func (s *Server) BeveragesByLevel(c *gin.Context) {
	level := models.StockLevel(c.Param("level"))
	switch level {
	case models.StockOut, models.StockLow, models.StockMedium, models.StockNormal:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown stock level"})
		return
	}

	results := s.inventory.BeveragesByLevel(level)
	if results == nil {
		results = []models.Beverage{}
	}
	c.JSON(http.StatusOK, results)
}

// Stock operation handlers

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (s *Server) Restock(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	beverage, err := s.inventory.AddToStorage(c.Param("id"), req.Quantity)
	if err != nil {
		s.rejectError(c, err)
		return
	}

	s.recordMutation("restock")
	c.JSON(http.StatusOK, beverage)
}

func (s *Server) Consume(c *gin.Context) {
	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	beverage, err := s.inventory.ConsumeFromStorage(c.Param("id"), req.Quantity)
	if err != nil {
		s.rejectError(c, err)
		return
	}

	s.recordMutation("consume")
	c.JSON(http.StatusOK, beverage)
}

func (s *Server) StockSummary(c *gin.Context) {
	c.JSON(http.StatusOK, s.inventory.StockSummary())
}

// History handlers

func (s *Server) GetHistory(c *gin.Context) {
	history := s.inventory.History()
	if history == nil {
		history = []models.InventoryAction{}
	}
	c.JSON(http.StatusOK, history)
}

func (s *Server) ClearHistory(c *gin.Context) {
	s.inventory.ClearHistory()
	s.recordMutation("clear_history")
	c.JSON(http.StatusOK, gin.H{"message": "History cleared"})
}

// Settings handlers

type thresholdsRequest struct {
	Low    int `json:"low"`
	Medium int `json:"medium"`
}

type thresholdValueRequest struct {
	Value int `json:"value"`
}

type themeRequest struct {
	Mode models.ThemeMode `json:"mode"`
}

func (s *Server) GetSettings(c *gin.Context) {
	c.JSON(http.StatusOK, s.settings.Settings())
}

func (s *Server) UpdateThresholds(c *gin.Context) {
	var req thresholdsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.settings.UpdateThresholds(req.Low, req.Medium); err != nil {
		s.rejectError(c, err)
		return
	}

	s.recordMutation("update_thresholds")
	c.JSON(http.StatusOK, s.settings.Settings())
}

func (s *Server) UpdateLowThreshold(c *gin.Context) {
	var req thresholdValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.settings.UpdateLowStockThreshold(req.Value); err != nil {
		s.rejectError(c, err)
		return
	}

	s.recordMutation("update_thresholds")
	c.JSON(http.StatusOK, s.settings.Settings())
}

func (s *Server) UpdateMediumThreshold(c *gin.Context) {
	var req thresholdValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.settings.UpdateMediumStockThreshold(req.Value); err != nil {
		s.rejectError(c, err)
		return
	}

	s.recordMutation("update_thresholds")
	c.JSON(http.StatusOK, s.settings.Settings())
}

func (s *Server) UpdateTheme(c *gin.Context) {
	var req themeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.settings.UpdateThemeMode(req.Mode); err != nil {
		s.rejectError(c, err)
		return
	}

	s.recordMutation("update_theme")
	c.JSON(http.StatusOK, s.settings.Settings())
}

func (s *Server) DarkMode(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"darkMode": s.settings.IsDarkMode()})
}

// rejectError translates a store error into an HTTP response and counts
// the rejection.
func (s *Server) rejectError(c *gin.Context, err error) {
	status := http.StatusUnprocessableEntity
	reason := "validation"

	switch {
	case errors.Is(err, inventory.ErrNotFound):
		status = http.StatusNotFound
		reason = "not_found"
	case errors.Is(err, inventory.ErrInsufficientStock):
		status = http.StatusConflict
		reason = "insufficient_stock"
	case errors.Is(err, inventory.ErrInvalidQuantity):
		reason = "invalid_quantity"
	case errors.Is(err, settings.ErrThresholdOrder):
		reason = "threshold_order"
	case errors.Is(err, settings.ErrInvalidThreshold):
		reason = "invalid_threshold"
	}

	if s.metrics != nil {
		s.metrics.RecordRejection(reason)
	}
	s.log.WithError(err).WithField("reason", reason).Debug("request rejected")
	c.JSON(status, gin.H{"error": err.Error()})
}

func (s *Server) recordMutation(action string) {
	if s.metrics != nil {
		s.metrics.RecordMutation(action)
	}
}
