package handler

import (
	"net/http"
	"strconv"

	"sushishop/internal/apperror"
	"sushishop/internal/middleware"
	"sushishop/internal/service"
	"sushishop/pkg/response"

	"github.com/gin-gonic/gin"
)

type InventoryHandler struct {
	stockService service.StockService
}

func NewInventoryHandler(stockService service.StockService) *InventoryHandler {
	return &InventoryHandler{stockService: stockService}
}

func (h *InventoryHandler) RegisterRoutes(r Routes) {
	stock := r.Admin.Group("/stock")
	{
		stock.GET("", h.ListIngredients)
		stock.POST("", h.RecordIntake)
		stock.GET("/low", h.ListLowStock)
		stock.GET("/movements", h.ListMovements)
		stock.GET("/:id", h.GetStockItem)
		stock.PATCH("/:id", h.AdjustStockItem)
		stock.DELETE("/:id", h.DeleteStockItem)
	}
}

// ListIngredients returns every ingredient with its batches
// @Summary      List stock
// @Description  Ingredients with batches (newest receipt first), low-stock flag and category label
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Case-insensitive name filter"
// @Success      200     {object}  response.Response{data=[]service.IngredientResponse}
// @Failure      401     {object}  response.Response
// @Failure      403     {object}  response.Response
// @Router       /api/admin/stock [get]
func (h *InventoryHandler) ListIngredients(c *gin.Context) {
	ingredients, err := h.stockService.ListIngredients(c.Request.Context(), c.Query("search"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ingredients))
}

// RecordIntake registers a received batch
// @Summary      Record intake
// @Description  Creates a batch, merges it into the ingredient balance at weighted-average cost and appends an ARRIVAL movement
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.IntakeRequest  true  "Intake payload"
// @Success      201      {object}  response.Response{data=model.StockItem}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/admin/stock [post]
func (h *InventoryHandler) RecordIntake(c *gin.Context) {
	var req service.IntakeRequest
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.stockService.RecordIntake(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, item))
}

// ListLowStock returns ingredients at or below their reorder threshold
// @Summary      Low stock
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Success      200  {object}  response.Response{data=[]service.IngredientResponse}
// @Router       /api/admin/stock/low [get]
func (h *InventoryHandler) ListLowStock(c *gin.Context) {
	ingredients, err := h.stockService.ListLowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, ingredients))
}

// ListMovements returns the movement log, newest first
// @Summary      Stock movements
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        type        query     string  false  "ARRIVAL or WRITE_OFF"
// @Param        ingredient  query     string  false  "Exact ingredient name"
// @Param        limit       query     int     false  "Max entries (default 100, max 500)"
// @Success      200         {object}  response.Response{data=[]service.MovementResponse}
// @Failure      400         {object}  response.Response
// @Router       /api/admin/stock/movements [get]
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var limit int
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, apperror.Validation(map[string]string{"limit": "Должно быть целым числом"}))
			return
		}
		limit = n
	}

	movements, err := h.stockService.ListMovements(c.Request.Context(), service.MovementQuery{
		Type:           c.Query("type"),
		IngredientName: c.Query("ingredient"),
		Limit:          limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, movements))
}

// GetStockItem returns one batch with its ingredient
// @Summary      Get batch
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Stock item ID"
// @Success      200  {object}  response.Response{data=model.StockItem}
// @Failure      404  {object}  response.Response
// @Router       /api/admin/stock/{id} [get]
func (h *InventoryHandler) GetStockItem(c *gin.Context) {
	item, err := h.stockService.GetStockItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// AdjustStockItem patches a batch; a quantity change is written to the movement log
// @Summary      Adjust batch
// @Tags         stock
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                 true  "Stock item ID"
// @Param        payload  body      service.AdjustRequest  true  "Fields to change"
// @Success      200      {object}  response.Response{data=model.StockItem}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/admin/stock/{id} [patch]
func (h *InventoryHandler) AdjustStockItem(c *gin.Context) {
	var req service.AdjustRequest
	if !bindAndValidate(c, &req) {
		return
	}

	item, err := h.stockService.AdjustStockItem(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, item))
}

// DeleteStockItem removes a batch and writes off its full quantity
// @Summary      Delete batch
// @Tags         stock
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Stock item ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/admin/stock/{id} [delete]
func (h *InventoryHandler) DeleteStockItem(c *gin.Context) {
	if err := h.stockService.DeleteStockItem(c.Request.Context(), middleware.CurrentActor(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
