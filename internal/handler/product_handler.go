package handler

import (
	"net/http"

	"sushishop/internal/middleware"
	"sushishop/internal/service"
	"sushishop/pkg/response"

	"github.com/gin-gonic/gin"
)

type ProductHandler struct {
	productService service.ProductService
}

func NewProductHandler(productService service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

func (h *ProductHandler) RegisterRoutes(r Routes) {
	r.Public.GET("/products", h.ListMenu)
	r.Public.GET("/categories", h.ListCategories)

	r.Admin.POST("/products", h.CreateProduct)
	r.Admin.PUT("/products/:id", h.UpdateProduct)
}

// ListMenu returns the available menu
// @Summary      Menu
// @Tags         menu
// @Produce      json
// @Param        category_id  query     string  false  "Category ID"
// @Success      200          {object}  response.Response{data=[]model.Product}
// @Router       /api/products [get]
func (h *ProductHandler) ListMenu(c *gin.Context) {
	products, err := h.productService.ListMenu(c.Request.Context(), c.Query("category_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, products))
}

// ListCategories returns menu categories
// @Summary      Menu categories
// @Tags         menu
// @Produce      json
// @Success      200  {object}  response.Response{data=[]model.Category}
// @Router       /api/categories [get]
func (h *ProductHandler) ListCategories(c *gin.Context) {
	categories, err := h.productService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, categories))
}

// CreateProduct adds a menu position
// @Summary      Create product
// @Tags         menu
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.ProductRequest  true  "Product"
// @Success      201      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Router       /api/admin/products [post]
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req service.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, product))
}

// UpdateProduct replaces a menu position
// @Summary      Update product
// @Tags         menu
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                  true  "Product ID"
// @Param        payload  body      service.ProductRequest  true  "Product"
// @Success      200      {object}  response.Response{data=model.Product}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/admin/products/{id} [put]
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	var req service.ProductRequest
	if !bindAndValidate(c, &req) {
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, product))
}
