package handler

import (
	"net/http"

	"sushishop/internal/model"
	"sushishop/pkg/response"

	"github.com/gin-gonic/gin"
)

// VocabularyResponse lists every code table the admin panel renders
type VocabularyResponse struct {
	IngredientCategories []model.Label `json:"ingredient_categories"`
	OrderStatuses        []model.Label `json:"order_statuses"`
	MovementTypes        []model.Label `json:"movement_types"`
}

// GetVocabulary serves the fixed code tables with display labels
// @Summary      Code tables
// @Tags         vocabulary
// @Produce      json
// @Success      200  {object}  response.Response{data=VocabularyResponse}
// @Router       /api/vocabulary [get]
func GetVocabulary(c *gin.Context) {
	c.JSON(http.StatusOK, response.Success(http.StatusOK, VocabularyResponse{
		IngredientCategories: model.IngredientCategories(),
		OrderStatuses:        model.OrderStatuses(),
		MovementTypes:        model.MovementTypes(),
	}))
}
