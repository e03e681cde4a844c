package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"sushishop/internal/apperror"
	"sushishop/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
)

var validate = validator.New()

func init() {
	// Report fields by their JSON names so they match the request payload
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
}

// Routes are the router groups a handler may attach to
type Routes struct {
	Public *gin.RouterGroup // no token required
	User   *gin.RouterGroup // any authenticated account
	Admin  *gin.RouterGroup // ADMIN role only
}

var tagMessages = map[string]string{
	"required": "Обязательное поле",
	"email":    "Некорректный email",
	"uuid":     "Некорректный идентификатор",
	"url":      "Некорректная ссылка",
	"min":      "Слишком короткое значение",
	"max":      "Слишком длинное значение",
	"gt":       "Значение должно быть больше нуля",
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Некорректный JSON"))
		return false
	}
	if err := validate.Struct(req); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			respondError(c, err)
			return false
		}
		fields := make(map[string]string, len(errs))
		for _, fe := range errs {
			msg, known := tagMessages[fe.Tag()]
			if !known {
				msg = "Некорректное значение"
			}
			fields[fe.Field()] = msg
		}
		respondError(c, apperror.Validation(fields))
		return false
	}
	return true
}

// respondError maps service errors onto HTTP statuses. Unclassified errors are
// logged with the request id and answered with a generic message.
func respondError(c *gin.Context, err error) {
	var status int
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		status = http.StatusBadRequest
	case apperror.KindUnauthenticated:
		status = http.StatusUnauthorized
	case apperror.KindForbidden:
		status = http.StatusForbidden
	case apperror.KindNotFound:
		status = http.StatusNotFound
	case apperror.KindConflict:
		status = http.StatusConflict
	default:
		zerolog.Ctx(c.Request.Context()).Error().
			Err(err).
			Str("method", c.Request.Method).
			Str("path", c.FullPath()).
			Msg("request failed")
		c.JSON(http.StatusInternalServerError, response.Error(http.StatusInternalServerError, "Внутренняя ошибка сервера"))
		return
	}

	var appErr *apperror.Error
	errors.As(err, &appErr)
	if len(appErr.Fields) > 0 {
		c.JSON(status, response.ValidationError(status, appErr.Message, appErr.Fields))
		return
	}
	c.JSON(status, response.Error(status, appErr.Message))
}
