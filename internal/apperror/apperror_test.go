package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNotFound, KindOf(NotFound("missing")))
	assert.Equal(t, KindForbidden, KindOf(fmt.Errorf("wrapped: %w", Forbidden("no"))))
	assert.Equal(t, KindInternal, KindOf(errors.New("db down")))
	assert.False(t, Is(nil, KindInternal))
}

func TestValidationErrorMessage(t *testing.T) {
	err := Validation(map[string]string{"net_weight": "too big", "gross_weight": "required"})
	assert.Equal(t, "Некорректные данные (gross_weight: required; net_weight: too big)", err.Error())
	assert.True(t, Is(err, KindValidation))
}
