package apperror

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindOf(t *testing.T) {
	cause := errors.New("connection reset")

	assert.Equal(t, KindNotFound, KindOf(NotFound("order ORD-20250301-0001 not found")))
	assert.Equal(t, KindStorage, KindOf(fmt.Errorf("create order: %w", Storage(cause))))
	assert.Equal(t, KindUnhandled, KindOf(cause))
	assert.Equal(t, KindUnhandled, KindOf(nil))
}

func TestUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("duplicate key")
	err := Conflict("could not assign order id", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "duplicate key")
	assert.Equal(t, "validation: bad email", Validation("bad email").Error())
}

type lineFixture struct {
	Quantity int `json:"quantity" binding:"gt=0"`
}

type payloadFixture struct {
	Name  string        `json:"customer_name" binding:"required"`
	Skip  int           `form:"skip" binding:"min=0"`
	Items []lineFixture `json:"item" binding:"dive"`
}

func TestFromValidatorUsesAPIFieldNames(t *testing.T) {
	v := validator.New()
	v.SetTagName("binding")
	v.RegisterTagNameFunc(FieldName)

	err := v.Struct(payloadFixture{Skip: -1, Items: []lineFixture{{Quantity: 0}}})
	require.Error(t, err)

	appErr := FromValidator("invalid request payload: ", err)
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Contains(t, appErr.Message, "customer_name failed on required")
	assert.Contains(t, appErr.Message, "skip failed on min")
	assert.Contains(t, appErr.Message, "item[0].quantity failed on gt")
	assert.NotContains(t, appErr.Message, "payloadFixture")
	assert.NotContains(t, appErr.Message, "Quantity")
}

func TestFromValidatorPassesOtherErrorsThrough(t *testing.T) {
	appErr := FromValidator("invalid request payload: ", errors.New("unexpected EOF"))
	assert.Equal(t, KindValidation, appErr.Kind)
	assert.Equal(t, "invalid request payload: unexpected EOF", appErr.Message)
}
