package handler

import (
	"errors"
	"net/http"
	"reflect"

	"github.com/firatemu/nuviabutik/internal/apierror"
	"github.com/firatemu/nuviabutik/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails —
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		fields := make(map[string]string)
		for _, fe := range err.(validator.ValidationErrors) {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// statusFor maps domain sentinels onto HTTP statuses. Order matters only for
// readability; sentinels are disjoint.
var statusFor = []struct {
	err    error
	status int
}{
	{service.ErrValidation, http.StatusBadRequest},
	{service.ErrAmountMismatch, http.StatusUnprocessableEntity},
	{service.ErrVoucherInvalid, http.StatusUnprocessableEntity},
	{service.ErrInsufficientStock, http.StatusConflict},
	{service.ErrStockLocked, http.StatusConflict},
	{service.ErrInvalidState, http.StatusConflict},
	{service.ErrConcurrencyConflict, http.StatusConflict},
	{service.ErrSequenceExhausted, http.StatusServiceUnavailable},
	{gorm.ErrRecordNotFound, http.StatusNotFound},
}

// respondServiceError translates a service-layer error into the API envelope.
// Unknown errors are pushed to the error-handler middleware as a 500.
func respondServiceError(c *gin.Context, err error) {
	for _, m := range statusFor {
		if errors.Is(err, m.err) {
			c.JSON(m.status, apierror.New(err.Error()))
			return
		}
	}
	_ = c.Error(err)
}

// actorFrom names the operator for audit columns. With the auth layer out of
// scope this is the X-Actor header or "counter".
func actorFrom(c *gin.Context) string {
	if actor := c.GetHeader("X-Actor"); actor != "" {
		return actor
	}
	return "counter"
}
