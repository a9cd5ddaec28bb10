package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"

	"sheetpos/internal/apierror"
	"sheetpos/internal/infra"
	"sheetpos/internal/middleware"
	"sheetpos/internal/repository"
	"sheetpos/internal/schema"
	"sheetpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that tags like min=0, gt=0
	// and required work on it.
	validate.RegisterCustomTypeFunc(func(field reflect.Value) any {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Report fields by their JSON names.
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// bindAndValidate binds the JSON body and runs validator tags.
// Returns false after writing the error response; the caller should return.
func bindAndValidate(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.New("Invalid JSON: "+err.Error()))
		return false
	}
	if err := validate.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
			return false
		}
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
		return false
	}
	return true
}

// respondError maps service and infrastructure errors onto the error envelope.
func respondError(c *gin.Context, err error) {
	var (
		upErr     *infra.UpstreamError
		schemaErr *schema.Error
	)
	logger := log.With().Str("request_id", c.GetString(middleware.RequestIDKey)).Str("path", c.FullPath()).Logger()

	switch {
	case errors.Is(err, context.Canceled):
		// client went away; nothing to answer
		c.Abort()
	case errors.As(err, &upErr):
		logger.Error().Err(err).Msg("sheets API failure")
		c.JSON(http.StatusBadGateway, apierror.New("Could not reach the spreadsheet service. Please try again later."))
	case errors.As(err, &schemaErr):
		logger.Error().Err(err).Msg("sheet layout mismatch")
		c.JSON(http.StatusInternalServerError, apierror.New(
			fmt.Sprintf("Sheet %q does not match its expected column layout", schemaErr.Sheet)))
	case errors.Is(err, repository.ErrUnknownSheet):
		c.JSON(http.StatusNotFound, apierror.New("Unknown sheet"))
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, apierror.New("Invalid username or password"))
	case errors.Is(err, service.ErrNegativeTotal):
		c.JSON(http.StatusUnprocessableEntity, apierror.New("Discount exceeds the sale total"))
	default:
		_ = c.Error(err)
	}
}

// actor is the username recorded on rows written by this request.
func actor(c *gin.Context) string {
	if sess := middleware.GetSession(c); sess != nil {
		return sess.Username
	}
	return ""
}
