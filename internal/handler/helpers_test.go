package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"sheetpos/internal/infra"
	"sheetpos/internal/repository"
	"sheetpos/internal/schema"
	"sheetpos/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func respond(err error) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	respondError(c, err)
	c.Writer.WriteHeaderNow()
	return w
}

func TestRespondErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"upstream", &infra.UpstreamError{Op: "get", Sheet: "Sales", Status: 503, Err: errors.New("Service Unavailable")}, http.StatusBadGateway},
		{"schema", &schema.Error{Sheet: "Sales", Field: schema.Revenue, Index: 9, Width: 3}, http.StatusInternalServerError},
		{"unknown sheet", fmt.Errorf("sheet: %w", repository.ErrUnknownSheet), http.StatusNotFound},
		{"credentials", service.ErrInvalidCredentials, http.StatusUnauthorized},
		{"negative total", service.ErrNegativeTotal, http.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, respond(tt.err).Code)
		})
	}
}

func TestRespondErrorClientGoneIsNotBadGateway(t *testing.T) {
	err := &infra.UpstreamError{Op: "get", Sheet: "Sales", Err: fmt.Errorf("unreachable: %w", context.Canceled)}

	w := respond(err)
	assert.NotEqual(t, http.StatusBadGateway, w.Code)
	assert.Empty(t, w.Body.String())
}
