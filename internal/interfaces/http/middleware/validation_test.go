package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/machshop/backend/internal/interfaces/http/dto"
)

func TestSetupValidator(t *testing.T) {
	SetupValidator()

	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	assert.NotNil(t, v)
}

func TestHandleValidationError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	SetupValidator()

	type createEstimateRequest struct {
		CustomerID string `json:"customer_id" binding:"required,uuid"`
		Quantity   int    `json:"quantity" binding:"required,min=1"`
	}

	router := gin.New()
	router.POST("/estimates", func(c *gin.Context) {
		var req createEstimateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			HandleValidationError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/estimates", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	t.Run("invalid payload yields field-level details", func(t *testing.T) {
		w := post(`{"customer_id": "not-a-uuid", "quantity": 0}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.False(t, resp.Success)
		require.NotNil(t, resp.Error)
		assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
		assert.Equal(t, "Request validation failed", resp.Error.Message)
		require.Len(t, resp.Error.Details, 2)

		fields := []string{resp.Error.Details[0].Field, resp.Error.Details[1].Field}
		assert.Contains(t, fields, "customer_id")
		assert.Contains(t, fields, "quantity")
	})

	t.Run("valid payload passes", func(t *testing.T) {
		w := post(`{"customer_id": "a3bb189e-8bf9-3888-9912-ace4e6543002", "quantity": 5}`)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetValidationMessage(t *testing.T) {
	type sample struct {
		Required string `validate:"required"`
		Email    string `validate:"omitempty,email"`
		Min      string `validate:"omitempty,min=5"`
		MinInt   int    `validate:"omitempty,min=3"`
		Max      string `validate:"omitempty,max=3"`
		Len      string `validate:"omitempty,len=5"`
		UUID     string `validate:"omitempty,uuid"`
		OneOf    string `validate:"omitempty,oneof=a b c"`
		GTE      int    `validate:"omitempty,gte=10"`
		URL      string `validate:"omitempty,url"`
		Custom   string `validate:"omitempty,lowercase"`
	}

	v := validator.New()

	messageTests := []struct {
		name  string
		input sample
		field string
		want  string
	}{
		{"required", sample{}, "Required", "This field is required"},
		{"email", sample{Required: "x", Email: "nope"}, "Email", "Invalid email format"},
		{"min on string counts characters", sample{Required: "x", Min: "ab"}, "Min", "Must be at least 5 characters"},
		{"min on int", sample{Required: "x", MinInt: 1}, "MinInt", "Must be at least 3"},
		{"max on string", sample{Required: "x", Max: "abcd"}, "Max", "Must be at most 3 characters"},
		{"len", sample{Required: "x", Len: "ab"}, "Len", "Must be exactly 5 characters"},
		{"uuid", sample{Required: "x", UUID: "nope"}, "UUID", "Invalid UUID format"},
		{"oneof", sample{Required: "x", OneOf: "d"}, "OneOf", "Must be one of: a b c"},
		{"gte", sample{Required: "x", GTE: 5}, "GTE", "Must be greater than or equal to 10"},
		{"url", sample{Required: "x", URL: "nope"}, "URL", "Invalid URL format"},
		{"unknown tag falls back", sample{Required: "x", Custom: "UPPER"}, "Custom", "Invalid value"},
	}

	for _, tt := range messageTests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.input)
			require.Error(t, err)

			for _, e := range err.(validator.ValidationErrors) {
				if e.StructField() == tt.field {
					assert.Equal(t, tt.want, getValidationMessage(e))
					return
				}
			}
			t.Fatalf("no validation error for field %s", tt.field)
		})
	}
}
