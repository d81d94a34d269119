package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(engine *gin.Engine, method, path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, path, nil))
	return w
}

func textHandler(status int, body string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.String(status, body)
	}
}

func TestNewRouter(t *testing.T) {
	t.Run("defaults to v1", func(t *testing.T) {
		r := NewRouter(gin.New())
		assert.Equal(t, "v1", r.apiVersion)
		assert.Empty(t, r.registrars)
	})

	t.Run("version prefix is configurable", func(t *testing.T) {
		r := NewRouter(gin.New(), WithAPIVersion("v2"))
		assert.Equal(t, "v2", r.apiVersion)
	})
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	estimating := NewDomainGroup("estimating", "/estimating")
	estimating.GET("/estimates", textHandler(http.StatusOK, "estimates"))

	partner := NewDomainGroup("partner", "/partner")
	partner.GET("/customers", textHandler(http.StatusOK, "customers"))

	r.Register(estimating).Register(partner)
	r.Setup()

	w := serve(engine, "GET", "/api/v1/estimating/estimates")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "estimates", w.Body.String())

	w = serve(engine, "GET", "/api/v1/partner/customers")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "customers", w.Body.String())
}

func TestDomainGroupVerbs(t *testing.T) {
	tests := []struct {
		method     string
		declare    func(dg *DomainGroup, h gin.HandlerFunc)
		requestURL string
		wantStatus int
	}{
		{
			method:     http.MethodGet,
			declare:    func(dg *DomainGroup, h gin.HandlerFunc) { dg.GET("/estimates", h) },
			requestURL: "/api/v1/estimating/estimates",
			wantStatus: http.StatusOK,
		},
		{
			method:     http.MethodPost,
			declare:    func(dg *DomainGroup, h gin.HandlerFunc) { dg.POST("/estimates", h) },
			requestURL: "/api/v1/estimating/estimates",
			wantStatus: http.StatusCreated,
		},
		{
			method:     http.MethodPut,
			declare:    func(dg *DomainGroup, h gin.HandlerFunc) { dg.PUT("/estimates/:id", h) },
			requestURL: "/api/v1/estimating/estimates/42",
			wantStatus: http.StatusOK,
		},
		{
			method:     http.MethodPatch,
			declare:    func(dg *DomainGroup, h gin.HandlerFunc) { dg.PATCH("/estimates/:id", h) },
			requestURL: "/api/v1/estimating/estimates/42",
			wantStatus: http.StatusOK,
		},
		{
			method:     http.MethodDelete,
			declare:    func(dg *DomainGroup, h gin.HandlerFunc) { dg.DELETE("/estimates/:id", h) },
			requestURL: "/api/v1/estimating/estimates/42",
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tc := range tests {
		t.Run(tc.method, func(t *testing.T) {
			engine := gin.New()
			dg := NewDomainGroup("estimating", "/estimating")
			tc.declare(dg, textHandler(tc.wantStatus, ""))

			dg.RegisterRoutes(engine.Group("/api/v1"))

			w := serve(engine, tc.method, tc.requestURL)
			assert.Equal(t, tc.wantStatus, w.Code)
		})
	}
}

func TestDomainGroupMiddleware(t *testing.T) {
	engine := gin.New()
	dg := NewDomainGroup("estimating", "/estimating")
	dg.Use(func(c *gin.Context) {
		c.Header("X-Domain", dg.Name())
		c.Next()
	})
	dg.GET("/estimates", textHandler(http.StatusOK, "ok"))

	dg.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, "GET", "/api/v1/estimating/estimates")
	assert.Equal(t, "estimating", w.Header().Get("X-Domain"))
}

func TestDomainGroupSubgroups(t *testing.T) {
	engine := gin.New()
	dg := NewDomainGroup("estimating", "/estimating")

	estimates := dg.Group("estimates", "/estimates")
	estimates.GET("", textHandler(http.StatusOK, "estimate list"))

	priceBooks := dg.Group("price-books", "/price-books")
	priceBooks.GET("", textHandler(http.StatusOK, "price book list"))

	dg.RegisterRoutes(engine.Group("/api/v1"))

	w := serve(engine, "GET", "/api/v1/estimating/estimates")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "estimate list", w.Body.String())

	w = serve(engine, "GET", "/api/v1/estimating/price-books")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "price book list", w.Body.String())
}

func TestChainedDeclarations(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	dg := NewDomainGroup("estimating", "/estimating")
	dg.GET("/estimates", textHandler(http.StatusOK, "list")).
		POST("/estimates", textHandler(http.StatusCreated, "created")).
		DELETE("/estimates/:id", textHandler(http.StatusNoContent, ""))

	r.Register(dg).Setup()

	assert.Equal(t, http.StatusOK, serve(engine, "GET", "/api/v1/estimating/estimates").Code)
	assert.Equal(t, http.StatusCreated, serve(engine, "POST", "/api/v1/estimating/estimates").Code)
	assert.Equal(t, http.StatusNoContent, serve(engine, "DELETE", "/api/v1/estimating/estimates/7").Code)
}
