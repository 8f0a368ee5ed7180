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

func serve(engine *gin.Engine, method, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(method, target, nil))
	return w
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.NotNil(t, r)
	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.APIPrefix())
	assert.Empty(t, r.mounts)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))
	assert.Equal(t, "/api/v2", r.APIPrefix())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	editors := NewArea("editors", "/editors")
	editors.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "home") })
	pay := NewArea("pay", "/mozpay")
	pay.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "lobby") })

	r.Register(editors).RegisterRoot(pay)
	r.Setup()

	w := serve(engine, http.MethodGet, "/api/v1/editors/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "home", w.Body.String())

	w = serve(engine, http.MethodGet, "/mozpay/")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "lobby", w.Body.String())

	assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodGet, "/api/v1/mozpay/").Code)
}

func TestArea(t *testing.T) {
	t.Run("handle registers every method", func(t *testing.T) {
		engine := gin.New()
		a := NewArea("editors", "/editors")
		a.Handle([]string{http.MethodGet, http.MethodPost}, "/review/:id", func(c *gin.Context) {
			c.String(http.StatusOK, c.Request.Method+" "+c.Param("id"))
		})
		a.RegisterRoutes(engine.Group("/api/v1"))

		assert.Equal(t, "GET 12", serve(engine, http.MethodGet, "/api/v1/editors/review/12").Body.String())
		assert.Equal(t, "POST 12", serve(engine, http.MethodPost, "/api/v1/editors/review/12").Body.String())
		assert.Equal(t, http.StatusNotFound, serve(engine, http.MethodPut, "/api/v1/editors/review/12").Code)
	})

	t.Run("area middleware only wraps its own routes", func(t *testing.T) {
		engine := gin.New()
		deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusForbidden) }

		pay := NewArea("pay", "/mozpay").GET("/fakepay", func(c *gin.Context) { c.Status(http.StatusOK) })
		editors := NewArea("editors", "/editors").Use(deny).GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

		pay.RegisterRoutes(engine.Group("/"))
		editors.RegisterRoutes(engine.Group("/"))

		assert.Equal(t, http.StatusOK, serve(engine, http.MethodGet, "/mozpay/fakepay").Code)
		assert.Equal(t, http.StatusForbidden, serve(engine, http.MethodGet, "/editors/").Code)
	})

	t.Run("middleware runs in order before the handler", func(t *testing.T) {
		engine := gin.New()
		var order []string
		step := func(name string) gin.HandlerFunc {
			return func(c *gin.Context) { order = append(order, name) }
		}
		NewArea("editors", "/editors").
			Use(step("auth"), step("locale")).
			GET("/queue/:tab", func(c *gin.Context) {
				order = append(order, "handler")
				c.String(http.StatusOK, c.Param("tab"))
			}).
			RegisterRoutes(engine.Group("/api/v1"))

		w := serve(engine, http.MethodGet, "/api/v1/editors/queue/pending")
		assert.Equal(t, "pending", w.Body.String())
		assert.Equal(t, []string{"auth", "locale", "handler"}, order)
	})
}

func TestArea_Paths(t *testing.T) {
	a := NewArea("editors", "/editors")
	a.GET("/", nil)
	a.Handle([]string{http.MethodGet, http.MethodPost}, "/review/:version_id", nil)

	assert.Equal(t, []string{
		"GET /api/v1/editors/",
		"GET /api/v1/editors/review/:version_id",
		"POST /api/v1/editors/review/:version_id",
	}, a.Paths("/api/v1"))
	assert.Equal(t, []string{"GET /mozpay/"}, NewArea("pay", "/mozpay").GET("/", nil).Paths("/"))
}
