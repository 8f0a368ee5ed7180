// Package router mounts the editor tools, the payment lobby and the system
// endpoints on the gin engine. Each area owns a path prefix and a middleware
// chain; areas are either versioned (/api/v1/...) or mounted at the root.
package router

import (
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Mountable is anything that can attach its routes to a gin group
type Mountable interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

type mount struct {
	area      Mountable
	versioned bool
}

type Router struct {
	engine     *gin.Engine
	apiVersion string
	logger     *zap.Logger
	mounts     []mount
}

type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the API prefix, "v1" by default
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) { r.apiVersion = version }
}

// WithLogger makes Setup log the routes of every mounted area
func WithLogger(logger *zap.Logger) RouterOption {
	return func(r *Router) { r.logger = logger }
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1", logger: zap.NewNop()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// APIPrefix is where versioned areas are mounted, e.g. /api/v1
func (r *Router) APIPrefix() string {
	return "/api/" + r.apiVersion
}

// Register mounts area below APIPrefix
func (r *Router) Register(area Mountable) *Router {
	r.mounts = append(r.mounts, mount{area: area, versioned: true})
	return r
}

// RegisterRoot mounts area at the server root. The payment lobby lives
// here because payment providers call back to fixed /mozpay URLs.
func (r *Router) RegisterRoot(area Mountable) *Router {
	r.mounts = append(r.mounts, mount{area: area})
	return r
}

// Setup attaches every registered area to the engine in registration order
func (r *Router) Setup() {
	api := r.engine.Group(r.APIPrefix())
	root := r.engine.Group("/")
	for _, m := range r.mounts {
		base, group := "/", root
		if m.versioned {
			base, group = r.APIPrefix(), api
		}
		m.area.RegisterRoutes(group)
		if a, ok := m.area.(*Area); ok {
			r.logger.Debug("Routes mounted",
				zap.String("area", a.name),
				zap.Strings("routes", a.Paths(base)),
			)
		}
	}
}

// Area collects the routes of one part of the site under a shared prefix
// and middleware chain.
type Area struct {
	name       string
	prefix     string
	middleware []gin.HandlerFunc
	routes     []route
}

type route struct {
	methods  []string
	path     string
	handlers []gin.HandlerFunc
}

func NewArea(name, prefix string) *Area {
	return &Area{name: name, prefix: prefix}
}

// Use appends middleware that runs before every route of the area
func (a *Area) Use(middleware ...gin.HandlerFunc) *Area {
	a.middleware = append(a.middleware, middleware...)
	return a
}

func (a *Area) GET(relativePath string, handlers ...gin.HandlerFunc) *Area {
	return a.Handle([]string{http.MethodGet}, relativePath, handlers...)
}

func (a *Area) POST(relativePath string, handlers ...gin.HandlerFunc) *Area {
	return a.Handle([]string{http.MethodPost}, relativePath, handlers...)
}

// Handle binds one path to several methods, for pages that render on GET
// and take their form on POST.
func (a *Area) Handle(methods []string, relativePath string, handlers ...gin.HandlerFunc) *Area {
	a.routes = append(a.routes, route{methods: methods, path: relativePath, handlers: handlers})
	return a
}

func (a *Area) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(a.prefix, a.middleware...)
	for _, rt := range a.routes {
		group.Match(rt.methods, rt.path, rt.handlers...)
	}
}

// Paths renders the area's routes as "METHOD /full/path" below base
func (a *Area) Paths(base string) []string {
	prefix := path.Join(base, a.prefix)
	var out []string
	for _, rt := range a.routes {
		full := path.Join(prefix, rt.path)
		if strings.HasSuffix(rt.path, "/") && full != "/" {
			full += "/"
		}
		for _, method := range rt.methods {
			out = append(out, method+" "+full)
		}
	}
	return out
}
