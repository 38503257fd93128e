// Package webserver hosts the HTTP API: routing helpers, authentication,
// rate limiting, metrics and uploaded image serving.
package webserver

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/Varun1206Tom/inventory-sales-system-sub000/config"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/auth"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/domain"
	"github.com/Varun1206Tom/inventory-sales-system-sub000/internal/storage"
)

const (
	ApiPrefix = "/api/v1"
	bodyLimit = "8M"
)

var (
	metricsOnce       sync.Once
	metricsMiddleware echo.MiddlewareFunc
)

// AdminServer wraps the echo instance and the API group.
type AdminServer struct {
	root    *echo.Echo
	api     *echo.Group
	auth    echo.MiddlewareFunc
	limiter Limiter
	images  storage.ImageStore
	cfg     *config.AppConfig
}

// Options collects what the server needs from the application.
type Options struct {
	Config  *config.AppConfig
	Gateway *auth.Gateway
	Images  storage.ImageStore
	Limiter Limiter
}

var server *AdminServer

// Init builds the global server. Routes must be registered afterwards.
func Init(opts Options) *AdminServer {
	server = NewAdminServer(opts)
	return server
}

// NewAdminServer configures echo with the shared middleware stack.
func NewAdminServer(opts Options) *AdminServer {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.JSONSerializer = jsonSerializer{}
	e.Validator = newValidator()
	e.HTTPErrorHandler = httpErrorHandler

	metricsOnce.Do(func() {
		metricsMiddleware = echoprometheus.NewMiddleware("shopd")
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, "X-Auth-Token"},
	}))
	e.Use(middleware.BodyLimit(bodyLimit))
	e.Use(metricsMiddleware)

	s := &AdminServer{
		root:    e,
		api:     e.Group(ApiPrefix),
		limiter: opts.Limiter,
		images:  opts.Images,
		cfg:     opts.Config,
	}
	if opts.Gateway != nil {
		s.auth = NewAuthMiddleware(opts.Gateway)
	} else {
		s.auth = func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				return next(c)
			}
		}
	}

	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET(storage.URLPrefix+":name", s.serveImage)
	return s
}

// Echo exposes the underlying router, mainly for tests.
func (s *AdminServer) Echo() *echo.Echo {
	return s.root
}

func (s *AdminServer) serveImage(c echo.Context) error {
	if s.images == nil {
		return FailErr(c, domain.NotFound("Image not found"))
	}
	name := c.Param("name")
	rc, err := s.images.Open(c.Request().Context(), name)
	if err != nil {
		return FailErr(c, err)
	}
	defer rc.Close()
	c.Response().Header().Set("Cache-Control", "public, max-age=86400")
	return c.Stream(http.StatusOK, storage.ContentType(name), rc)
}

func requestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogLatency:  true,
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogRemoteIP: true,
		LogError:    true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("namespace", "http"),
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
				zap.String("remote_ip", v.RemoteIP),
			}
			if v.Error != nil {
				zap.L().Warn("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Debug("request", fields...)
			return nil
		},
	})
}

// Start listens on the configured address until Shutdown.
func (s *AdminServer) Start() error {
	addr := fmt.Sprintf("%s:%d", s.cfg.Web.Host, s.cfg.Web.Port)
	zap.S().Infof("Prepare to start the web server %s", addr)
	err := s.root.Start(addr)
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *AdminServer) Shutdown(ctx context.Context) error {
	err := s.root.Shutdown(ctx)
	if c, ok := s.limiter.(io.Closer); ok {
		_ = c.Close()
	}
	return err
}

// Start runs the global server.
func Start() error {
	return server.Start()
}

// Shutdown stops the global server waiting at most timeout for requests.
func Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return server.Shutdown(ctx)
}

// Limit applies the server's auth rate limiter to a route.
func Limit() echo.MiddlewareFunc {
	return RateLimit(server.limiter)
}

func (s *AdminServer) protected(m []echo.MiddlewareFunc) []echo.MiddlewareFunc {
	return append([]echo.MiddlewareFunc{s.auth}, m...)
}

// ApiGET registers an authenticated GET route under ApiPrefix.
func ApiGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, server.protected(m)...)
}

func ApiPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, server.protected(m)...)
}

func ApiPUT(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PUT(path, h, server.protected(m)...)
}

func ApiPATCH(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.PATCH(path, h, server.protected(m)...)
}

func ApiDELETE(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.DELETE(path, h, server.protected(m)...)
}

// PubGET registers a public GET route under ApiPrefix.
func PubGET(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.GET(path, h, m...)
}

func PubPOST(path string, h echo.HandlerFunc, m ...echo.MiddlewareFunc) {
	server.api.POST(path, h, m...)
}

// RootGET registers a public GET route outside ApiPrefix.
func RootGET(path string, h echo.HandlerFunc) {
	server.root.GET(path, h)
}
