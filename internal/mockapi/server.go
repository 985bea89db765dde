// Package mockapi is an in-process double of the task API. Tests mount
// its Handler on an httptest server; the taskmock binary serves it over a
// real port. It speaks the same wire contract as the production service:
// plain JSON arrays for collections, {"message"} and {"errors"} error
// bodies, bearer tokens from /auth/login.
package mockapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"taskapp/internal/mockapi/handler"
	"taskapp/internal/mockapi/middleware"
	"taskapp/internal/mockapi/store"
	"taskapp/internal/mockapi/store/memory"
	"taskapp/internal/mockapi/token"
)

const defaultTokenSecret = "taskapp-mock-secret"

// Server wires stores, token issuer and handlers into one gin engine.
type Server struct {
	engine        *gin.Engine
	store         store.Store
	issuer        *token.Issuer
	authRequired  bool
	tokenSecret   []byte
	tokenLifetime time.Duration
	requestLogger *zerolog.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithStore replaces the default in-memory backend.
func WithStore(s store.Store) Option {
	return func(srv *Server) {
		srv.store = s
	}
}

// WithAuthRequired makes every /tasks route demand a live bearer token.
// Without it the collection is anonymous, json-server style.
func WithAuthRequired() Option {
	return func(srv *Server) {
		srv.authRequired = true
	}
}

// WithTokenSecret fixes the JWT signing secret.
func WithTokenSecret(secret []byte) Option {
	return func(srv *Server) {
		srv.tokenSecret = secret
	}
}

// WithTokenLifetime bounds how long issued tokens stay valid.
func WithTokenLifetime(lifetime time.Duration) Option {
	return func(srv *Server) {
		srv.tokenLifetime = lifetime
	}
}

// WithRequestLogger logs one line per handled request.
func WithRequestLogger(logger zerolog.Logger) Option {
	return func(srv *Server) {
		srv.requestLogger = &logger
	}
}

// New assembles a ready-to-serve mock API.
func New(opts ...Option) *Server {
	gin.SetMode(gin.ReleaseMode)

	srv := &Server{
		store:         memory.New(),
		tokenSecret:   []byte(defaultTokenSecret),
		tokenLifetime: time.Hour,
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.issuer = token.NewIssuer(srv.tokenSecret, srv.tokenLifetime)
	srv.engine = srv.buildRouter()
	return srv
}

func (s *Server) buildRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if s.requestLogger != nil {
		router.Use(middleware.RequestLogger(*s.requestLogger))
	}

	authHandler := handler.NewAuthHandler(s.store.Users(), s.issuer)
	taskHandler := handler.NewTaskHandler(s.store.Tasks())

	auth := router.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
	}

	tasks := router.Group("/tasks")
	if s.authRequired {
		tasks.Use(middleware.RequireAuth(s.issuer))
	}
	{
		tasks.GET("", taskHandler.List)
		tasks.POST("", taskHandler.Create)
		tasks.GET("/:id", taskHandler.Get)
		tasks.PUT("/:id", taskHandler.Update)
		tasks.DELETE("/:id", taskHandler.Delete)
	}

	return router
}

// Handler returns the router, ready for httptest.NewServer or http.Server.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Store exposes the backend so tests and the taskmock binary can seed it.
func (s *Server) Store() store.Store {
	return s.store
}

// IssueToken mints a live token for userID without going through login.
func (s *Server) IssueToken(userID int64) (string, error) {
	return s.issuer.Issue(userID)
}

// RevokeToken invalidates one issued token. The next request carrying it
// is answered with 401.
func (s *Server) RevokeToken(tokenString string) {
	s.issuer.Revoke(tokenString)
}

// ExpireTokens invalidates every issued token at once.
func (s *Server) ExpireTokens() {
	s.issuer.RevokeAll()
}
