// Package mockapi is an in-memory implementation of the analytics API the console
// talks to. It backs local development and the client tests.
package mockapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/secops-console/internal/config"
	"github.com/jrsteele09/secops-console/users"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/rs/zerolog/log"
)

const contentTypeJSON = "application/json"

// Config is the configuration the mock API reads.
type Config interface {
	config.CorsConfig
	config.SecurityConfig
	GetEnv() string
}

type Server struct {
	env      string
	mux      *http.ServeMux
	routes   []string
	config   Config
	accounts users.AccountRepo
	data     *Store
	tokens   *TokenIssuer
	validate *Validator
	nowTime  func() time.Time
}

// ServerOption defines a function type to modify the Server instance.
type ServerOption func(*Server)

// WithNowTime sets the now time function (primarily for testing)
func WithNowTime(nowFunc func() time.Time) ServerOption {
	return func(s *Server) {
		s.nowTime = nowFunc
	}
}

// WithStore replaces the empty event and alert store
func WithStore(store *Store) ServerOption {
	return func(s *Server) {
		s.data = store
	}
}

func New(cfg Config, accounts users.AccountRepo, options ...ServerOption) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("[mockapi.New] config is required")
	}
	if accounts == nil {
		return nil, errors.New("[mockapi.New] account repo is required")
	}

	s := &Server{
		env:      cfg.GetEnv(),
		mux:      http.NewServeMux(),
		config:   cfg,
		accounts: accounts,
		validate: NewValidator(),
		nowTime:  time.Now,
	}
	for _, opt := range options {
		opt(s)
	}
	if s.data == nil {
		s.data = NewStore()
	}
	s.tokens = NewTokenIssuer(cfg.GetJWTSecret(), cfg.GetAccessTokenExpiry(), WithIssuerNowTime(s.nowTime))

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

// Store exposes the event and alert data behind the API.
func (s *Server) Store() *Store {
	return s.data
}

// Tokens exposes the issuer that signs session tokens.
func (s *Server) Tokens() *TokenIssuer {
	return s.tokens
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Handler returns the server wrapped in the CORS policy from the configuration.
func (s *Server) Handler() http.Handler {
	origins := s.config.GetAllowedOrigins()
	return cors.New(cors.Options{
		AllowedOrigins:   origins.List(),
		AllowedMethods:   s.config.GetAllowedMethods(),
		AllowedHeaders:   s.config.GetAllowedHeaders(),
		AllowCredentials: !origins.IsAllowedOrigin("*"),
		MaxAge:           86400,
	}).Handler(s)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)
		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = Gray
	}
	log.Info().Msgf("[%-19s] %s", color+paddedMethod+ResetColor, path)
}
