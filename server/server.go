// Package server is an in-memory development backend that speaks the PCRS
// REST contract, so the client SDK and CLI can run without the production
// backend.
package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/jrsteele09/pcrs-client/benchmarks"
	"github.com/jrsteele09/pcrs-client/internal/config"
	"github.com/jrsteele09/pcrs-client/orders"
	"github.com/jrsteele09/pcrs-client/products"
	"github.com/jrsteele09/pcrs-client/server/catalog"
	"github.com/jrsteele09/pcrs-client/server/recsession"
	"github.com/jrsteele09/pcrs-client/token"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Repos holds the backend's storage.
type Repos struct {
	Accounts   users.AccountRepo
	Products   catalog.Repo[products.Product]
	Orders     catalog.Repo[orders.Order]
	Benchmarks catalog.Repo[benchmarks.Benchmark]
	Sessions   recsession.Repo
}

// NewInMemoryRepos returns empty in-memory catalog and session repos around
// the given account repo.
func NewInMemoryRepos(accounts users.AccountRepo) Repos {
	return Repos{
		Accounts:   accounts,
		Products:   catalog.NewInMemoryRepo(func(p *products.Product) *int { return &p.ID }),
		Orders:     catalog.NewInMemoryRepo(func(o *orders.Order) *int { return &o.ID }),
		Benchmarks: catalog.NewInMemoryRepo(func(b *benchmarks.Benchmark) *int { return &b.ID }),
		Sessions:   recsession.NewInMemoryRepo(),
	}
}

type Server struct {
	env         string // Environment (e.g., "DEV", "PROD")
	mux         *http.ServeMux
	routes      []string
	config      config.Config
	repos       Repos
	issuer      *token.Issuer
	collections map[string]adminCollection

	jobDelay      time.Duration
	adminPassword string
	demoData      bool
	nowFunc       func() time.Time

	jobs       *errgroup.Group
	jobsCtx    context.Context
	cancelJobs context.CancelFunc
}

type Option func(*Server)

// WithJobDelay overrides how long a bulk upload takes to "process".
func WithJobDelay(d time.Duration) Option {
	return func(s *Server) { s.jobDelay = d }
}

// WithAdminPassword fixes the seeded admin's password.
func WithAdminPassword(password string) Option {
	return func(s *Server) { s.adminPassword = password }
}

// WithDemoData seeds vendors, products and benchmarks.
func WithDemoData() Option {
	return func(s *Server) { s.demoData = true }
}

func WithNowFunc(now func() time.Time) Option {
	return func(s *Server) { s.nowFunc = now }
}

func New(cfg config.Config, repos Repos, opts ...Option) (*Server, error) {
	if repos.Accounts == nil {
		return nil, fmt.Errorf("[server.New] accounts repo is required")
	}
	s := &Server{
		env:           cfg.GetEnv(),
		mux:           http.NewServeMux(),
		config:        cfg,
		repos:         repos,
		jobDelay:      cfg.GetDevServerJobDelay(),
		adminPassword: cfg.GetAdminPassword(),
		nowFunc:       time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	s.issuer = token.NewIssuer(token.NewHMACSigner(cfg.GetDevServerSecret()),
		token.WithTokenExpiry(cfg.GetAccessTokenExpiry(), cfg.GetRefreshTokenExpiry()),
		token.WithNowFunc(s.nowFunc),
	)
	s.jobsCtx, s.cancelJobs = context.WithCancel(context.Background())
	s.jobs, s.jobsCtx = errgroup.WithContext(s.jobsCtx)
	s.collections = s.adminCollections()

	if err := s.InitialiseSystem(); err != nil {
		return nil, fmt.Errorf("[server.New] failed to initialise the system: %w", err)
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// Close cancels pending import jobs and waits for them to exit.
func (s *Server) Close() error {
	s.cancelJobs()
	return s.jobs.Wait()
}

// Issuer exposes the token issuer, e.g. for tests minting tokens directly.
func (s *Server) Issuer() *token.Issuer {
	return s.issuer
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return // Skip logging in non-development environments
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
	log.Debug().Msgf("[%-19s] %s", colourMethod(method), path)
}

// Helper function to determine the scheme (http/https)
func getScheme(r *http.Request) string {
	if r.TLS != nil {
		return "https"
	}
	if scheme := r.Header.Get("X-Forwarded-Proto"); scheme != "" {
		return scheme
	}
	return "http"
}
