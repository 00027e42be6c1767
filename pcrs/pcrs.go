// Package pcrs wires the client SDK together: the persisted session, the
// query cache, the HTTP client and every resource service.
package pcrs

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jrsteele09/pcrs-client/auth"
	"github.com/jrsteele09/pcrs-client/benchmarks"
	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/customers"
	"github.com/jrsteele09/pcrs-client/guard"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/internal/config"
	"github.com/jrsteele09/pcrs-client/orders"
	"github.com/jrsteele09/pcrs-client/poller"
	"github.com/jrsteele09/pcrs-client/products"
	"github.com/jrsteele09/pcrs-client/recommender"
	"github.com/jrsteele09/pcrs-client/resource"
	"github.com/jrsteele09/pcrs-client/sessions"
	"github.com/jrsteele09/pcrs-client/storage"
	"github.com/jrsteele09/pcrs-client/storage/filestore"
	"github.com/jrsteele09/pcrs-client/suggestions"
	"github.com/jrsteele09/pcrs-client/users"
	"github.com/jrsteele09/pcrs-client/vendors"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

type Client struct {
	Config   config.Config
	Sessions *sessions.Manager
	Queries  *cache.QueryClient
	HTTP     *httpclient.Client

	Auth        *auth.Service
	Vendors     *vendors.Service
	Customers   *customers.Service
	Products    *products.Service
	Benchmarks  *benchmarks.Service
	Orders      *orders.Service
	Suggestions *suggestions.Service
	Recommender *recommender.Service

	redis *redis.Client
}

type options struct {
	store      storage.Store
	cacheStore cache.Store
	httpClient *http.Client
}

type Option func(*options)

// WithStore replaces the file-backed session store.
func WithStore(store storage.Store) Option {
	return func(o *options) { o.store = store }
}

// WithCacheStore replaces the configured query cache backend.
func WithCacheStore(store cache.Store) Option {
	return func(o *options) { o.cacheStore = store }
}

func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

func New(ctx context.Context, cfg config.Config, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	c := &Client{Config: cfg}

	if o.store == nil {
		fs, err := filestore.Open(cfg.GetStorePath())
		if err != nil {
			return nil, fmt.Errorf("[pcrs.New] failed to open the session store: %w", err)
		}
		o.store = fs
	}
	c.Sessions = sessions.NewManager(o.store)

	if o.cacheStore == nil {
		store, err := c.cacheStore(ctx)
		if err != nil {
			return nil, err
		}
		o.cacheStore = store
	}
	c.Queries = cache.NewQueryClient(
		cache.WithStore(o.cacheStore),
		cache.WithStaleTime(cfg.GetCacheStaleTime()),
	)

	httpOpts := []httpclient.Option{
		httpclient.WithTimeout(cfg.GetHTTPTimeout()),
		httpclient.WithTokenSource(c.Sessions.TokenSource()),
	}
	if o.httpClient != nil {
		httpOpts = append(httpOpts, httpclient.WithHTTPClient(o.httpClient))
	}
	c.HTTP = httpclient.New(cfg.GetAPIURL(), httpOpts...)

	var err error
	if c.Auth, err = auth.NewService(c.HTTP, c.Sessions, c.Queries); err != nil {
		return nil, fmt.Errorf("[pcrs.New] %w", err)
	}
	poll := resource.WithPollConfig(poller.Config{
		Interval: cfg.GetPollInterval(),
		Deadline: cfg.GetPollDeadline(),
	})
	c.Vendors = vendors.NewService(c.HTTP, c.Queries, poll)
	c.Customers = customers.NewService(c.HTTP, c.Queries, poll)
	c.Products = products.NewService(c.HTTP, c.Queries, poll)
	c.Benchmarks = benchmarks.NewService(c.HTTP, c.Queries, poll)
	c.Orders = orders.NewService(c.HTTP, c.Queries)
	c.Suggestions = suggestions.NewService(c.HTTP, c.Queries, cfg.GetSuggestionsTTL())
	c.Recommender = recommender.NewService(c.HTTP, c.Sessions, c.Queries)
	return c, nil
}

func (c *Client) cacheStore(ctx context.Context) (cache.Store, error) {
	if c.Config.GetCacheBackend() != config.CacheBackendRedis {
		return cache.NewMemoryStore(), nil
	}
	rdb, err := cache.DialRedis(ctx, c.Config.GetRedisAddr())
	if err != nil {
		return nil, fmt.Errorf("[pcrs.New] failed to connect to the redis cache: %w", err)
	}
	c.redis = rdb
	log.Debug().Str("addr", c.Config.GetRedisAddr()).Msg("using redis query cache")
	return cache.NewRedisStore(rdb), nil
}

// Guard returns a route guard for the given roles. No roles means any
// signed-in user.
func (c *Client) Guard(roles ...users.Role) *guard.Guard {
	return guard.New(c.Sessions, c.Auth, roles...)
}

// Warmup loads the profile (when signed in) and the suggestion list in
// parallel so later reads are served from the cache.
func (c *Client) Warmup(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	if c.Sessions.Username() != "" {
		g.Go(func() error {
			_, err := c.Auth.Profile(ctx)
			return err
		})
	}
	g.Go(func() error {
		_, err := c.Suggestions.Words(ctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("[pcrs.Warmup] %w", err)
	}
	return nil
}

// Close waits for pending cache events and releases the redis connection.
func (c *Client) Close() error {
	c.Queries.WaitEvents()
	if c.redis != nil {
		return c.redis.Close()
	}
	return nil
}
