package resource

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/poller"
	"github.com/jrsteele09/pcrs-client/upload"
	"github.com/rs/zerolog/log"
)

// Repository is the list query and mutations for one backend collection of T.
// Every successful mutation invalidates the collection's cache key, so the
// next List or Get goes back to the server. Failed mutations leave the cache
// untouched.
type Repository[T any] struct {
	name      string
	endpoints Endpoints
	key       cache.Key
	client    *httpclient.Client
	queries   *cache.QueryClient
	poll      poller.Config
}

type Option func(*settings)

type settings struct {
	endpoints *Endpoints
	key       cache.Key
	poll      poller.Config
}

// WithEndpoints overrides the default /admin/{name}/ endpoints.
func WithEndpoints(e Endpoints) Option {
	return func(s *settings) { s.endpoints = &e }
}

// WithCacheKey overrides the default ["admin", name] cache key.
func WithCacheKey(key cache.Key) Option {
	return func(s *settings) { s.key = key }
}

// WithPollConfig sets the schedule used to watch the list after an upload.
func WithPollConfig(cfg poller.Config) Option {
	return func(s *settings) { s.poll = cfg }
}

// NewRepository returns the admin repository for the named resource.
func NewRepository[T any](name string, client *httpclient.Client, queries *cache.QueryClient, opts ...Option) *Repository[T] {
	s := settings{poll: poller.DefaultConfig()}
	for _, o := range opts {
		o(&s)
	}
	endpoints := AdminEndpoints(name)
	if s.endpoints != nil {
		endpoints = *s.endpoints
	}
	key := s.key
	if key == nil {
		key = cache.NewKey("admin", name)
	}
	if s.poll.Name == "" {
		s.poll.Name = name
	}
	return &Repository[T]{
		name:      name,
		endpoints: endpoints,
		key:       key,
		client:    client,
		queries:   queries,
		poll:      s.poll,
	}
}

func (r *Repository[T]) Name() string {
	return r.name
}

func (r *Repository[T]) Endpoints() Endpoints {
	return r.endpoints
}

// Key is the cache key every mutation invalidates.
func (r *Repository[T]) Key() cache.Key {
	return r.key
}

// PageKey is the cache key of one page. Page 0 means the unpaged list.
func (r *Repository[T]) PageKey(page int) cache.Key {
	if page <= 0 {
		return r.key
	}
	return r.key.With("page=" + strconv.Itoa(page))
}

// DetailKey is the cache key of one item. It sits under Key.
func (r *Repository[T]) DetailKey(id string) cache.Key {
	return r.key.With(id)
}

// List returns one page of the collection, from cache when fresh. Page 0
// requests the collection without a page parameter.
func (r *Repository[T]) List(ctx context.Context, page int) (Page[T], error) {
	p, err := cache.Fetch(ctx, r.queries, r.PageKey(page), func(ctx context.Context) (Page[T], error) {
		var params url.Values
		if page > 0 {
			params = url.Values{"page": {strconv.Itoa(page)}}
		}
		var out Page[T]
		if err := r.client.Get(ctx, r.endpoints.Collection, params, &out); err != nil {
			return Page[T]{}, err
		}
		return out, nil
	})
	if err != nil {
		return Page[T]{}, fmt.Errorf("[%s.List] %w", r.name, err)
	}
	return p, nil
}

// Get returns a single item, from cache when fresh.
func (r *Repository[T]) Get(ctx context.Context, id string) (T, error) {
	item, err := cache.Fetch(ctx, r.queries, r.DetailKey(id), func(ctx context.Context) (T, error) {
		var out T
		err := r.client.Get(ctx, r.endpoints.Detail(id), nil, &out)
		return out, err
	})
	if err != nil {
		var zero T
		return zero, fmt.Errorf("[%s.Get] %w", r.name, err)
	}
	return item, nil
}

// Create POSTs payload to the collection.
func (r *Repository[T]) Create(ctx context.Context, payload any) (T, error) {
	var out T
	if err := Validate(payload); err != nil {
		return out, fmt.Errorf("[%s.Create] %w", r.name, err)
	}
	if err := r.client.Post(ctx, r.endpoints.Collection, payload, &out); err != nil {
		return out, fmt.Errorf("[%s.Create] %w", r.name, err)
	}
	r.invalidate(ctx)
	return out, nil
}

// Update PATCHes the item. Only the fields present in payload change.
func (r *Repository[T]) Update(ctx context.Context, id string, payload any) (T, error) {
	var out T
	if err := Validate(payload); err != nil {
		return out, fmt.Errorf("[%s.Update] %w", r.name, err)
	}
	if err := r.client.Patch(ctx, r.endpoints.Detail(id), payload, &out); err != nil {
		return out, fmt.Errorf("[%s.Update] %w", r.name, err)
	}
	r.invalidate(ctx)
	return out, nil
}

// Replace PUTs a full representation of the item.
func (r *Repository[T]) Replace(ctx context.Context, id string, payload any) (T, error) {
	var out T
	if err := Validate(payload); err != nil {
		return out, fmt.Errorf("[%s.Replace] %w", r.name, err)
	}
	if err := r.client.Put(ctx, r.endpoints.Detail(id), payload, &out); err != nil {
		return out, fmt.Errorf("[%s.Replace] %w", r.name, err)
	}
	r.invalidate(ctx)
	return out, nil
}

// Delete removes the item.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	if err := r.client.Delete(ctx, r.endpoints.Detail(id), nil); err != nil {
		return fmt.Errorf("[%s.Delete] %w", r.name, err)
	}
	r.invalidate(ctx)
	return nil
}

// Upload sends files to the bulk upload endpoint. The import runs on the
// server; use UploadAndWatch to follow it.
func (r *Repository[T]) Upload(ctx context.Context, fields map[string]string, files ...upload.File) (upload.Job, error) {
	if r.endpoints.Upload == "" {
		return upload.Job{}, fmt.Errorf("[%s.Upload] no upload endpoint", r.name)
	}
	var job upload.Job
	if err := r.client.PostMultipart(ctx, r.endpoints.Upload, fields, files, &job); err != nil {
		return upload.Job{}, fmt.Errorf("[%s.Upload] %w", r.name, err)
	}
	r.invalidate(ctx)
	return job, nil
}

// UploadAndWatch uploads and then refetches the list on the repository's
// poll schedule until new rows appear or the deadline passes.
func (r *Repository[T]) UploadAndWatch(ctx context.Context, fields map[string]string, files ...upload.File) (upload.Job, *poller.Handle, error) {
	send := func(ctx context.Context) (upload.Job, error) {
		return r.Upload(ctx, fields, files...)
	}
	return upload.Submit(ctx, r.poll, send, r.Count)
}

// Count refetches the unpaged list and returns the server's row count.
func (r *Repository[T]) Count(ctx context.Context) (int, error) {
	if err := r.queries.Invalidate(ctx, r.key); err != nil {
		return 0, err
	}
	p, err := r.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	return p.Count, nil
}

// Invalidate marks the list, every page and every cached item stale.
func (r *Repository[T]) Invalidate(ctx context.Context) error {
	return r.queries.Invalidate(ctx, r.key)
}

func (r *Repository[T]) invalidate(ctx context.Context) {
	if err := r.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Str("resource", r.name).Msg("cache invalidation failed")
	}
}
