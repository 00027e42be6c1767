package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	evbus "github.com/asaskevich/EventBus"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// Event topics published on the client's bus.
const (
	TopicFetched     = "cache:fetched"
	TopicInvalidated = "cache:invalidated"
	TopicSet         = "cache:set"
	TopicRemoved     = "cache:removed"
)

// Event describes one cache change.
type Event struct {
	Topic string
	Key   Key
}

// QueryClient mediates every cached read and every post-mutation cache
// change. Identical concurrent fetches for a key share one call.
type QueryClient struct {
	store     Store
	group     singleflight.Group
	bus       evbus.Bus
	staleTime time.Duration
	nowFunc   func() time.Time

	mu       sync.Mutex
	inflight map[string]*flight
}

// flight tracks a fetch so that an invalidation arriving mid-flight makes
// its result land already stale.
type flight struct {
	key   Key
	stale bool
}

type Option func(*QueryClient)

func WithStore(store Store) Option {
	return func(qc *QueryClient) { qc.store = store }
}

// WithStaleTime sets how long a fetched entry is served without refetching.
func WithStaleTime(d time.Duration) Option {
	return func(qc *QueryClient) { qc.staleTime = d }
}

func WithNowFunc(now func() time.Time) Option {
	return func(qc *QueryClient) { qc.nowFunc = now }
}

func NewQueryClient(opts ...Option) *QueryClient {
	qc := &QueryClient{
		bus:      evbus.New(),
		inflight: make(map[string]*flight),
	}
	for _, o := range opts {
		o(qc)
	}
	if qc.store == nil {
		qc.store = NewMemoryStore()
	}
	if qc.nowFunc == nil {
		qc.nowFunc = time.Now
	}
	return qc
}

// FetchOption adjusts a single Fetch.
type FetchOption func(*fetchConfig)

type fetchConfig struct {
	staleTime time.Duration
}

// StaleTime overrides the client's stale time for one query.
func StaleTime(d time.Duration) FetchOption {
	return func(fc *fetchConfig) { fc.staleTime = d }
}

// Fetch returns the cached value for key when it is fresh, otherwise runs fn
// and caches its result. Errors from fn are returned and leave the cache as it was.
func Fetch[T any](ctx context.Context, qc *QueryClient, key Key, fn func(context.Context) (T, error), opts ...FetchOption) (T, error) {
	var zero T
	fc := fetchConfig{staleTime: qc.staleTime}
	for _, o := range opts {
		o(&fc)
	}

	entry, ok, err := qc.store.Get(ctx, key)
	if err != nil {
		log.Warn().Err(err).Str("key", key.String()).Msg("cache read failed, fetching")
	} else if ok && qc.fresh(entry, fc.staleTime) {
		var v T
		if err := json.Unmarshal(entry.Data, &v); err == nil {
			return v, nil
		}
	}

	data, err := qc.do(ctx, key, func(ctx context.Context) ([]byte, error) {
		v, err := fn(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(v)
	})
	if err != nil {
		return zero, err
	}

	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, fmt.Errorf("[cache.Fetch] decode %s: %w", key, err)
	}
	return v, nil
}

// GetQueryData returns the cached value without fetching, fresh or not.
func GetQueryData[T any](ctx context.Context, qc *QueryClient, key Key) (T, bool, error) {
	var v T
	entry, ok, err := qc.store.Get(ctx, key)
	if err != nil || !ok {
		return v, false, err
	}
	if err := json.Unmarshal(entry.Data, &v); err != nil {
		return v, false, fmt.Errorf("[cache.GetQueryData] decode %s: %w", key, err)
	}
	return v, true, nil
}

// SetQueryData stores v as a fresh entry. Only server-confirmed values
// should be written this way.
func SetQueryData[T any](ctx context.Context, qc *QueryClient, key Key, v T) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("[cache.SetQueryData] encode %s: %w", key, err)
	}
	if err := qc.store.Set(ctx, key, Entry{Data: data, UpdatedAt: qc.nowFunc()}); err != nil {
		return fmt.Errorf("[cache.SetQueryData] %w", err)
	}
	qc.publish(TopicSet, key)
	return nil
}

// Invalidate marks every entry under prefix stale, including any whose
// fetch is currently in flight.
func (qc *QueryClient) Invalidate(ctx context.Context, prefix Key) error {
	qc.markInflightStale(prefix)

	keys, err := qc.store.Invalidate(ctx, prefix)
	if err != nil {
		return fmt.Errorf("[QueryClient.Invalidate] %s: %w", prefix, err)
	}
	log.Debug().Str("prefix", prefix.String()).Int("entries", len(keys)).Msg("cache invalidated")
	qc.publish(TopicInvalidated, prefix)
	return nil
}

// Remove deletes every entry under prefix. Fetches in flight under prefix
// still answer their callers but store their result as stale.
func (qc *QueryClient) Remove(ctx context.Context, prefix Key) error {
	qc.markInflightStale(prefix)
	if _, err := qc.store.Delete(ctx, prefix); err != nil {
		return fmt.Errorf("[QueryClient.Remove] %s: %w", prefix, err)
	}
	qc.publish(TopicRemoved, prefix)
	return nil
}

// IsStale reports whether key would be refetched by the next Fetch.
func (qc *QueryClient) IsStale(ctx context.Context, key Key) (bool, error) {
	entry, ok, err := qc.store.Get(ctx, key)
	if err != nil {
		return true, err
	}
	return !ok || !qc.fresh(entry, qc.staleTime), nil
}

// Subscribe registers fn for a topic. Handlers run asynchronously; call
// WaitEvents to wait for delivered events to be handled.
func (qc *QueryClient) Subscribe(topic string, fn func(Event)) error {
	return qc.bus.SubscribeAsync(topic, fn, false)
}

func (qc *QueryClient) Unsubscribe(topic string, fn func(Event)) error {
	return qc.bus.Unsubscribe(topic, fn)
}

func (qc *QueryClient) WaitEvents() {
	qc.bus.WaitAsync()
}

func (qc *QueryClient) markInflightStale(prefix Key) {
	qc.mu.Lock()
	defer qc.mu.Unlock()
	for _, f := range qc.inflight {
		if f.key.HasPrefix(prefix) {
			f.stale = true
		}
	}
}

func (qc *QueryClient) fresh(entry Entry, staleTime time.Duration) bool {
	if entry.Invalidated {
		return false
	}
	return qc.nowFunc().Sub(entry.UpdatedAt) < staleTime
}

// do runs fn once per key across concurrent callers. The shared fetch is
// detached from the first caller's cancellation so followers with live
// contexts still get the result; each caller stops waiting on its own ctx.
func (qc *QueryClient) do(ctx context.Context, key Key, fn func(context.Context) ([]byte, error)) ([]byte, error) {
	id := key.String()
	shared := context.WithoutCancel(ctx)
	resultChan := qc.group.DoChan(id, func() (interface{}, error) {
		f := &flight{key: key}
		qc.mu.Lock()
		qc.inflight[id] = f
		qc.mu.Unlock()
		defer func() {
			qc.mu.Lock()
			delete(qc.inflight, id)
			qc.mu.Unlock()
		}()

		data, err := fn(shared)
		if err != nil {
			return nil, err
		}

		qc.mu.Lock()
		stale := f.stale
		qc.mu.Unlock()

		if err := qc.store.Set(shared, key, Entry{Data: data, UpdatedAt: qc.nowFunc(), Invalidated: stale}); err != nil {
			log.Warn().Err(err).Str("key", id).Msg("cache write failed")
		}
		qc.publish(TopicFetched, key)
		return data, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]byte), nil
	}
}

func (qc *QueryClient) publish(topic string, key Key) {
	qc.bus.Publish(topic, Event{Topic: topic, Key: NewKey(key...)})
}
