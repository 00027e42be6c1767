// Package suggestions serves the autocomplete word list. The list changes
// rarely, so it is cached for an hour and never refetched sooner.
package suggestions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/rs/zerolog/log"
)

const (
	Path       = "/suggestions/"
	DefaultTTL = time.Hour
)

var Key = cache.NewKey("suggestions")

type Service struct {
	client  *httpclient.Client
	queries *cache.QueryClient
	ttl     time.Duration
}

// NewService caches the list for ttl; zero means DefaultTTL.
func NewService(client *httpclient.Client, queries *cache.QueryClient, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{client: client, queries: queries, ttl: ttl}
}

// Words returns the full list. It is never nil.
func (s *Service) Words(ctx context.Context) ([]string, error) {
	words, err := cache.Fetch(ctx, s.queries, Key, func(ctx context.Context) ([]string, error) {
		var out []string
		err := s.client.Get(ctx, Path, nil, &out)
		return out, err
	}, cache.StaleTime(s.ttl))
	if err != nil {
		return []string{}, fmt.Errorf("[suggestions.Words] %w", err)
	}
	if words == nil {
		words = []string{}
	}
	return words, nil
}

// Cached returns what has been loaded so far without a request, or an empty
// list before the first load.
func (s *Service) Cached(ctx context.Context) []string {
	words, ok, err := cache.GetQueryData[[]string](ctx, s.queries, Key)
	if err != nil {
		log.Debug().Err(err).Msg("suggestions cache read failed")
	}
	if !ok || words == nil {
		return []string{}
	}
	return words
}

// Complete returns up to limit words starting with prefix, case-insensitively.
// A limit of zero means no limit.
func (s *Service) Complete(ctx context.Context, prefix string, limit int) ([]string, error) {
	words, err := s.Words(ctx)
	if err != nil {
		return []string{}, err
	}
	prefix = strings.ToLower(prefix)
	out := []string{}
	for _, w := range words {
		if strings.HasPrefix(strings.ToLower(w), prefix) {
			out = append(out, w)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}
