// Package recommender runs the anonymous recommendation flow: store the
// visitor's usage preferences under a locally persisted session id, ask the
// server to generate recommendations, then fetch the recommended products.
package recommender

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jrsteele09/pcrs-client/cache"
	"github.com/jrsteele09/pcrs-client/httpclient"
	"github.com/jrsteele09/pcrs-client/products"
	"github.com/jrsteele09/pcrs-client/resource"
	"github.com/jrsteele09/pcrs-client/sessions"
	"github.com/rs/zerolog/log"
)

const (
	PreferencePath = "/user_preference/"
	GeneratePath   = "/recommend/"
	ProductsPath   = "/recommend_product/"
)

// Key prefixes the cached recommended products of every session id.
var Key = cache.NewKey("recommend_product")

// Preferences describe how the visitor will use the PC.
type Preferences struct {
	SessionID           string   `json:"session_id"`
	PrimaryActivity     string   `json:"primary_activity" validate:"required"`
	SecondaryActivities []string `json:"secondary_activities"`
	Budget              float64  `json:"budget,omitempty" validate:"gte=0"`
}

type generateRequest struct {
	SessionID string `json:"session_id"`
}

// Recommendation is the outcome of one full run.
type Recommendation struct {
	SessionID string             `json:"session_id"`
	Products  []products.Product `json:"products"`
}

type Service struct {
	client   *httpclient.Client
	sessions *sessions.Manager
	queries  *cache.QueryClient
}

func NewService(client *httpclient.Client, sm *sessions.Manager, queries *cache.QueryClient) *Service {
	return &Service{client: client, sessions: sm, queries: queries}
}

// SessionID returns the persisted anonymous id, creating it on first use.
func (s *Service) SessionID() (string, error) {
	id, created, err := s.sessions.EnsureAnonymousID()
	if err != nil {
		return "", fmt.Errorf("[recommender.SessionID] %w", err)
	}
	if created {
		log.Debug().Str("session_id", id).Msg("generated recommender session id")
	}
	return id, nil
}

// SubmitPreferences stores prefs under the session id.
func (s *Service) SubmitPreferences(ctx context.Context, prefs Preferences) (Preferences, error) {
	id, err := s.SessionID()
	if err != nil {
		return Preferences{}, err
	}
	prefs.SessionID = id
	if prefs.SecondaryActivities == nil {
		prefs.SecondaryActivities = []string{}
	}
	if err := resource.Validate(prefs); err != nil {
		return Preferences{}, fmt.Errorf("[recommender.SubmitPreferences] %w", err)
	}
	if err := s.client.Post(ctx, PreferencePath, prefs, nil); err != nil {
		return Preferences{}, fmt.Errorf("[recommender.SubmitPreferences] %w", err)
	}
	return prefs, nil
}

// Generate asks the server to compute recommendations for sessionID and
// invalidates that session's cached products.
func (s *Service) Generate(ctx context.Context, sessionID string) error {
	if err := s.client.Post(ctx, GeneratePath, generateRequest{SessionID: sessionID}, nil); err != nil {
		return fmt.Errorf("[recommender.Generate] %w", err)
	}
	if err := s.queries.Invalidate(ctx, Key.With(sessionID)); err != nil {
		log.Warn().Err(err).Msg("recommendation invalidation failed")
	}
	return nil
}

// Products returns the recommended products for sessionID.
func (s *Service) Products(ctx context.Context, sessionID string) ([]products.Product, error) {
	page, err := cache.Fetch(ctx, s.queries, Key.With(sessionID), func(ctx context.Context) (resource.Page[products.Product], error) {
		var out resource.Page[products.Product]
		err := s.client.Get(ctx, ProductsPath, url.Values{"session_id": {sessionID}}, &out)
		return out, err
	})
	if err != nil {
		return nil, fmt.Errorf("[recommender.Products] %w", err)
	}
	if page.Results == nil {
		return []products.Product{}, nil
	}
	return page.Results, nil
}

// Recommend chains the three steps. Each runs only if the one before it
// succeeded.
func (s *Service) Recommend(ctx context.Context, prefs Preferences) (Recommendation, error) {
	prefs, err := s.SubmitPreferences(ctx, prefs)
	if err != nil {
		return Recommendation{}, err
	}
	if err := s.Generate(ctx, prefs.SessionID); err != nil {
		return Recommendation{}, err
	}
	items, err := s.Products(ctx, prefs.SessionID)
	if err != nil {
		return Recommendation{}, err
	}
	return Recommendation{SessionID: prefs.SessionID, Products: items}, nil
}
