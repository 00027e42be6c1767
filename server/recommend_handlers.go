package server

import (
	"net/http"
	"slices"
	"strings"

	"github.com/jrsteele09/pcrs-client/benchmarks"
	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/products"
	"github.com/jrsteele09/pcrs-client/recommender"
	"github.com/jrsteele09/pcrs-client/server/recsession"
	"github.com/rs/zerolog/log"
)

const maxRecommendations = 5

// activityScores is the benchmark score a PC needs for each primary
// activity.
var activityScores = map[string]float64{
	"gaming":        80,
	"streaming":     70,
	"video editing": 85,
	"3d rendering":  90,
	"programming":   50,
	"office":        20,
	"browsing":      10,
}

const (
	defaultActivityScore = 40
	secondaryBonus       = 5
)

// requiredScore is the primary activity's score plus a bonus per secondary
// activity, capped at 100.
func requiredScore(prefs recommender.Preferences) float64 {
	score, ok := activityScores[strings.ToLower(strings.TrimSpace(prefs.PrimaryActivity))]
	if !ok {
		score = defaultActivityScore
	}
	score += secondaryBonus * float64(len(prefs.SecondaryActivities))
	return min(score, 100)
}

type sessionRequest struct {
	SessionID string `json:"session_id" validate:"required"`
}

// PreferenceHandler stores the visitor's preferences under their session id.
func (s *Server) PreferenceHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var prefs recommender.Preferences
		if err := decodeBody(r, &prefs); err != nil {
			writeError(w, err)
			return
		}
		if prefs.SessionID == "" {
			writeFieldErrors(w, errors.FieldErrors{"session_id": "This field is required."})
			return
		}
		if prefs.SecondaryActivities == nil {
			prefs.SecondaryActivities = []string{}
		}
		if err := s.repos.Sessions.Upsert(prefs.SessionID, recsession.Session{
			Preferences: prefs,
			UpdatedAt:   s.nowFunc(),
		}); err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, prefs)
	}
}

// RecommendHandler scores the catalogue against the session's preferences
// and stores the chosen product ids.
func (s *Server) RecommendHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req sessionRequest
		if err := decodeBody(r, &req); err != nil {
			writeError(w, err)
			return
		}
		session, err := s.repos.Sessions.Get(req.SessionID)
		if err != nil {
			writeDetail(w, http.StatusNotFound, "No preferences found for this session.")
			return
		}

		all, _ := s.repos.Products.List(nil, 0, 0)
		bench, _ := s.repos.Benchmarks.List(nil, 0, 0)
		chosen := recommend(session.Preferences, all, bench)

		session.ProductIDs = make([]int, 0, len(chosen))
		for _, p := range chosen {
			session.ProductIDs = append(session.ProductIDs, p.ID)
		}
		session.GeneratedAt = s.nowFunc()
		session.UpdatedAt = session.GeneratedAt
		if err := s.repos.Sessions.Upsert(req.SessionID, session); err != nil {
			writeError(w, err)
			return
		}
		log.Info().Str("session_id", req.SessionID).Ints("products", session.ProductIDs).Msg("recommendations generated")
		writeJSON(w, http.StatusOK, map[string]any{
			"session_id": req.SessionID,
			"products":   session.ProductIDs,
		})
	}
}

// recommend picks products whose benchmark score meets the requirement and
// whose price fits the budget, cheapest first. When nothing qualifies it
// falls back to the highest scoring products.
func recommend(prefs recommender.Preferences, all []products.Product, bench []benchmarks.Benchmark) []products.Product {
	scores := make(map[string]float64, len(bench))
	for _, b := range bench {
		name := strings.ToLower(b.Name)
		scores[name] = max(scores[name], b.Score)
	}
	scoreOf := func(p products.Product) float64 {
		return scores[strings.ToLower(p.Name)]
	}

	required := requiredScore(prefs)
	var picked []products.Product
	for _, p := range all {
		if scoreOf(p) >= required && (prefs.Budget == 0 || p.Price <= prefs.Budget) {
			picked = append(picked, p)
		}
	}
	if len(picked) > 0 {
		slices.SortStableFunc(picked, func(a, b products.Product) int {
			switch {
			case a.Price < b.Price:
				return -1
			case a.Price > b.Price:
				return 1
			}
			return a.ID - b.ID
		})
	} else {
		picked = slices.Clone(all)
		slices.SortStableFunc(picked, func(a, b products.Product) int {
			switch sa, sb := scoreOf(a), scoreOf(b); {
			case sa > sb:
				return -1
			case sa < sb:
				return 1
			}
			return a.ID - b.ID
		})
	}
	if len(picked) > maxRecommendations {
		picked = picked[:maxRecommendations]
	}
	return picked
}

// RecommendedProductsHandler returns the products stored for ?session_id=
// as a bare array, empty until recommendations are generated.
func (s *Server) RecommendedProductsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("session_id")
		if id == "" {
			writeFieldErrors(w, errors.FieldErrors{"session_id": "This field is required."})
			return
		}
		out := []products.Product{}
		if session, err := s.repos.Sessions.Get(id); err == nil {
			for _, pid := range session.ProductIDs {
				if p, err := s.repos.Products.Get(pid); err == nil {
					out = append(out, p)
				}
			}
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// SuggestionsHandler returns the autocomplete vocabulary: activity names,
// product categories and the words of product names, sorted and unique.
func (s *Server) SuggestionsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		seen := map[string]bool{}
		words := []string{}
		add := func(word string) {
			word = strings.TrimSpace(word)
			key := strings.ToLower(word)
			if len(word) < 2 || seen[key] {
				return
			}
			seen[key] = true
			words = append(words, word)
		}

		for activity := range activityScores {
			add(activity)
		}
		all, _ := s.repos.Products.List(nil, 0, 0)
		for _, p := range all {
			add(p.Category)
			for _, word := range strings.Fields(p.Name) {
				add(word)
			}
		}
		slices.SortFunc(words, func(a, b string) int {
			return strings.Compare(strings.ToLower(a), strings.ToLower(b))
		})
		writeJSON(w, http.StatusOK, words)
	}
}
