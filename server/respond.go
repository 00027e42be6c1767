package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/jrsteele09/pcrs-client/internal/errors"
	"github.com/jrsteele09/pcrs-client/resource"
	"github.com/rs/zerolog/log"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Err(err).Msg("failed to encode response")
	}
}

// writeDetail writes {"detail": msg}, the shape of non-field errors.
func writeDetail(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"detail": msg})
}

// writeFieldErrors writes a 400 with {"field": ["msg"]}.
func writeFieldErrors(w http.ResponseWriter, fields errors.FieldErrors) {
	body := make(map[string][]string, len(fields))
	for k, v := range fields {
		body[k] = []string{v}
	}
	writeJSON(w, http.StatusBadRequest, body)
}

// writeError maps an internal error onto a response.
func writeError(w http.ResponseWriter, err error) {
	var verr *errors.ValidationError
	switch {
	case errors.As(err, &verr):
		writeFieldErrors(w, verr.Fields)
	case errors.Is(err, errors.ErrNotFound):
		writeDetail(w, http.StatusNotFound, "Not found.")
	case errors.Is(err, errors.ErrForbidden):
		writeDetail(w, http.StatusForbidden, "You do not have permission to perform this action.")
	default:
		log.Err(err).Msg("request failed")
		writeDetail(w, http.StatusInternalServerError, "A server error occurred.")
	}
}

// decodeBody decodes JSON into v and validates it with the same rules the
// client applies.
func decodeBody(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return &errors.ValidationError{Fields: errors.FieldErrors{"non_field_errors": "JSON parse error - " + err.Error()}}
	}
	return resource.Validate(v)
}

func pathID(r *http.Request) (int, error) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, errors.ErrNotFound
	}
	return id, nil
}

// page is the requested page and the offset it starts at.
type page struct {
	number int
	size   int
}

func (s *Server) pageOf(r *http.Request) (page, error) {
	p := page{number: 1, size: s.config.GetPageSize()}
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			return p, errors.ErrNotFound
		}
		p.number = n
	}
	return p, nil
}

func (p page) offset() int {
	return (p.number - 1) * p.size
}

// writePage writes the paginated envelope. Pages past the end are 404 like
// the production backend.
func writePage[T any](w http.ResponseWriter, r *http.Request, p page, items []T, total int) {
	pag := resource.NewPagination(p.number, p.size, total)
	if p.number > 1 && p.number > pag.Pages {
		writeDetail(w, http.StatusNotFound, "Invalid page.")
		return
	}
	link := func(n int) *string {
		u := url.URL{Scheme: getScheme(r), Host: r.Host, Path: r.URL.Path}
		q := r.URL.Query()
		q.Set("page", strconv.Itoa(n))
		u.RawQuery = q.Encode()
		s := u.String()
		return &s
	}
	out := resource.Page[T]{Count: total, Results: items}
	if pag.HasNext() {
		out.Next = link(p.number + 1)
	}
	if pag.HasPrevious() {
		out.Previous = link(p.number - 1)
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) NotFoundHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeDetail(w, http.StatusNotFound, fmt.Sprintf("Not found: %s %s", r.Method, r.URL.Path))
	}
}
