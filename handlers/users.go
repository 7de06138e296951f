package handlers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"time"
)

// ListUsers handles GET /api/v1/users.
func (d *Deps) ListUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := d.requireAuth(w, r); !ok {
		return
	}

	q := r.URL.Query()
	page := parseIntDefault(q.Get("page"), 1, 1, math.MaxInt32)
	limit := parseIntDefault(q.Get("limit"), 50, 1, 100)
	search := q.Get("search")

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	users, total, err := d.Store.ListUsers(ctx, page, limit, search)
	if err != nil {
		RespondInternalError(w, "handlers.ListUsers", err)
		return
	}

	publicUsers := make([]any, len(users))
	for i, u := range users {
		publicUsers[i] = u.ToJSON()
	}

	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	RespondSuccess(w, http.StatusOK, map[string]any{
		"users": publicUsers,
		"pagination": map[string]any{
			"page":        page,
			"limit":       limit,
			"total_count": total,
			"total_pages": totalPages,
			"has_next":    page < totalPages,
			"has_prev":    page > 1,
		},
	}, "")
}

// SearchUsers handles GET /api/v1/users/search, serving from SearchCache
// when a fresh enough result exists for the query+limit key.
func (d *Deps) SearchUsers(w http.ResponseWriter, r *http.Request) {
	if _, ok := d.requireAuth(w, r); !ok {
		return
	}

	q := r.URL.Query()
	query := q.Get("query")
	if query == "" {
		RespondError(w, http.StatusBadRequest, CodeMissingQuery, "query parameter is required")
		return
	}
	limit := parseIntDefault(q.Get("limit"), 20, 1, 50)

	cacheKey := fmt.Sprintf("%s:%d", query, limit)
	if cached, found := d.SearchCache.Get(cacheKey); found {
		RespondSuccess(w, http.StatusOK, map[string]any{
			"users": cached,
			"meta": map[string]any{
				"query": query,
				"count": len(cached),
				"limit": limit,
			},
		}, "")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()
	users, err := d.Store.SearchUsers(ctx, query, limit)
	if err != nil {
		RespondInternalError(w, "handlers.SearchUsers", err)
		return
	}

	results := make([]*SearchResultUser, len(users))
	for i, u := range users {
		results[i] = &SearchResultUser{UserID: u.UserID, Login: u.Login}
	}
	d.SearchCache.SetWithTTL(cacheKey, results, int64(len(results)+1), SearchCacheTTL)

	RespondSuccess(w, http.StatusOK, map[string]any{
		"users": results,
		"meta": map[string]any{
			"query": query,
			"count": len(results),
			"limit": limit,
		},
	}, "")
}

// parseIntDefault parses s as an int, clamped to [min,max], falling back to
// def on empty/unparseable input.
func parseIntDefault(s string, def, min, max int) int {
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	if v < min {
		return min
	}
	if v > max {
		return max
	}
	return v
}
