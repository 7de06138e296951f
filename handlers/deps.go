package handlers

import (
	"time"

	"github.com/ProphetRu/NovaChatServer/cache"
	"github.com/ProphetRu/NovaChatServer/jwtauth"
	"github.com/ProphetRu/NovaChatServer/store"
)

// UserSearchCache is the search-results cache wired into the directory
// search endpoint, keyed by "query:limit".
type UserSearchCache = cache.Cache[string, []*SearchResultUser]

// SearchResultUser is the cached, public shape of a search hit.
type SearchResultUser struct {
	UserID string `json:"user_id"`
	Login  string `json:"login"`
}

// SearchCacheTTL bounds how long a directory search result is served from
// cache before a fresh query runs.
const SearchCacheTTL = 30 * time.Second

// Deps bundles every dependency the route handlers need: the store,
// the JWT manager and revocation set, and the search cache. A single Deps
// value is constructed once at startup and closed over by every handler.
type Deps struct {
	Store         *store.Store
	JWTManager    *jwtauth.Manager
	Revocation    *jwtauth.RevocationSet
	SearchCache   UserSearchCache
	AccessExpiry  time.Duration
	RefreshExpiry time.Duration
}
