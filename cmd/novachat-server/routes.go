package main

import (
	"net/http"

	"github.com/ProphetRu/NovaChatServer/handlers"
	"github.com/ProphetRu/NovaChatServer/router"
)

// requireMethod rejects any request whose method isn't method with the
// same not-found envelope an unregistered path gets: the router resolves
// paths only, and every route answers exactly one method, so a method
// mismatch on a registered path is indistinguishable from hitting no
// route at all.
func requireMethod(method string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			handlers.RespondError(w, http.StatusNotFound, handlers.CodeEndpointNotFound, "endpoint not found for this method")
			return
		}
		h(w, r)
	}
}

// registerRoutes wires every endpoint into rt.
func registerRoutes(rt *router.Router, deps *handlers.Deps) {
	routes := router.Chains{
		"/api/v1/auth/register": router.NewChain(requireMethod(http.MethodPost, deps.Register), http.MethodPost),
		"/api/v1/auth/login":    router.NewChain(requireMethod(http.MethodPost, deps.Login), http.MethodPost),
		"/api/v1/auth/refresh":  router.NewChain(requireMethod(http.MethodPost, deps.Refresh), http.MethodPost),
		"/api/v1/auth/logout":   router.NewChain(requireMethod(http.MethodPost, deps.Logout), http.MethodPost),
		"/api/v1/auth/password": router.NewChain(requireMethod(http.MethodPut, deps.ChangePassword), http.MethodPut),
		"/api/v1/auth/account":  router.NewChain(requireMethod(http.MethodDelete, deps.DeleteAccount), http.MethodDelete),

		"/api/v1/users":        router.NewChain(requireMethod(http.MethodGet, deps.ListUsers), http.MethodGet),
		"/api/v1/users/search": router.NewChain(requireMethod(http.MethodGet, deps.SearchUsers), http.MethodGet),

		"/api/v1/messages/send": router.NewChain(requireMethod(http.MethodPost, deps.SendMessage), http.MethodPost),
		"/api/v1/messages":      router.NewChain(requireMethod(http.MethodGet, deps.ListMessages), http.MethodGet),
		"/api/v1/messages/read": router.NewChain(requireMethod(http.MethodPost, deps.MarkRead), http.MethodPost),
	}
	rt.RegisterAll(routes)
}
