package server

import (
	"net/http"
	"sort"
	"strings"

	"github.com/bjacksonJaxSun/ideasmatter/internal/handlers"
)

// MethodRouter dispatches one path to a handler per HTTP method.
// Unlisted methods get a JSON 405 with an Allow header.
type MethodRouter map[string]http.HandlerFunc

func (m MethodRouter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if handler, ok := m[r.Method]; ok {
		handler(w, r)
		return
	}

	w.Header().Set("Allow", m.allowed())
	handlers.WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
}

func (m MethodRouter) allowed() string {
	methods := make([]string, 0, len(m))
	for method := range m {
		methods = append(methods, method)
	}
	sort.Strings(methods)
	return strings.Join(methods, ", ")
}

// collection routes GET to list and POST to create
func collection(list, create http.HandlerFunc) MethodRouter {
	return MethodRouter{
		http.MethodGet:  list,
		http.MethodPost: create,
	}
}

// item routes GET, PUT and DELETE for a single resource; nil handlers are left out
func item(get, update, remove http.HandlerFunc) MethodRouter {
	router := MethodRouter{}
	if get != nil {
		router[http.MethodGet] = get
	}
	if update != nil {
		router[http.MethodPut] = update
	}
	if remove != nil {
		router[http.MethodDelete] = remove
	}
	return router
}
