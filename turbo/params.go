package turbo

import (
	"errors"
	"fmt"
	"net/http"
)

// GetPathParam fetches a path parameter stashed on the request context by
// Router.ServeHTTP. It is the package-level counterpart to
// Router.GetPathParams for callers that only hold the *http.Request.
func GetPathParam(id string, r *http.Request) (string, error) {
	params, ok := r.Context().Value("params").([]Param)
	if !ok {
		return "", errors.New(fmt.Sprintf("error fetching path param %s", id))
	}
	for _, p := range params {
		if p.key == id {
			return p.value, nil
		}
	}
	return "", errors.New(fmt.Sprintf("no such parameter %s", id))
}

// GetQueryParam fetches a query parameter from the request URL.
func GetQueryParam(id string, r *http.Request) (string, error) {
	val := r.URL.Query().Get(id)
	if val == "" {
		return "", errors.New(fmt.Sprintf("error fetching query param %s", id))
	}
	return val, nil
}
