package httpapi

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/andalize/proptic/internal/service"
)

// PageBody is the paginated list envelope.
type PageBody[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

// pageRequest reads ?page= and ?page_size=. A page that is not a positive
// integer is an invalid page; a bad page_size falls back to the default.
func pageRequest(r *http.Request) (service.PageRequest, error) {
	q := r.URL.Query()
	req := service.PageRequest{Page: 1, Size: parseInt(q.Get("page_size"), service.DefaultPageSize)}
	if raw := q.Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return req, service.ErrInvalidPage
		}
		req.Page = n
	}
	return req, nil
}

func writePage[T any](w http.ResponseWriter, r *http.Request, p *service.Page[T]) {
	body := PageBody[T]{Count: p.Total, Results: p.Items}
	if body.Results == nil {
		body.Results = []T{}
	}
	if p.HasNext() {
		next := pageURL(r, p.Page+1)
		body.Next = &next
	}
	if p.HasPrevious() {
		prev := pageURL(r, p.Page-1)
		body.Previous = &prev
	}
	writeJSON(w, http.StatusOK, body)
}

// pageURL rebuilds the request URL with another page number. Page 1 drops the
// parameter.
func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	q := r.URL.Query()
	if page <= 1 {
		q.Del("page")
	} else {
		q.Set("page", strconv.Itoa(page))
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	return u.String()
}
