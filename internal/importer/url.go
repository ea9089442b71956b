package importer

import (
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"time"
)

// buildImportURL composes the remote action URL for a trigger or poll call.
// Every call carries fresh cache-busting parameters: WP sites commonly sit
// behind page caches and CDNs that would otherwise replay a stale status
// body and wedge the poll loop.
func buildImportURL(spec JobSpec, action string) string {
	q := url.Values{}
	q.Set("import_key", spec.ImportKey)
	q.Set("import_id", spec.ImportID)
	q.Set("action", action)
	q.Set("hpos", "1")
	q.Set("nocache", fmt.Sprintf("%d", time.Now().UnixMilli()))
	q.Set("rand", fmt.Sprintf("%d", rand.Int63()))

	u, err := url.Parse(spec.ImportURL)
	if err != nil || u.Scheme == "" {
		return spec.ImportURL + "?" + q.Encode()
	}
	base := u.Query()
	for k, vs := range q {
		base[k] = vs
	}
	u.RawQuery = base.Encode()
	return u.String()
}

// browserHeaders returns headers that make the request look like a normal
// browser visit. Some hosts reject obvious bot user agents at the edge
// before WP All Import ever sees the request.
func browserHeaders() http.Header {
	h := http.Header{}
	h.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0 Safari/537.36")
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.9")
	h.Set("Cache-Control", "no-cache")
	h.Set("Pragma", "no-cache")
	return h
}
