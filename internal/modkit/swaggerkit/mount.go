// Package swaggerkit provides helpers to mount Swagger UI and the JSON spec
package swaggerkit

import (
	"net/http"

	phttp "reportrelay/internal/platform/net/http"

	httpSwagger "github.com/swaggo/http-swagger"
)

// Mount serves the UI under /api/docs and the registered instance spec at /api/docs/doc.json
func Mount(r phttp.Router, enabled bool, instance string) {
	if !enabled {
		return
	}
	r.Get("/api/docs", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/api/docs/", http.StatusPermanentRedirect)
	})
	r.Get("/api/docs/doc.json", serveDocJSON(instance))
	r.Handle("/api/docs/*", httpSwagger.Handler(
		httpSwagger.InstanceName(instance),
		httpSwagger.URL("/api/docs/doc.json"),
	))
}
