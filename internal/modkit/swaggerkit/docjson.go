package swaggerkit

import (
	"encoding/json"
	"net/http"
	"strings"

	"reportrelay/internal/platform/config"

	"github.com/swaggo/swag/v2"
)

// docReader is a seam so tests can inject invalid JSON without registering a spec
var docReader = func(instance string) (string, error) { return swag.ReadDoc(instance) }

// serveDocJSON serves the registered spec lifted to OAS3 with the shared error responses
func serveDocJSON(instance string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, err := docReader(instance)
		if err != nil {
			http.Error(w, "spec not registered", http.StatusNotFound)
			return
		}

		var spec map[string]any
		if err := json.Unmarshal([]byte(raw), &spec); err != nil {
			http.Error(w, "spec parse error", http.StatusInternalServerError)
			return
		}

		// OAS3 base url lives in servers, not BasePath
		ensureServers(spec, "/api/v1")

		cfg := config.New().Prefix("RELAY_API_")
		if v := cfg.MayString("DOCS_TITLE_SUFFIX", ""); v != "" {
			if info, ok := spec["info"].(map[string]any); ok {
				if title, ok := info["title"].(string); ok {
					info["title"] = title + " " + v
				}
			}
		}

		ensureErrorResponseDefinition(spec)
		addDefaultResponses(spec)

		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.Header().Set("Cache-Control", "no-store")
		_ = json.NewEncoder(w).Encode(spec)
	}
}

// ensureServers makes sure the spec is OAS3 and has a servers array
// swagger http ui can't support 3.1 at the moment, so downconvert if needed
func ensureServers(spec map[string]any, url string) {
	// if it's swagger 2, lift to oas3
	if _, hasSwagger := spec["swagger"]; hasSwagger {
		spec["openapi"] = "3.0.3"
		delete(spec, "swagger")
	}

	// if it's already oas3, downsample 3.1 -> 3.0.3
	if v, ok := spec["openapi"].(string); ok {
		if strings.HasPrefix(v, "3.1") {
			spec["openapi"] = "3.0.3"
		}
	} else {
		// no version set at all: pick a sane default
		spec["openapi"] = "3.0.3"
	}

	// ensure servers
	if _, ok := spec["servers"]; !ok {
		spec["servers"] = []any{
			map[string]any{"url": url},
		}
	}
}

// ensureErrorResponseDefinition creates a simple error envelope model if missing
// kept minimal so it does not drift from the runtime wire
func ensureErrorResponseDefinition(spec map[string]any) {
	comps, ok := spec["components"].(map[string]any)
	if !ok {
		comps = map[string]any{}
		spec["components"] = comps
	}
	schemas, ok := comps["schemas"].(map[string]any)
	if !ok {
		schemas = map[string]any{}
		comps["schemas"] = schemas
	}
	if _, ok := schemas["ErrorResponse"]; ok {
		return
	}
	schemas["ErrorResponse"] = map[string]any{
		"type":        "object",
		"description": "Standard error response",
		"properties": map[string]any{
			"status_code": map[string]any{"type": "integer", "format": "int32"},
			"status":      map[string]any{"type": "string"},
			"code":        map[string]any{"type": "integer", "format": "int32"},
			"kind":        map[string]any{"type": "string"},
			"error":       map[string]any{"type": "string"},
			"field":       map[string]any{"type": "string"},
			"request_id":  map[string]any{"type": "string"},
		},
		"required": []any{"status_code", "status"},
	}
}

// defaultResponses are added to every operation that does not document the status itself
// examples follow the runtime error envelope
var defaultResponses = map[string]map[string]any{
	"400": {
		"status_code": 400,
		"status":      "Bad Request",
		"code":        6,
		"kind":        "validation",
		"error":       "date must be a date like 2006-01-02",
		"field":       "date",
		"request_id":  "relay-host/abc-000001",
	},
	"500": {
		"status_code": 500,
		"status":      "Internal Server Error",
		"code":        1,
		"kind":        "panic",
		"error":       "panic recovered",
		"request_id":  "relay-host/abc-000001",
	},
}

// addDefaultResponses walks every operation and fills in the missing default responses
func addDefaultResponses(spec map[string]any) {
	paths, ok := spec["paths"].(map[string]any)
	if !ok {
		return
	}
	for _, p := range paths {
		node, ok := p.(map[string]any)
		if !ok {
			continue
		}
		for _, opAny := range node {
			op, ok := opAny.(map[string]any)
			if !ok {
				continue
			}
			resps, ok := op["responses"].(map[string]any)
			if !ok {
				resps = map[string]any{}
				op["responses"] = resps
			}
			for code, example := range defaultResponses {
				if _, exists := resps[code]; exists {
					continue
				}
				resps[code] = map[string]any{
					"description": example["status"],
					"content": map[string]any{
						"application/json": map[string]any{
							"schema":  map[string]any{"$ref": "#/components/schemas/ErrorResponse"},
							"example": example,
						},
					},
				}
			}
		}
	}
}
