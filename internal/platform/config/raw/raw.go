// Package raw provides a minimal config reader used during bootstrap.
// It has NO dependency on the logger package to avoid import cycles
// Values come from the environment first, then from an optional YAML overlay file
package raw

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

var (
	overlayMu sync.RWMutex
	overlay   = map[string]string{}
)

// Load reads a YAML file into the process-wide overlay
// nested maps are flattened into env style keys: relay: {shop_id: x} -> RELAY_SHOP_ID
// a missing file is not an error; the overlay is simply left empty
func Load(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	flat := map[string]string{}
	flatten("", doc, flat)

	overlayMu.Lock()
	overlay = flat
	overlayMu.Unlock()
	return nil
}

// Reset clears the overlay; tests use this between cases
func Reset() {
	overlayMu.Lock()
	overlay = map[string]string{}
	overlayMu.Unlock()
}

// Keys lists overlay keys in sorted order
func Keys() []string {
	overlayMu.RLock()
	defer overlayMu.RUnlock()
	out := make([]string, 0, len(overlay))
	for k := range overlay {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func flatten(prefix string, in map[string]any, out map[string]string) {
	for k, v := range in {
		key := strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(k))
		if prefix != "" {
			key = prefix + "_" + key
		}
		switch tv := v.(type) {
		case map[string]any:
			flatten(key, tv, out)
		case []any:
			parts := make([]string, 0, len(tv))
			for _, p := range tv {
				parts = append(parts, fmt.Sprint(p))
			}
			out[key] = strings.Join(parts, ",")
		case nil:
		case bool:
			out[key] = strconv.FormatBool(tv)
		default:
			out[key] = fmt.Sprint(tv)
		}
	}
}

// Lookup returns the trimmed value for a fully-qualified key, env winning over the overlay
func Lookup(key string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	overlayMu.RLock()
	v := overlay[key]
	overlayMu.RUnlock()
	return strings.TrimSpace(v)
}

// Conf is a namespaced view over config keys (e.g., "RELAY_", "RELAY_LOG_")
type Conf struct{ prefix string }

// New returns a root Conf (no prefix)
func New() Conf { return Conf{} }

// Prefix returns a child Conf with an additional prefix (e.g. "LOG_")
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

// key composes the fully-qualified key
func (c Conf) key(k string) string { return c.prefix + k }

// Get returns the trimmed value or the provided default if empty
func (c Conf) Get(key, def string) string {
	if v := Lookup(c.key(key)); v != "" {
		return v
	}
	return def
}

// GetBool parses a bool-like value ("1|true|yes") with default fallback
func (c Conf) GetBool(key string, def bool) bool {
	v := strings.ToLower(Lookup(c.key(key)))
	if v == "" {
		return def
	}
	return v == "1" || v == "true" || v == "yes"
}

// GetInt parses a non-negative integer with default fallback; anything else -> def
func (c Conf) GetInt(key string, def int) int {
	s := Lookup(c.key(key))
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return def
	}
	return n
}
