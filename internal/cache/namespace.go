package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/windoze95/saltybytes-chef/internal/logger"
	"go.uber.org/zap"
)

// Namespace names used by the suggestion pipeline.
const (
	NamespaceSearch = "serper"
	NamespaceRecipe = "recipe"
)

// Namespace is a typed view over a Store: keys are derived from normalized
// inputs under "<prefix>:<name>:" and values are JSON documents with a TTL
// of their own. Backend and decode failures are logged and reported as a
// miss, never returned to the caller.
type Namespace struct {
	store   Store
	prefix  string
	name    string
	ttl     time.Duration
	enabled bool
}

// NewNamespace returns a namespace over store. A nil store or enabled=false
// yields a namespace that never hits and never writes.
func NewNamespace(store Store, prefix, name string, ttl time.Duration, enabled bool) *Namespace {
	return &Namespace{
		store:   store,
		prefix:  prefix,
		name:    name,
		ttl:     ttl,
		enabled: enabled && store != nil,
	}
}

// Enabled reports whether lookups and writes reach the backend.
func (n *Namespace) Enabled() bool {
	return n != nil && n.enabled
}

// TTL returns the lifetime of entries written by Save.
func (n *Namespace) TTL() time.Duration {
	if n == nil {
		return 0
	}
	return n.ttl
}

// Key derives the cache key for parts. Each part is trimmed and lowercased,
// the parts are joined with "|", and the first 16 hex characters of the
// SHA-256 digest are used.
func (n *Namespace) Key(parts ...string) string {
	if n == nil {
		return Digest(parts...)
	}
	return n.prefix + ":" + n.name + ":" + Digest(parts...)
}

// Digest is the normalized content hash behind Namespace.Key.
func Digest(parts ...string) string {
	normalized := make([]string, len(parts))
	for i, p := range parts {
		normalized[i] = strings.ToLower(strings.TrimSpace(p))
	}
	sum := sha256.Sum256([]byte(strings.Join(normalized, "|")))
	return hex.EncodeToString(sum[:])[:16]
}

// Lookup decodes the value under key into dst and reports whether it did.
func (n *Namespace) Lookup(ctx context.Context, key string, dst interface{}) bool {
	if !n.Enabled() {
		return false
	}
	data, err := n.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrMiss) {
			logger.FromContext(ctx).Warn("cache: lookup failed, treating as miss",
				zap.String("namespace", n.name), zap.String("key", key), zap.Error(err))
		}
		return false
	}
	if err := json.Unmarshal(data, dst); err != nil {
		logger.FromContext(ctx).Warn("cache: undecodable entry, treating as miss",
			zap.String("namespace", n.name), zap.String("key", key), zap.Error(err))
		return false
	}
	return true
}

// Save encodes v and writes it under key.
func (n *Namespace) Save(ctx context.Context, key string, v interface{}) {
	if !n.Enabled() {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		logger.FromContext(ctx).Warn("cache: failed to encode entry",
			zap.String("namespace", n.name), zap.String("key", key), zap.Error(err))
		return
	}
	if err := n.store.Set(ctx, key, data, n.ttl); err != nil {
		logger.FromContext(ctx).Warn("cache: write failed",
			zap.String("namespace", n.name), zap.String("key", key), zap.Error(err))
	}
}
