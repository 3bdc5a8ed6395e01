// Package tokensource implements the client-side OT token sourcing layer: a
// bounded-capacity LRU cache in front of a pluggable Source, with concrete
// in-process and HTTP-backed sources.
package tokensource

import (
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/SJieNg123/zids/zidserr"
)

// Source fetches one OT token for (rowID, x) from the underlying OT
// service, uncached. Implementations must return exactly the expectedLen
// bytes given to NewBuilder or the caller (Builder) rejects the response.
type Source interface {
	GetToken(rowID int, x byte) ([]byte, error)
}

// DefaultCacheCapacity is the default LRU capacity.
const DefaultCacheCapacity = 8192

type cacheKey struct {
	row int
	x   byte
}

// Stats reports cumulative cache performance: request vs. cache-hit counts.
type Stats struct {
	Requests int
	Hits     int
}

// Builder is the cached, length-enforcing token source handed to a
// GDFARunner as its gdfa.TokenGetter. It is safe for concurrent use: the LRU
// cache is keyed on (row_id, x) and per-stream token order is preserved by
// the caller's own sequential evaluation loop.
type Builder struct {
	source      Source
	cache       *lru.Cache
	expectedLen int

	mu    sync.Mutex
	stats Stats
}

// NewBuilder wraps source with an LRU cache of the given capacity (0 means
// DefaultCacheCapacity) and enforces that every token is exactly expectedLen
// bytes (cmax * kprime_bytes, the token endpoint's contract).
func NewBuilder(source Source, capacity, expectedLen int) (*Builder, error) {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	c, err := lru.New(capacity)
	if err != nil {
		return nil, fmt.Errorf("tokensource: create LRU cache: %w", err)
	}
	return &Builder{source: source, cache: c, expectedLen: expectedLen}, nil
}

// GetToken implements gdfa.TokenGetter: serve from cache when present,
// otherwise fetch from the underlying source, validate its length, cache it,
// and return it.
func (b *Builder) GetToken(rowID int, x byte) ([]byte, error) {
	key := cacheKey{rowID, x}

	b.mu.Lock()
	b.stats.Requests++
	if v, ok := b.cache.Get(key); ok {
		b.stats.Hits++
		b.mu.Unlock()
		return v.([]byte), nil
	}
	b.mu.Unlock()

	token, err := b.source.GetToken(rowID, x)
	if err != nil {
		return nil, err
	}
	if len(token) != b.expectedLen {
		return nil, zidserr.LengthMismatchf("tokensource: token for (row=%d,x=%d) has %d bytes, expected %d", rowID, x, len(token), b.expectedLen)
	}

	b.cache.Add(key, token)
	return token, nil
}

// Stats returns a snapshot of cumulative request/hit counters.
func (b *Builder) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stats
}

// BatchGetTokens fetches tokens for xs against rowID in input order,
// deduplicating repeated (rowID, x) pairs within the batch against the
// cache rather than the network: per-stream order is preserved even though
// the cache may serve entries fetched for other streams out of order.
func (b *Builder) BatchGetTokens(rowID int, xs []byte) ([][]byte, error) {
	out := make([][]byte, len(xs))
	for i, x := range xs {
		tok, err := b.GetToken(rowID, x)
		if err != nil {
			return nil, err
		}
		out[i] = tok
	}
	return out, nil
}
