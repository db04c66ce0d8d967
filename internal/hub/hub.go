package hub

import (
	"context"
	"sync"
	"time"

	"github.com/LeJamon/goOracleHub/internal/logger"
	"github.com/LeJamon/goOracleHub/internal/storage/keyValueDb"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Quoter is the external price call-out capability. Implementations are
// expected to enforce their own timeouts and surface any failure (transport,
// malformed response, no data) as an error.
type Quoter interface {
	Quote(ctx context.Context, proxyAddr string, symbol string) (Quote, error)
}

const defaultSymbolCacheSize = 1024

// Hub is the price-oracle source registry and resolution engine. All state
// lives in the provided keyValueDb; mutations are serialized through a single
// mutex and applied as one atomic batch each, reads go straight to the store.
type Hub struct {
	db     keyValueDb.DB
	quoter Quoter
	log    *logger.Entry

	// mu serializes all mutating commands
	mu sync.Mutex

	// symbols caches assetID -> symbol lookups; entries are invalidated by
	// InsertAssetSymbolMap, the only writer of the underlying mapping
	symbols *lru.Cache[string, string]

	// now is replaceable for staleness tests
	now func() time.Time
}

// Option customizes a Hub
type Option func(*Hub)

// WithClock overrides the time source used for staleness cutoffs
func WithClock(now func() time.Time) Option {
	return func(h *Hub) { h.now = now }
}

// New creates a Hub on top of the given store and call-out capability
func New(db keyValueDb.DB, quoter Quoter, log *logger.Log, opts ...Option) (*Hub, error) {
	symbols, err := lru.New[string, string](defaultSymbolCacheSize)
	if err != nil {
		return nil, err
	}

	h := &Hub{
		db:      db,
		quoter:  quoter,
		log:     log.WithComponent("hub"),
		symbols: symbols,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// Initialize persists the hub configuration. It may only run once; later
// calls fail with ErrAlreadyInitialized and leave the stored config untouched.
func (h *Hub) Initialize(ctx context.Context, owner, baseDenom string, maxProxiesPerSymbol uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.loadConfig(ctx); err == nil {
		return ErrAlreadyInitialized
	} else if err != ErrNotInitialized {
		return err
	}

	cfg := Config{
		Owner:               owner,
		BaseDenom:           baseDenom,
		MaxProxiesPerSymbol: maxProxiesPerSymbol,
	}

	ops, err := appendPut(nil, keyConfig, &cfg)
	if err != nil {
		return err
	}
	if err := h.db.Batch(ctx, ops); err != nil {
		return err
	}

	h.log.WithFields(logger.Fields{
		"owner":                  owner,
		"base_denom":             baseDenom,
		"max_proxies_per_symbol": maxProxiesPerSymbol,
	}).Info("hub initialized")
	return nil
}

// Initialized reports whether a config record exists
func (h *Hub) Initialized(ctx context.Context) (bool, error) {
	_, err := h.loadConfig(ctx)
	if err == ErrNotInitialized {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// requireOwner loads the config and checks the caller against the owner
func (h *Hub) requireOwner(ctx context.Context, caller string) (*Config, error) {
	cfg, err := h.loadConfig(ctx)
	if err != nil {
		return nil, err
	}
	if !cfg.IsOwner(caller) {
		return nil, ErrUnauthorized
	}
	return cfg, nil
}
