package hub

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/LeJamon/goOracleHub/internal/storage/keyValueDb"
)

// Typed persistence helpers over the raw keyValueDb. Entities are stored as
// JSON blobs; asset mappings store the symbol as raw string bytes.

func (h *Hub) loadConfig(ctx context.Context) (*Config, error) {
	raw, err := h.db.Read(ctx, keyConfig)
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return nil, ErrNotInitialized
	}
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadWhitelist returns an empty whitelist when none has been stored yet
func (h *Hub) loadWhitelist(ctx context.Context) (*Whitelist, error) {
	raw, err := h.db.Read(ctx, keyWhitelist)
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return &Whitelist{}, nil
	}
	if err != nil {
		return nil, err
	}

	var wl Whitelist
	if err := json.Unmarshal(raw, &wl); err != nil {
		return nil, err
	}
	return &wl, nil
}

// loadSources distinguishes a missing record (never registered,
// ErrSymbolNotRegistered) from a stored-but-empty one
func (h *Hub) loadSources(ctx context.Context, symbol string) (*Sources, error) {
	raw, err := h.db.Read(ctx, sourcesKey(symbol))
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return nil, ErrSymbolNotRegistered
	}
	if err != nil {
		return nil, err
	}

	var src Sources
	if err := json.Unmarshal(raw, &src); err != nil {
		return nil, err
	}
	return &src, nil
}

// lookupSymbol translates an asset id into its symbol, read-through cached
func (h *Hub) lookupSymbol(ctx context.Context, assetID string) (string, error) {
	if symbol, ok := h.symbols.Get(assetID); ok {
		return symbol, nil
	}

	raw, err := h.db.Read(ctx, assetMapKey(assetID))
	if errors.Is(err, keyValueDb.ErrKeyNotFound) {
		return "", ErrMappingNotFound
	}
	if err != nil {
		return "", err
	}

	symbol := string(raw)
	h.symbols.Add(assetID, symbol)
	return symbol, nil
}

// resolveSymbol accepts exactly one of symbol / assetID and returns the
// symbol to operate on
func (h *Hub) resolveSymbol(ctx context.Context, symbol, assetID string) (string, error) {
	if symbol != "" {
		return symbol, nil
	}
	if assetID != "" {
		return h.lookupSymbol(ctx, assetID)
	}
	return "", errors.New("symbol or asset_id must be provided")
}

// appendPut marshals the value and appends a put operation to ops
func appendPut(ops []keyValueDb.BatchOperation, key []byte, value interface{}) ([]keyValueDb.BatchOperation, error) {
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return append(ops, keyValueDb.BatchOperation{
		Type:  keyValueDb.BatchPut,
		Key:   key,
		Value: raw,
	}), nil
}
