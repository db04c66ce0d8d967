package hub

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/LeJamon/goOracleHub/internal/storage/keyValueDb"
)

const (
	// DefaultPaginationLimit applies when a listing is requested without a limit
	DefaultPaginationLimit = 10
	// MaxPaginationLimit is the hard ceiling any requested limit is clamped to
	MaxPaginationLimit = 30
)

// GetConfig returns the hub configuration
func (h *Hub) GetConfig(ctx context.Context) (*Config, error) {
	return h.loadConfig(ctx)
}

// GetWhitelist returns the proxy whitelist
func (h *Hub) GetWhitelist(ctx context.Context) (*Whitelist, error) {
	return h.loadWhitelist(ctx)
}

// GetSources returns the annotated source list for a symbol or asset id
func (h *Hub) GetSources(ctx context.Context, symbol, assetID string) (*SourcesResponse, error) {
	symbol, err := h.resolveSymbol(ctx, symbol, assetID)
	if err != nil {
		return nil, err
	}

	src, err := h.loadSources(ctx, symbol)
	if err != nil {
		return nil, err
	}
	wl, err := h.loadWhitelist(ctx)
	if err != nil {
		return nil, err
	}

	res := src.annotate(wl)
	return &res, nil
}

// ListAllSources pages through every symbol's annotated source list in
// ascending symbol order. startAfter is an exclusive cursor, "" starts from
// the beginning.
func (h *Hub) ListAllSources(ctx context.Context, startAfter string, limit int) ([]SourcesResponse, error) {
	wl, err := h.loadWhitelist(ctx)
	if err != nil {
		return nil, err
	}

	list := make([]SourcesResponse, 0, clampLimit(limit))
	err = h.paginate(ctx, prefixSources, startAfter, limit, func(_ string, value []byte) error {
		var src Sources
		if err := json.Unmarshal(value, &src); err != nil {
			return err
		}
		list = append(list, src.annotate(wl))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

// ListAssetSymbolMap pages through the asset-to-symbol map in ascending
// asset id order, with the same cursor contract as ListAllSources
func (h *Hub) ListAssetSymbolMap(ctx context.Context, startAfter string, limit int) ([]MapEntry, error) {
	entries := make([]MapEntry, 0, clampLimit(limit))
	err := h.paginate(ctx, prefixAssetMap, startAfter, limit, func(assetID string, value []byte) error {
		entries = append(entries, MapEntry{AssetID: assetID, Symbol: string(value)})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// CheckSource quotes a symbol through one specific whitelisted proxy,
// bypassing the source registry. Diagnostic aid for operators vetting a
// proxy before registering it.
func (h *Hub) CheckSource(ctx context.Context, proxyAddr, symbol string) (*Quote, error) {
	wl, err := h.loadWhitelist(ctx)
	if err != nil {
		return nil, err
	}
	if !wl.IsWhitelisted(proxyAddr) {
		return nil, ErrProxyNotWhitelisted
	}

	quote, err := h.quoter.Quote(ctx, proxyAddr, symbol)
	if err != nil {
		return nil, ErrPriceNotAvailable
	}
	return &quote, nil
}

// paginate walks up to limit entries under prefix in ascending raw-byte key
// order, starting strictly after startAfter, and hands each (key suffix,
// value) pair to fn. The cursor key itself is never visited.
func (h *Hub) paginate(ctx context.Context, prefix, startAfter string, limit int, fn func(suffix string, value []byte) error) error {
	limit = clampLimit(limit)

	start := []byte(prefix)
	if startAfter != "" {
		start = keyValueDb.StartAfter([]byte(prefix + startAfter))
	}
	end := keyValueDb.PrefixEnd([]byte(prefix))

	iter, err := h.db.Iterator(ctx, start, end)
	if err != nil {
		return err
	}
	defer iter.Close()

	count := 0
	for count < limit && iter.Next() {
		suffix := strings.TrimPrefix(string(iter.Key()), prefix)
		if err := fn(suffix, iter.Value()); err != nil {
			return err
		}
		count++
	}
	return iter.Error()
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPaginationLimit
	}
	if limit > MaxPaginationLimit {
		return MaxPaginationLimit
	}
	return limit
}
