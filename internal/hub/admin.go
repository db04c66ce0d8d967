package hub

import (
	"context"
	"sort"

	"github.com/LeJamon/goOracleHub/internal/logger"
	"github.com/LeJamon/goOracleHub/internal/storage/keyValueDb"
)

// Administrative commands. Every command requires the caller to be the
// configured owner, validates fully in memory and then applies all writes as
// one atomic batch, so a failing check never leaves a partial mutation.

// UpdateOwner transfers ownership of the hub
func (h *Hub) UpdateOwner(ctx context.Context, caller, newOwner string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cfg, err := h.requireOwner(ctx, caller)
	if err != nil {
		return err
	}
	cfg.Owner = newOwner

	ops, err := appendPut(nil, keyConfig, cfg)
	if err != nil {
		return err
	}
	if err := h.db.Batch(ctx, ops); err != nil {
		return err
	}

	h.log.WithFields(logger.Fields{"owner": newOwner}).Info("owner updated")
	return nil
}

// UpdateMaxProxies changes the per-symbol source capacity. The new ceiling is
// not enforced retroactively: source lists already longer than it are left
// intact and only future registrations are blocked.
func (h *Hub) UpdateMaxProxies(ctx context.Context, caller string, maxProxiesPerSymbol uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cfg, err := h.requireOwner(ctx, caller)
	if err != nil {
		return err
	}
	cfg.MaxProxiesPerSymbol = maxProxiesPerSymbol

	ops, err := appendPut(nil, keyConfig, cfg)
	if err != nil {
		return err
	}
	if err := h.db.Batch(ctx, ops); err != nil {
		return err
	}

	h.log.WithFields(logger.Fields{"max_proxies_per_symbol": maxProxiesPerSymbol}).Info("max proxies updated")
	return nil
}

// WhitelistProxy adds a proxy to the whitelist or, if it is already present,
// updates its provider name. The capacity check only applies to genuinely
// new entries.
func (h *Hub) WhitelistProxy(ctx context.Context, caller, proxyAddr, providerName string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.requireOwner(ctx, caller); err != nil {
		return err
	}

	wl, err := h.loadWhitelist(ctx)
	if err != nil {
		return err
	}

	if !wl.IsWhitelisted(proxyAddr) && len(wl.Proxies) >= MaxWhitelistedProxies {
		return &TooManyWhitelistedProxiesError{Max: MaxWhitelistedProxies}
	}
	wl.Upsert(ProxyInfo{Address: proxyAddr, ProviderName: providerName})

	ops, err := appendPut(nil, keyWhitelist, wl)
	if err != nil {
		return err
	}
	if err := h.db.Batch(ctx, ops); err != nil {
		return err
	}

	h.log.WithFields(logger.Fields{"proxy": proxyAddr, "provider": providerName}).Info("proxy whitelisted")
	return nil
}

// RemoveProxy removes a proxy from the whitelist. Existing source list
// entries referencing it are kept; listings degrade to a sentinel name and
// resolution keeps quoting through it until the sources are removed.
func (h *Hub) RemoveProxy(ctx context.Context, caller, proxyAddr string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.requireOwner(ctx, caller); err != nil {
		return err
	}

	wl, err := h.loadWhitelist(ctx)
	if err != nil {
		return err
	}
	if err := wl.Remove(proxyAddr); err != nil {
		return err
	}

	ops, err := appendPut(nil, keyWhitelist, wl)
	if err != nil {
		return err
	}
	if err := h.db.Batch(ctx, ops); err != nil {
		return err
	}

	h.log.WithFields(logger.Fields{"proxy": proxyAddr}).Info("proxy removed from whitelist")
	return nil
}

// RegisterSource registers a whitelisted proxy as a price source for the
// symbol. A nil priority means DefaultPriority.
func (h *Hub) RegisterSource(ctx context.Context, caller, symbol, proxyAddr string, priority *uint8) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cfg, err := h.requireOwner(ctx, caller)
	if err != nil {
		return err
	}

	wl, err := h.loadWhitelist(ctx)
	if err != nil {
		return err
	}

	dirty := make(map[string]*Sources)
	if err := h.stageRegistration(ctx, cfg, wl, dirty, SourceEntry{
		Symbol:   symbol,
		Address:  proxyAddr,
		Priority: priority,
	}); err != nil {
		return err
	}

	ops, err := sourcesOps(dirty)
	if err != nil {
		return err
	}
	if err := h.db.Batch(ctx, ops); err != nil {
		return err
	}

	h.log.WithFields(logger.Fields{"symbol": symbol, "proxy": proxyAddr}).Info("source registered")
	return nil
}

// RegisterSourcesBulk applies RegisterSource semantics entry by entry inside
// one atomic unit; the first failing entry aborts the whole batch.
func (h *Hub) RegisterSourcesBulk(ctx context.Context, caller string, entries []SourceEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	cfg, err := h.requireOwner(ctx, caller)
	if err != nil {
		return err
	}

	wl, err := h.loadWhitelist(ctx)
	if err != nil {
		return err
	}

	dirty := make(map[string]*Sources)
	for _, entry := range entries {
		if err := h.stageRegistration(ctx, cfg, wl, dirty, entry); err != nil {
			return err
		}
	}

	ops, err := sourcesOps(dirty)
	if err != nil {
		return err
	}
	if err := h.db.Batch(ctx, ops); err != nil {
		return err
	}

	h.log.WithFields(logger.Fields{"entries": len(entries)}).Info("sources registered in bulk")
	return nil
}

// stageRegistration validates one registration against the staged state and
// records the updated source list in dirty without writing anything
func (h *Hub) stageRegistration(ctx context.Context, cfg *Config, wl *Whitelist, dirty map[string]*Sources, entry SourceEntry) error {
	if !wl.IsWhitelisted(entry.Address) {
		return ErrProxyNotWhitelisted
	}

	src, ok := dirty[entry.Symbol]
	if !ok {
		loaded, err := h.loadSources(ctx, entry.Symbol)
		if err == ErrSymbolNotRegistered {
			// first registration creates the list
			loaded = &Sources{Symbol: entry.Symbol}
		} else if err != nil {
			return err
		}
		src = loaded
		dirty[entry.Symbol] = src
	}

	if len(src.Proxies) >= int(cfg.MaxProxiesPerSymbol) {
		return &TooManyProxiesForSymbolError{Max: cfg.MaxProxiesPerSymbol}
	}
	if src.IsRegistered(entry.Address) {
		return ErrProxyAlreadyRegistered
	}

	priority := DefaultPriority
	if entry.Priority != nil {
		priority = *entry.Priority
	}
	src.Proxies = append(src.Proxies, ProxyRef{Priority: priority, Address: entry.Address})
	src.SortByPriority()
	return nil
}

// UpdateSourcePriorityBatch changes priorities for several sources of one
// symbol at once. The batch is rejected as a whole if it contains duplicate
// addresses or references a proxy that is not registered for the symbol.
func (h *Hub) UpdateSourcePriorityBatch(ctx context.Context, caller, symbol string, updates []PriorityUpdate) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.requireOwner(ctx, caller); err != nil {
		return err
	}

	seen := make(map[string]struct{}, len(updates))
	for _, u := range updates {
		if _, dup := seen[u.Address]; dup {
			return ErrInvalidPriorityBatch
		}
		seen[u.Address] = struct{}{}
	}

	src, err := h.loadSources(ctx, symbol)
	if err != nil {
		return err
	}

	for _, u := range updates {
		if err := src.UpdatePriority(u.Address, u.Priority); err != nil {
			return err
		}
	}
	src.SortByPriority()

	ops, err := appendPut(nil, sourcesKey(symbol), src)
	if err != nil {
		return err
	}
	if err := h.db.Batch(ctx, ops); err != nil {
		return err
	}

	h.log.WithFields(logger.Fields{"symbol": symbol, "updates": len(updates)}).Info("source priorities updated")
	return nil
}

// RemoveSource removes one proxy from a symbol's source list. The remaining
// entries keep their stored order.
func (h *Hub) RemoveSource(ctx context.Context, caller, symbol, proxyAddr string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.requireOwner(ctx, caller); err != nil {
		return err
	}

	src, err := h.loadSources(ctx, symbol)
	if err != nil {
		return err
	}
	if err := src.Remove(proxyAddr); err != nil {
		return err
	}

	ops, err := appendPut(nil, sourcesKey(symbol), src)
	if err != nil {
		return err
	}
	if err := h.db.Batch(ctx, ops); err != nil {
		return err
	}

	h.log.WithFields(logger.Fields{"symbol": symbol, "proxy": proxyAddr}).Info("source removed")
	return nil
}

// InsertAssetSymbolMap upserts asset-to-symbol mappings in bulk. Each item
// is an independent overwrite-or-insert; the whole batch applies atomically.
func (h *Hub) InsertAssetSymbolMap(ctx context.Context, caller string, items []MapEntry) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, err := h.requireOwner(ctx, caller); err != nil {
		return err
	}

	ops := make([]keyValueDb.BatchOperation, 0, len(items))
	for _, item := range items {
		ops = append(ops, keyValueDb.BatchOperation{
			Type:  keyValueDb.BatchPut,
			Key:   assetMapKey(item.AssetID),
			Value: []byte(item.Symbol),
		})
	}
	if err := h.db.Batch(ctx, ops); err != nil {
		return err
	}

	// drop overwritten cache entries after the write is durable
	for _, item := range items {
		h.symbols.Remove(item.AssetID)
	}

	h.log.WithFields(logger.Fields{"items": len(items)}).Info("asset symbol map updated")
	return nil
}

// sourcesOps renders all staged source lists into one batch, in a stable
// order for reproducible writes
func sourcesOps(dirty map[string]*Sources) ([]keyValueDb.BatchOperation, error) {
	var ops []keyValueDb.BatchOperation
	var err error
	for _, symbol := range sortedKeys(dirty) {
		ops, err = appendPut(ops, sourcesKey(symbol), dirty[symbol])
		if err != nil {
			return nil, err
		}
	}
	return ops, nil
}

func sortedKeys(m map[string]*Sources) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
