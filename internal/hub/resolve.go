package hub

import (
	"context"

	"github.com/LeJamon/goOracleHub/internal/logger"
	"golang.org/x/sync/errgroup"
)

// Resolution engine. Priority order is a manually curated trust ranking, so
// resolution is deliberately "first good answer wins" instead of averaging:
// administrators fully control the fallback order and the blast radius of a
// broken proxy.

// ResolvePrice walks the symbol's sources in ascending priority order and
// returns the first acceptable quote. maxAgeSeconds <= 0 disables the
// staleness cutoff. Per-source call-out failures are skipped, never surfaced;
// only exhausting every source yields ErrPriceNotAvailable.
func (h *Hub) ResolvePrice(ctx context.Context, symbol, assetID string, maxAgeSeconds int64) (*Quote, error) {
	symbol, err := h.resolveSymbol(ctx, symbol, assetID)
	if err != nil {
		return nil, err
	}

	src, err := h.loadSources(ctx, symbol)
	if err != nil {
		return nil, err
	}

	// cutoff 0 accepts any quote age
	var cutoff int64
	if maxAgeSeconds > 0 {
		cutoff = h.now().Unix() - maxAgeSeconds
	}

	for _, ref := range src.Proxies {
		quote, err := h.quoter.Quote(ctx, ref.Address, symbol)
		if err != nil {
			h.log.WithError(err).WithFields(logger.Fields{
				"symbol": symbol,
				"proxy":  ref.Address,
			}).Debug("source call-out failed, trying next")
			continue
		}
		if quote.LastUpdated < cutoff {
			continue
		}
		return &quote, nil
	}

	return nil, ErrPriceNotAvailable
}

// ResolvePriceList queries every source of the symbol independently and in
// parallel, reporting a per-source success or failure. The returned slice
// preserves the stored priority order regardless of call-out completion
// order. No staleness filter applies; this is a diagnostic view, not a trust
// decision.
func (h *Hub) ResolvePriceList(ctx context.Context, symbol, assetID string) ([]PriceListEntry, error) {
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

	entries := make([]PriceListEntry, len(src.Proxies))
	g, gCtx := errgroup.WithContext(ctx)
	for i, ref := range src.Proxies {
		i, ref := i, ref
		info, ferr := wl.FindByAddr(ref.Address)
		if ferr != nil {
			info = ProxyInfo{Address: ref.Address, ProviderName: NoLongerWhitelistedName}
		}
		entries[i] = PriceListEntry{Priority: ref.Priority, Proxy: info}

		g.Go(func() error {
			quote, qerr := h.quoter.Quote(gCtx, ref.Address, symbol)
			if qerr != nil {
				entries[i].Result = PriceQueryOutcome{Success: false}
				return nil
			}
			entries[i].Result = PriceQueryOutcome{Success: true, Quote: &quote}
			return nil
		})
	}

	// goroutines only record outcomes, they never fail the group
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return entries, nil
}
