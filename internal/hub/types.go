package hub

import (
	"sort"

	"github.com/shopspring/decimal"
)

const (
	// DefaultPriority is assigned to a source registered without an
	// explicit priority. Lower value = consulted first.
	DefaultPriority uint8 = 10

	// MaxWhitelistedProxies caps the size of the proxy whitelist
	MaxWhitelistedProxies = 30

	// NoLongerWhitelistedName is the display name substituted for sources
	// whose proxy has been removed from the whitelist after registration
	NoLongerWhitelistedName = "No longer whitelisted"
)

// Config is the singleton administrative record of the hub
type Config struct {
	Owner string `json:"owner"`
	// BaseDenom has no effect on hub behavior, only informational:
	// only proxies quoting against the base denom should be registered
	BaseDenom           string `json:"base_denom"`
	MaxProxiesPerSymbol uint8  `json:"max_proxies_per_symbol"`
}

// IsOwner checks if the provided address is the configured owner
func (c *Config) IsOwner(addr string) bool {
	return c.Owner == addr
}

// ProxyInfo is one whitelisted proxy with its display name
type ProxyInfo struct {
	Address      string `json:"address"`
	ProviderName string `json:"provider_name"`
}

// Whitelist is the set of proxies eligible for source registration,
// unique by address
type Whitelist struct {
	Proxies []ProxyInfo `json:"proxies"`
}

// IsWhitelisted reports whether the proxy address is in the whitelist
func (w *Whitelist) IsWhitelisted(addr string) bool {
	for _, p := range w.Proxies {
		if p.Address == addr {
			return true
		}
	}
	return false
}

// FindByAddr returns the whitelist entry for the address
func (w *Whitelist) FindByAddr(addr string) (ProxyInfo, error) {
	for _, p := range w.Proxies {
		if p.Address == addr {
			return p, nil
		}
	}
	return ProxyInfo{}, ErrProxyNotWhitelisted
}

// Upsert adds a new entry or updates the provider name of an existing one.
// Returns true if the entry was newly added.
func (w *Whitelist) Upsert(info ProxyInfo) bool {
	for i, p := range w.Proxies {
		if p.Address == info.Address {
			w.Proxies[i] = info
			return false
		}
	}
	w.Proxies = append(w.Proxies, info)
	return true
}

// Remove deletes the entry for the address
func (w *Whitelist) Remove(addr string) error {
	for i, p := range w.Proxies {
		if p.Address == addr {
			w.Proxies = append(w.Proxies[:i], w.Proxies[i+1:]...)
			return nil
		}
	}
	return ErrProxyNotWhitelisted
}

// ProxyRef is one prioritized source entry in a symbol's source list
type ProxyRef struct {
	Priority uint8  `json:"priority"`
	Address  string `json:"address"`
}

// Sources is the ordered list of price sources registered for one symbol.
// Invariants: proxies sorted ascending by priority (stable), no duplicate
// address, length bounded by Config.MaxProxiesPerSymbol at registration time.
type Sources struct {
	Symbol  string     `json:"symbol"`
	Proxies []ProxyRef `json:"proxies"`
}

// SortByPriority sorts the proxy list ascending by priority, keeping the
// existing order of equal priorities
func (s *Sources) SortByPriority() {
	sort.SliceStable(s.Proxies, func(i, j int) bool {
		return s.Proxies[i].Priority < s.Proxies[j].Priority
	})
}

// IsRegistered checks if the provided proxy address is already a source
func (s *Sources) IsRegistered(addr string) bool {
	for _, p := range s.Proxies {
		if p.Address == addr {
			return true
		}
	}
	return false
}

// Remove deletes the source entry for the address; remaining order is kept
func (s *Sources) Remove(addr string) error {
	for i, p := range s.Proxies {
		if p.Address == addr {
			s.Proxies = append(s.Proxies[:i], s.Proxies[i+1:]...)
			return nil
		}
	}
	return ErrProxyNotRegistered
}

// UpdatePriority changes the priority of an existing source entry in place.
// The caller is expected to re-sort once all updates are applied.
func (s *Sources) UpdatePriority(addr string, priority uint8) error {
	for i, p := range s.Proxies {
		if p.Address == addr {
			s.Proxies[i].Priority = priority
			return nil
		}
	}
	return ErrProxyNotRegistered
}

// Quote is one proxy's answer to a price query. Never persisted.
type Quote struct {
	Rate        decimal.Decimal `json:"rate"`
	LastUpdated int64           `json:"last_updated"`
}

// SourceInfo pairs a source entry with its whitelist display info for
// listing responses
type SourceInfo struct {
	Priority uint8     `json:"priority"`
	Proxy    ProxyInfo `json:"proxy"`
}

// SourcesResponse is the annotated view of one symbol's source list
type SourcesResponse struct {
	Symbol  string       `json:"symbol"`
	Proxies []SourceInfo `json:"proxies"`
}

// annotate resolves whitelist display info for every source entry,
// degrading to a sentinel name for de-whitelisted proxies
func (s *Sources) annotate(wl *Whitelist) SourcesResponse {
	res := SourcesResponse{
		Symbol:  s.Symbol,
		Proxies: make([]SourceInfo, 0, len(s.Proxies)),
	}
	for _, p := range s.Proxies {
		info, err := wl.FindByAddr(p.Address)
		if err != nil {
			info = ProxyInfo{Address: p.Address, ProviderName: NoLongerWhitelistedName}
		}
		res.Proxies = append(res.Proxies, SourceInfo{Priority: p.Priority, Proxy: info})
	}
	return res
}

// PriceQueryOutcome is the per-source result of a price-list query
type PriceQueryOutcome struct {
	Success bool   `json:"success"`
	Quote   *Quote `json:"quote,omitempty"`
}

// PriceListEntry is one row of a price-list query: the source, its display
// info and the outcome of its call-out
type PriceListEntry struct {
	Priority uint8             `json:"priority"`
	Proxy    ProxyInfo         `json:"proxy"`
	Result   PriceQueryOutcome `json:"result"`
}

// MapEntry is one asset-to-symbol mapping
type MapEntry struct {
	AssetID string `json:"asset_id"`
	Symbol  string `json:"symbol"`
}

// SourceEntry is one register_sources_bulk item
type SourceEntry struct {
	Symbol   string `json:"symbol"`
	Address  string `json:"proxy_addr"`
	Priority *uint8 `json:"priority,omitempty"`
}

// PriorityUpdate is one update_source_priority item
type PriorityUpdate struct {
	Address  string `json:"proxy_addr"`
	Priority uint8  `json:"priority"`
}
