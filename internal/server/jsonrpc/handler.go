package jsonrpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/LeJamon/goOracleHub/internal/hub"
)

// Handler dispatches JSON-RPC methods to the hub
type Handler struct {
	hub     *hub.Hub
	methods map[string]func(context.Context, json.RawMessage) (interface{}, error)
}

// NewHandler initializes a new Handler instance
func NewHandler(h *hub.Hub) *Handler {
	hd := &Handler{
		hub:     h,
		methods: make(map[string]func(context.Context, json.RawMessage) (interface{}, error)),
	}

	// Read surface
	hd.methods["config"] = hd.handleConfig
	hd.methods["proxy_whitelist"] = hd.handleProxyWhitelist
	hd.methods["sources"] = hd.handleSources
	hd.methods["all_sources"] = hd.handleAllSources
	hd.methods["asset_symbol_map"] = hd.handleAssetSymbolMap
	hd.methods["price"] = hd.handlePrice
	hd.methods["price_list"] = hd.handlePriceList
	hd.methods["check_source"] = hd.handleCheckSource

	// Admin surface
	hd.methods["update_owner"] = hd.handleUpdateOwner
	hd.methods["update_max_proxies"] = hd.handleUpdateMaxProxies
	hd.methods["whitelist_proxy"] = hd.handleWhitelistProxy
	hd.methods["remove_proxy"] = hd.handleRemoveProxy
	hd.methods["register_source"] = hd.handleRegisterSource
	hd.methods["register_sources_bulk"] = hd.handleRegisterSourcesBulk
	hd.methods["update_source_priority"] = hd.handleUpdateSourcePriority
	hd.methods["remove_source"] = hd.handleRemoveSource
	hd.methods["insert_asset_symbol_map"] = hd.handleInsertAssetSymbolMap

	return hd
}

// Handle dispatches a JSON-RPC method to the appropriate handler
func (h *Handler) Handle(ctx context.Context, method string, params json.RawMessage) (interface{}, *Error) {
	handler, exists := h.methods[method]
	if !exists {
		return nil, &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method %s not found", method)}
	}

	result, err := handler(ctx, params)
	if err != nil {
		return nil, toRPCError(err)
	}
	return result, nil
}

// toRPCError maps registry errors to stable application codes
func toRPCError(err error) *Error {
	var tooManySources *hub.TooManyProxiesForSymbolError
	var tooManyWhitelisted *hub.TooManyWhitelistedProxiesError

	switch {
	case errors.Is(err, hub.ErrUnauthorized):
		return &Error{Code: CodeUnauthorized, Message: err.Error()}
	case errors.Is(err, hub.ErrProxyNotWhitelisted):
		return &Error{Code: CodeProxyNotWhitelisted, Message: err.Error()}
	case errors.Is(err, hub.ErrProxyAlreadyRegistered):
		return &Error{Code: CodeProxyAlreadyRegistered, Message: err.Error()}
	case errors.Is(err, hub.ErrProxyNotRegistered):
		return &Error{Code: CodeProxyNotRegistered, Message: err.Error()}
	case errors.As(err, &tooManySources):
		return &Error{Code: CodeTooManyProxiesForSymbol, Message: err.Error(), Data: map[string]interface{}{"max": tooManySources.Max}}
	case errors.As(err, &tooManyWhitelisted):
		return &Error{Code: CodeTooManyWhitelistedProxies, Message: err.Error(), Data: map[string]interface{}{"max": tooManyWhitelisted.Max}}
	case errors.Is(err, hub.ErrSymbolNotRegistered):
		return &Error{Code: CodeSymbolNotRegistered, Message: err.Error()}
	case errors.Is(err, hub.ErrMappingNotFound):
		return &Error{Code: CodeMappingNotFound, Message: err.Error()}
	case errors.Is(err, hub.ErrInvalidPriorityBatch):
		return &Error{Code: CodeInvalidPriorityBatch, Message: err.Error()}
	case errors.Is(err, hub.ErrPriceNotAvailable):
		return &Error{Code: CodePriceNotAvailable, Message: err.Error()}
	case errors.Is(err, hub.ErrNotInitialized):
		return &Error{Code: CodeNotInitialized, Message: err.Error()}
	case errors.Is(err, hub.ErrAlreadyInitialized):
		return &Error{Code: CodeAlreadyInitialized, Message: err.Error()}
	default:
		return &Error{Code: CodeInternalError, Message: err.Error()}
	}
}

func decodeParams(params json.RawMessage, v interface{}) error {
	if len(params) == 0 {
		return nil
	}
	return json.Unmarshal(params, v)
}

type symbolOrAssetParams struct {
	Symbol  string `json:"symbol"`
	AssetID string `json:"asset_id"`
}

type paginationParams struct {
	StartAfter string `json:"start_after"`
	Limit      int    `json:"limit"`
}

func (h *Handler) handleConfig(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	return h.hub.GetConfig(ctx)
}

func (h *Handler) handleProxyWhitelist(ctx context.Context, _ json.RawMessage) (interface{}, error) {
	return h.hub.GetWhitelist(ctx)
}

func (h *Handler) handleSources(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p symbolOrAssetParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return h.hub.GetSources(ctx, p.Symbol, p.AssetID)
}

func (h *Handler) handleAllSources(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p paginationParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	list, err := h.hub.ListAllSources(ctx, p.StartAfter, p.Limit)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"list": list}, nil
}

func (h *Handler) handleAssetSymbolMap(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p paginationParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	entries, err := h.hub.ListAssetSymbolMap(ctx, p.StartAfter, p.Limit)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"map": entries}, nil
}

func (h *Handler) handlePrice(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		symbolOrAssetParams
		MaxAgeSeconds int64 `json:"max_age_seconds"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return h.hub.ResolvePrice(ctx, p.Symbol, p.AssetID, p.MaxAgeSeconds)
}

func (h *Handler) handlePriceList(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p symbolOrAssetParams
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	entries, err := h.hub.ResolvePriceList(ctx, p.Symbol, p.AssetID)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{"price_list": entries}, nil
}

func (h *Handler) handleCheckSource(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		ProxyAddr string `json:"proxy_addr"`
		Symbol    string `json:"symbol"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	return h.hub.CheckSource(ctx, p.ProxyAddr, p.Symbol)
}

type callerParams struct {
	Caller string `json:"caller"`
}

func (h *Handler) handleUpdateOwner(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		callerParams
		Owner string `json:"owner"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := h.hub.UpdateOwner(ctx, p.Caller, p.Owner); err != nil {
		return nil, err
	}
	return ackResult(), nil
}

func (h *Handler) handleUpdateMaxProxies(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		callerParams
		MaxProxiesPerSymbol uint8 `json:"max_proxies_per_symbol"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := h.hub.UpdateMaxProxies(ctx, p.Caller, p.MaxProxiesPerSymbol); err != nil {
		return nil, err
	}
	return ackResult(), nil
}

func (h *Handler) handleWhitelistProxy(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		callerParams
		ProxyAddr    string `json:"proxy_addr"`
		ProviderName string `json:"provider_name"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := h.hub.WhitelistProxy(ctx, p.Caller, p.ProxyAddr, p.ProviderName); err != nil {
		return nil, err
	}
	return ackResult(), nil
}

func (h *Handler) handleRemoveProxy(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		callerParams
		ProxyAddr string `json:"proxy_addr"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := h.hub.RemoveProxy(ctx, p.Caller, p.ProxyAddr); err != nil {
		return nil, err
	}
	return ackResult(), nil
}

func (h *Handler) handleRegisterSource(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		callerParams
		Symbol    string `json:"symbol"`
		ProxyAddr string `json:"proxy_addr"`
		Priority  *uint8 `json:"priority"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := h.hub.RegisterSource(ctx, p.Caller, p.Symbol, p.ProxyAddr, p.Priority); err != nil {
		return nil, err
	}
	return ackResult(), nil
}

func (h *Handler) handleRegisterSourcesBulk(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		callerParams
		Entries []hub.SourceEntry `json:"entries"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := h.hub.RegisterSourcesBulk(ctx, p.Caller, p.Entries); err != nil {
		return nil, err
	}
	return ackResult(), nil
}

func (h *Handler) handleUpdateSourcePriority(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		callerParams
		Symbol  string               `json:"symbol"`
		Updates []hub.PriorityUpdate `json:"updates"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := h.hub.UpdateSourcePriorityBatch(ctx, p.Caller, p.Symbol, p.Updates); err != nil {
		return nil, err
	}
	return ackResult(), nil
}

func (h *Handler) handleRemoveSource(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		callerParams
		Symbol    string `json:"symbol"`
		ProxyAddr string `json:"proxy_addr"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := h.hub.RemoveSource(ctx, p.Caller, p.Symbol, p.ProxyAddr); err != nil {
		return nil, err
	}
	return ackResult(), nil
}

func (h *Handler) handleInsertAssetSymbolMap(ctx context.Context, params json.RawMessage) (interface{}, error) {
	var p struct {
		callerParams
		Items []hub.MapEntry `json:"items"`
	}
	if err := decodeParams(params, &p); err != nil {
		return nil, err
	}
	if err := h.hub.InsertAssetSymbolMap(ctx, p.Caller, p.Items); err != nil {
		return nil, err
	}
	return ackResult(), nil
}

func ackResult() map[string]interface{} {
	return map[string]interface{}{"status": "ok"}
}
