package hub

import (
	"errors"
	"fmt"
)

// Registry errors are stable values so calling code can branch on them
// with errors.Is / errors.As.
var (
	// ErrUnauthorized is returned when the caller is not the configured owner
	ErrUnauthorized = errors.New("sender is not authorized to execute this operation")

	// ErrProxyNotRegistered is returned when a proxy is not a source for the symbol
	ErrProxyNotRegistered = errors.New("the proxy is not registered as a source for this symbol")

	// ErrProxyNotWhitelisted is returned when a proxy address is not whitelisted
	ErrProxyNotWhitelisted = errors.New("the proxy address is not whitelisted")

	// ErrProxyAlreadyRegistered is returned when registering a proxy twice for one symbol
	ErrProxyAlreadyRegistered = errors.New("the proxy is already registered as a source for this symbol")

	// ErrSymbolNotRegistered is returned when no source list exists for the symbol
	ErrSymbolNotRegistered = errors.New("the symbol is not registered")

	// ErrMappingNotFound is returned when no symbol mapping exists for an asset id
	ErrMappingNotFound = errors.New("no symbol mapping found for the asset")

	// ErrInvalidPriorityBatch is returned when a priority update batch contains
	// the same proxy address more than once
	ErrInvalidPriorityBatch = errors.New("duplicate proxy address in priority update batch")

	// ErrPriceNotAvailable is returned when no source yields an acceptable quote
	ErrPriceNotAvailable = errors.New("there is no price available with the requested constraints")

	// ErrAlreadyInitialized is returned when initializing a hub that has a config
	ErrAlreadyInitialized = errors.New("hub is already initialized")

	// ErrNotInitialized is returned when operating on a hub without a config
	ErrNotInitialized = errors.New("hub is not initialized")
)

// TooManyProxiesForSymbolError is returned when a registration would exceed
// the configured per-symbol source capacity
type TooManyProxiesForSymbolError struct {
	Max uint8
}

func (e *TooManyProxiesForSymbolError) Error() string {
	return fmt.Sprintf("this symbol exceeds the maximum proxies per symbol (%d)", e.Max)
}

// TooManyWhitelistedProxiesError is returned when whitelisting would exceed
// the global whitelist capacity
type TooManyWhitelistedProxiesError struct {
	Max int
}

func (e *TooManyWhitelistedProxiesError) Error() string {
	return fmt.Sprintf("can not whitelist more than the maximum (%d)", e.Max)
}
