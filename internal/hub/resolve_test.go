package hub_test

import (
	"testing"
	"time"

	"github.com/LeJamon/goOracleHub/internal/hub"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Unix(1_700_000_000, 0)

// newResolveEnv builds a hub with three sources for TSLA at priorities 1..3
// and a frozen clock
func newResolveEnv(t *testing.T) *testEnv {
	t.Helper()
	env := newTestEnv(t, hub.WithClock(func() time.Time { return testNow }))
	for i, addr := range []string{"a", "b", "c"} {
		env.whitelist(t, addr, "Proxy "+addr)
		env.register(t, "TSLA", addr, prio(uint8(i+1)))
	}
	return env
}

func (e *testEnv) setQuote(addr, symbol string, rate string, age time.Duration) {
	e.quoter.SetQuote(addr, symbol, hub.Quote{
		Rate:        decimal.RequireFromString(rate),
		LastUpdated: testNow.Add(-age).Unix(),
	})
}

func TestResolvePriceFirstGoodWins(t *testing.T) {
	env := newResolveEnv(t)
	env.quoter.SetFailure("a", "TSLA")
	env.setQuote("b", "TSLA", "242.84", 0)
	env.setQuote("c", "TSLA", "999.99", 0)

	quote, err := env.hub.ResolvePrice(env.ctx, "TSLA", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "242.84", quote.Rate.String())
}

func TestResolvePriceStaleness(t *testing.T) {
	env := newResolveEnv(t)
	env.quoter.SetFailure("a", "TSLA")
	env.setQuote("b", "TSLA", "242.84", 20*time.Minute)
	env.setQuote("c", "TSLA", "243.10", time.Minute)

	// a 10 minute cutoff skips b's stale quote
	quote, err := env.hub.ResolvePrice(env.ctx, "TSLA", "", 600)
	require.NoError(t, err)
	assert.Equal(t, "243.10", quote.Rate.String())

	// no cutoff accepts b again
	quote, err = env.hub.ResolvePrice(env.ctx, "TSLA", "", 0)
	require.NoError(t, err)
	assert.Equal(t, "242.84", quote.Rate.String())

	// cutoff stricter than every quote exhausts the list
	_, err = env.hub.ResolvePrice(env.ctx, "TSLA", "", 30)
	assert.ErrorIs(t, err, hub.ErrPriceNotAvailable)
}

func TestResolvePriceAllSourcesFail(t *testing.T) {
	env := newResolveEnv(t)
	for _, addr := range []string{"a", "b", "c"} {
		env.quoter.SetFailure(addr, "TSLA")
	}

	_, err := env.hub.ResolvePrice(env.ctx, "TSLA", "", 0)
	assert.ErrorIs(t, err, hub.ErrPriceNotAvailable)
}

func TestResolvePriceByAssetID(t *testing.T) {
	env := newResolveEnv(t)
	env.setQuote("a", "TSLA", "242.84", 0)
	require.NoError(t, env.hub.InsertAssetSymbolMap(env.ctx, owner, []hub.MapEntry{
		{AssetID: "token1", Symbol: "TSLA"},
	}))

	quote, err := env.hub.ResolvePrice(env.ctx, "", "token1", 0)
	require.NoError(t, err)
	assert.Equal(t, "242.84", quote.Rate.String())

	_, err = env.hub.ResolvePrice(env.ctx, "", "unknown-token", 0)
	assert.ErrorIs(t, err, hub.ErrMappingNotFound)
}

func TestResolvePriceUnknownSymbol(t *testing.T) {
	env := newResolveEnv(t)
	_, err := env.hub.ResolvePrice(env.ctx, "GOOG", "", 0)
	assert.ErrorIs(t, err, hub.ErrSymbolNotRegistered)
}

func TestResolvePriceList(t *testing.T) {
	env := newResolveEnv(t)
	env.quoter.SetFailure("a", "TSLA")
	env.setQuote("b", "TSLA", "242.84", 0)
	env.setQuote("c", "TSLA", "243.10", 0)

	// c was de-whitelisted after registration; its row degrades to the
	// sentinel name but is still queried
	require.NoError(t, env.hub.RemoveProxy(env.ctx, owner, "c"))

	entries, err := env.hub.ResolvePriceList(env.ctx, "TSLA", "")
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, "a", entries[0].Proxy.Address)
	assert.False(t, entries[0].Result.Success)
	assert.Nil(t, entries[0].Result.Quote)

	assert.Equal(t, "b", entries[1].Proxy.Address)
	require.True(t, entries[1].Result.Success)
	assert.Equal(t, "242.84", entries[1].Result.Quote.Rate.String())

	assert.Equal(t, "c", entries[2].Proxy.Address)
	assert.Equal(t, hub.NoLongerWhitelistedName, entries[2].Proxy.ProviderName)
	require.True(t, entries[2].Result.Success)
	assert.Equal(t, "243.10", entries[2].Result.Quote.Rate.String())
}

func TestCheckSource(t *testing.T) {
	env := newResolveEnv(t)

	_, err := env.hub.CheckSource(env.ctx, "ghost", "TSLA")
	assert.ErrorIs(t, err, hub.ErrProxyNotWhitelisted)

	env.quoter.SetFailure("a", "TSLA")
	_, err = env.hub.CheckSource(env.ctx, "a", "TSLA")
	assert.ErrorIs(t, err, hub.ErrPriceNotAvailable)

	env.setQuote("a", "TSLA", "242.84", 0)
	quote, err := env.hub.CheckSource(env.ctx, "a", "TSLA")
	require.NoError(t, err)
	assert.Equal(t, "242.84", quote.Rate.String())

	// works even for symbols with no registered source list
	env.setQuote("a", "GOOG", "207.22", 0)
	quote, err = env.hub.CheckSource(env.ctx, "a", "GOOG")
	require.NoError(t, err)
	assert.Equal(t, "207.22", quote.Rate.String())
}
