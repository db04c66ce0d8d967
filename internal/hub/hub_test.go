package hub_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/LeJamon/goOracleHub/internal/hub"
	"github.com/LeJamon/goOracleHub/internal/logger"
	"github.com/LeJamon/goOracleHub/internal/proxy"
	"github.com/LeJamon/goOracleHub/internal/storage/keyValueDb/memory"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const owner = "owner0000"

type testEnv struct {
	hub    *hub.Hub
	db     *memory.DB
	quoter *proxy.StaticQuoter
	ctx    context.Context
}

func newTestEnv(t *testing.T, opts ...hub.Option) *testEnv {
	t.Helper()

	log := logger.Logger()
	log.SetLevel(logrus.ErrorLevel)

	db := memory.NewDB()
	quoter := proxy.NewStaticQuoter()

	h, err := hub.New(db, quoter, log, opts...)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, h.Initialize(ctx, owner, "usd", 3))

	return &testEnv{hub: h, db: db, quoter: quoter, ctx: ctx}
}

// whitelist is a shorthand for owner-gated whitelisting in test setup
func (e *testEnv) whitelist(t *testing.T, addr, name string) {
	t.Helper()
	require.NoError(t, e.hub.WhitelistProxy(e.ctx, owner, addr, name))
}

func (e *testEnv) register(t *testing.T, symbol, addr string, priority *uint8) {
	t.Helper()
	require.NoError(t, e.hub.RegisterSource(e.ctx, owner, symbol, addr, priority))
}

func prio(p uint8) *uint8 { return &p }

func TestInitialize(t *testing.T) {
	env := newTestEnv(t)

	cfg, err := env.hub.GetConfig(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, cfg.Owner)
	assert.Equal(t, "usd", cfg.BaseDenom)
	assert.Equal(t, uint8(3), cfg.MaxProxiesPerSymbol)

	// a second initialization must not touch the stored config
	err = env.hub.Initialize(env.ctx, "intruder", "eur", 9)
	assert.ErrorIs(t, err, hub.ErrAlreadyInitialized)

	cfg, err = env.hub.GetConfig(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, owner, cfg.Owner)
}

func TestUpdateOwner(t *testing.T) {
	env := newTestEnv(t)

	err := env.hub.UpdateOwner(env.ctx, "intruder", "intruder")
	assert.ErrorIs(t, err, hub.ErrUnauthorized)

	require.NoError(t, env.hub.UpdateOwner(env.ctx, owner, "owner0001"))

	// the old owner lost its authority
	err = env.hub.UpdateOwner(env.ctx, owner, "owner0002")
	assert.ErrorIs(t, err, hub.ErrUnauthorized)

	cfg, err := env.hub.GetConfig(env.ctx)
	require.NoError(t, err)
	assert.Equal(t, "owner0001", cfg.Owner)
}

func TestUpdateMaxProxies(t *testing.T) {
	env := newTestEnv(t)
	env.whitelist(t, "proxy0", "Proxy Zero")
	env.whitelist(t, "proxy1", "Proxy One")

	env.register(t, "TSLA", "proxy0", nil)
	env.register(t, "TSLA", "proxy1", nil)

	err := env.hub.UpdateMaxProxies(env.ctx, "intruder", 1)
	assert.ErrorIs(t, err, hub.ErrUnauthorized)

	require.NoError(t, env.hub.UpdateMaxProxies(env.ctx, owner, 1))

	// lowering the ceiling is not retroactive
	res, err := env.hub.GetSources(env.ctx, "TSLA", "")
	require.NoError(t, err)
	assert.Len(t, res.Proxies, 2)

	// but new registrations are blocked
	env.whitelist(t, "proxy2", "Proxy Two")
	err = env.hub.RegisterSource(env.ctx, owner, "TSLA", "proxy2", nil)
	var tooMany *hub.TooManyProxiesForSymbolError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, uint8(1), tooMany.Max)
}

func TestWhitelistProxy(t *testing.T) {
	env := newTestEnv(t)

	err := env.hub.WhitelistProxy(env.ctx, "intruder", "proxy0", "Proxy Zero")
	assert.ErrorIs(t, err, hub.ErrUnauthorized)

	env.whitelist(t, "proxy0", "Proxy Zero")

	wl, err := env.hub.GetWhitelist(env.ctx)
	require.NoError(t, err)
	require.Len(t, wl.Proxies, 1)
	assert.Equal(t, "Proxy Zero", wl.Proxies[0].ProviderName)

	// re-adding is an idempotent upsert: name updates, no new entry
	env.whitelist(t, "proxy0", "Proxy Zero v2")
	wl, err = env.hub.GetWhitelist(env.ctx)
	require.NoError(t, err)
	require.Len(t, wl.Proxies, 1)
	assert.Equal(t, "Proxy Zero v2", wl.Proxies[0].ProviderName)
}

func TestWhitelistCapacity(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < hub.MaxWhitelistedProxies; i++ {
		env.whitelist(t, fmt.Sprintf("proxy%02d", i), "Some Proxy")
	}

	err := env.hub.WhitelistProxy(env.ctx, owner, "one-too-many", "Some Proxy")
	var tooMany *hub.TooManyWhitelistedProxiesError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, hub.MaxWhitelistedProxies, tooMany.Max)

	// upserting an existing entry must still be allowed at capacity
	env.whitelist(t, "proxy00", "Renamed")
}

func TestRemoveProxy(t *testing.T) {
	env := newTestEnv(t)
	env.whitelist(t, "proxy0", "Proxy Zero")
	env.register(t, "TSLA", "proxy0", nil)

	err := env.hub.RemoveProxy(env.ctx, owner, "ghost")
	assert.ErrorIs(t, err, hub.ErrProxyNotWhitelisted)

	require.NoError(t, env.hub.RemoveProxy(env.ctx, owner, "proxy0"))

	wl, err := env.hub.GetWhitelist(env.ctx)
	require.NoError(t, err)
	assert.Empty(t, wl.Proxies)

	// de-whitelisting does not cascade into the source registry
	res, err := env.hub.GetSources(env.ctx, "TSLA", "")
	require.NoError(t, err)
	require.Len(t, res.Proxies, 1)
	assert.Equal(t, hub.NoLongerWhitelistedName, res.Proxies[0].Proxy.ProviderName)
}

func TestRegisterSource(t *testing.T) {
	env := newTestEnv(t)

	// whitelist gate: no list may be created on failure
	err := env.hub.RegisterSource(env.ctx, owner, "TSLA", "proxy0", nil)
	assert.ErrorIs(t, err, hub.ErrProxyNotWhitelisted)
	_, err = env.hub.GetSources(env.ctx, "TSLA", "")
	assert.ErrorIs(t, err, hub.ErrSymbolNotRegistered)

	env.whitelist(t, "proxy0", "Proxy Zero")
	err = env.hub.RegisterSource(env.ctx, "intruder", "TSLA", "proxy0", nil)
	assert.ErrorIs(t, err, hub.ErrUnauthorized)

	env.register(t, "TSLA", "proxy0", nil)

	res, err := env.hub.GetSources(env.ctx, "TSLA", "")
	require.NoError(t, err)
	require.Len(t, res.Proxies, 1)
	assert.Equal(t, hub.DefaultPriority, res.Proxies[0].Priority)

	// duplicates are rejected and leave the list unchanged
	err = env.hub.RegisterSource(env.ctx, owner, "TSLA", "proxy0", prio(1))
	assert.ErrorIs(t, err, hub.ErrProxyAlreadyRegistered)
	res, err = env.hub.GetSources(env.ctx, "TSLA", "")
	require.NoError(t, err)
	assert.Len(t, res.Proxies, 1)
}

func TestRegisterSourceOrdering(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.hub.UpdateMaxProxies(env.ctx, owner, 10))
	for _, addr := range []string{"a", "b", "c", "d"} {
		env.whitelist(t, addr, "Proxy "+addr)
	}

	env.register(t, "TSLA", "c", prio(30))
	env.register(t, "TSLA", "a", prio(10))
	env.register(t, "TSLA", "b", prio(20))
	env.register(t, "TSLA", "d", prio(10)) // tie with a, must sort after it

	res, err := env.hub.GetSources(env.ctx, "TSLA", "")
	require.NoError(t, err)
	var got []string
	for _, p := range res.Proxies {
		got = append(got, p.Proxy.Address)
	}
	assert.Equal(t, []string{"a", "d", "b", "c"}, got)
}

func TestRegisterSourceCapacity(t *testing.T) {
	env := newTestEnv(t) // max 3 per symbol
	for _, addr := range []string{"a", "b", "c", "d"} {
		env.whitelist(t, addr, "Proxy "+addr)
	}
	env.register(t, "TSLA", "a", nil)
	env.register(t, "TSLA", "b", nil)
	env.register(t, "TSLA", "c", nil)

	err := env.hub.RegisterSource(env.ctx, owner, "TSLA", "d", nil)
	var tooMany *hub.TooManyProxiesForSymbolError
	require.ErrorAs(t, err, &tooMany)
	assert.Equal(t, uint8(3), tooMany.Max)

	res, err := env.hub.GetSources(env.ctx, "TSLA", "")
	require.NoError(t, err)
	assert.Len(t, res.Proxies, 3)
}

func TestRegisterSourcesBulk(t *testing.T) {
	env := newTestEnv(t)
	env.whitelist(t, "a", "Proxy A")
	env.whitelist(t, "b", "Proxy B")

	err := env.hub.RegisterSourcesBulk(env.ctx, owner, []hub.SourceEntry{
		{Symbol: "AAPL", Address: "a"},
		{Symbol: "AAPL", Address: "b", Priority: prio(1)},
		{Symbol: "AMZN", Address: "a"},
	})
	require.NoError(t, err)

	res, err := env.hub.GetSources(env.ctx, "AAPL", "")
	require.NoError(t, err)
	require.Len(t, res.Proxies, 2)
	assert.Equal(t, "b", res.Proxies[0].Proxy.Address)

	// one bad entry aborts the whole batch
	before := snapshotSources(t, env, "AAPL")
	err = env.hub.RegisterSourcesBulk(env.ctx, owner, []hub.SourceEntry{
		{Symbol: "TSLA", Address: "a"},
		{Symbol: "AAPL", Address: "not-whitelisted"},
	})
	assert.ErrorIs(t, err, hub.ErrProxyNotWhitelisted)

	_, err = env.hub.GetSources(env.ctx, "TSLA", "")
	assert.ErrorIs(t, err, hub.ErrSymbolNotRegistered)
	assert.Equal(t, before, snapshotSources(t, env, "AAPL"))
}

func TestUpdateSourcePriorityBatch(t *testing.T) {
	env := newTestEnv(t)
	env.whitelist(t, "a", "Proxy A")
	env.whitelist(t, "b", "Proxy B")
	env.register(t, "TSLA", "a", prio(1))
	env.register(t, "TSLA", "b", prio(2))

	err := env.hub.UpdateSourcePriorityBatch(env.ctx, owner, "GOOG", []hub.PriorityUpdate{{Address: "a", Priority: 5}})
	assert.ErrorIs(t, err, hub.ErrSymbolNotRegistered)

	err = env.hub.UpdateSourcePriorityBatch(env.ctx, owner, "TSLA", []hub.PriorityUpdate{
		{Address: "a", Priority: 5},
		{Address: "a", Priority: 6},
	})
	assert.ErrorIs(t, err, hub.ErrInvalidPriorityBatch)

	// a single unknown proxy aborts the batch, leaving the stored list
	// byte-for-byte unchanged
	before := snapshotSources(t, env, "TSLA")
	err = env.hub.UpdateSourcePriorityBatch(env.ctx, owner, "TSLA", []hub.PriorityUpdate{
		{Address: "a", Priority: 5},
		{Address: "ghost", Priority: 6},
	})
	assert.ErrorIs(t, err, hub.ErrProxyNotRegistered)
	assert.Equal(t, before, snapshotSources(t, env, "TSLA"))

	// a valid batch applies all updates and re-sorts once
	err = env.hub.UpdateSourcePriorityBatch(env.ctx, owner, "TSLA", []hub.PriorityUpdate{
		{Address: "a", Priority: 9},
		{Address: "b", Priority: 3},
	})
	require.NoError(t, err)

	res, err := env.hub.GetSources(env.ctx, "TSLA", "")
	require.NoError(t, err)
	assert.Equal(t, "b", res.Proxies[0].Proxy.Address)
	assert.Equal(t, uint8(3), res.Proxies[0].Priority)
	assert.Equal(t, "a", res.Proxies[1].Proxy.Address)
}

func TestRemoveSource(t *testing.T) {
	env := newTestEnv(t)
	env.whitelist(t, "a", "Proxy A")
	env.whitelist(t, "b", "Proxy B")
	env.whitelist(t, "c", "Proxy C")
	env.register(t, "TSLA", "a", prio(1))
	env.register(t, "TSLA", "b", prio(2))
	env.register(t, "TSLA", "c", prio(3))

	err := env.hub.RemoveSource(env.ctx, owner, "GOOG", "a")
	assert.ErrorIs(t, err, hub.ErrSymbolNotRegistered)

	err = env.hub.RemoveSource(env.ctx, owner, "TSLA", "ghost")
	assert.ErrorIs(t, err, hub.ErrProxyNotRegistered)

	require.NoError(t, env.hub.RemoveSource(env.ctx, owner, "TSLA", "b"))

	res, err := env.hub.GetSources(env.ctx, "TSLA", "")
	require.NoError(t, err)
	require.Len(t, res.Proxies, 2)
	assert.Equal(t, "a", res.Proxies[0].Proxy.Address)
	assert.Equal(t, "c", res.Proxies[1].Proxy.Address)
}

func TestAssetSymbolMap(t *testing.T) {
	env := newTestEnv(t)
	env.whitelist(t, "a", "Proxy A")
	env.register(t, "TSLA", "a", nil)

	err := env.hub.InsertAssetSymbolMap(env.ctx, "intruder", []hub.MapEntry{{AssetID: "token1", Symbol: "TSLA"}})
	assert.ErrorIs(t, err, hub.ErrUnauthorized)

	require.NoError(t, env.hub.InsertAssetSymbolMap(env.ctx, owner, []hub.MapEntry{
		{AssetID: "token1", Symbol: "TSLA"},
		{AssetID: "token2", Symbol: "TSLA"},
	}))

	// query by asset id goes through the mapping
	res, err := env.hub.GetSources(env.ctx, "", "token2")
	require.NoError(t, err)
	assert.Equal(t, "TSLA", res.Symbol)

	_, err = env.hub.GetSources(env.ctx, "", "unknown-token")
	assert.ErrorIs(t, err, hub.ErrMappingNotFound)

	// upsert overwrites key by key, including any cached translation
	require.NoError(t, env.hub.InsertAssetSymbolMap(env.ctx, owner, []hub.MapEntry{
		{AssetID: "token2", Symbol: "GOOG"},
	}))
	_, err = env.hub.GetSources(env.ctx, "", "token2")
	assert.ErrorIs(t, err, hub.ErrSymbolNotRegistered) // GOOG has no sources

	env.register(t, "GOOG", "a", nil)
	res, err = env.hub.GetSources(env.ctx, "", "token2")
	require.NoError(t, err)
	assert.Equal(t, "GOOG", res.Symbol)
}

// snapshotSources reads the raw stored bytes of one symbol's source list
func snapshotSources(t *testing.T, env *testEnv, symbol string) string {
	t.Helper()
	raw, err := env.db.Read(env.ctx, []byte("sources/"+symbol))
	require.NoError(t, err)
	return string(raw)
}
