package hub_test

import (
	"fmt"
	"testing"

	"github.com/LeJamon/goOracleHub/internal/hub"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListAllSourcesPagination(t *testing.T) {
	env := newTestEnv(t)
	env.whitelist(t, "a", "Proxy A")
	for _, sym := range []string{"TSLA", "AAPL", "AMZN"} {
		env.register(t, sym, "a", nil)
	}

	// listings come back in ascending symbol order regardless of
	// registration order
	page, err := env.hub.ListAllSources(env.ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, page, 3)
	assert.Equal(t, "AAPL", page[0].Symbol)
	assert.Equal(t, "AMZN", page[1].Symbol)
	assert.Equal(t, "TSLA", page[2].Symbol)

	// cursor walk with limit 1 reproduces the full list, each symbol
	// exactly once, and the cursor entry itself is never repeated
	var walked []string
	cursor := ""
	for {
		page, err := env.hub.ListAllSources(env.ctx, cursor, 1)
		require.NoError(t, err)
		if len(page) == 0 {
			break
		}
		for _, src := range page {
			walked = append(walked, src.Symbol)
		}
		cursor = page[len(page)-1].Symbol
	}
	assert.Equal(t, []string{"AAPL", "AMZN", "TSLA"}, walked)

	// a cursor past the last entry yields an empty page, not an error
	page, err = env.hub.ListAllSources(env.ctx, "ZZZZ", 0)
	require.NoError(t, err)
	assert.Empty(t, page)
}

func TestListAllSourcesDefaultLimit(t *testing.T) {
	env := newTestEnv(t)
	env.whitelist(t, "a", "Proxy A")
	for i := 0; i < hub.MaxPaginationLimit+2; i++ {
		env.register(t, fmt.Sprintf("SYM%02d", i), "a", nil)
	}

	// limit 0 falls back to the default page size
	page, err := env.hub.ListAllSources(env.ctx, "", 0)
	require.NoError(t, err)
	assert.Len(t, page, hub.DefaultPaginationLimit)

	// an oversized limit is clamped to the ceiling, not honored
	page, err = env.hub.ListAllSources(env.ctx, "", 500)
	require.NoError(t, err)
	assert.Len(t, page, hub.MaxPaginationLimit)
}

func TestListAssetSymbolMapPagination(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.hub.InsertAssetSymbolMap(env.ctx, owner, []hub.MapEntry{
		{AssetID: "token3", Symbol: "TSLA"},
		{AssetID: "token1", Symbol: "AAPL"},
		{AssetID: "token2", Symbol: "AMZN"},
	}))

	entries, err := env.hub.ListAssetSymbolMap(env.ctx, "", 0)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, hub.MapEntry{AssetID: "token1", Symbol: "AAPL"}, entries[0])
	assert.Equal(t, hub.MapEntry{AssetID: "token3", Symbol: "TSLA"}, entries[2])

	entries, err = env.hub.ListAssetSymbolMap(env.ctx, "token1", 1)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "token2", entries[0].AssetID)
}

func TestGetSourcesAnnotation(t *testing.T) {
	env := newTestEnv(t)
	env.whitelist(t, "a", "Proxy A")
	env.whitelist(t, "b", "Proxy B")
	env.register(t, "TSLA", "a", prio(1))
	env.register(t, "TSLA", "b", prio(2))

	require.NoError(t, env.hub.RemoveProxy(env.ctx, owner, "a"))

	res, err := env.hub.GetSources(env.ctx, "TSLA", "")
	require.NoError(t, err)
	require.Len(t, res.Proxies, 2)
	assert.Equal(t, hub.NoLongerWhitelistedName, res.Proxies[0].Proxy.ProviderName)
	assert.Equal(t, "Proxy B", res.Proxies[1].Proxy.ProviderName)
}
