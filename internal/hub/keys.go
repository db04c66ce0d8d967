package hub

// Key schema of the hub's keyValueDb namespace. Sources and asset mappings
// use string prefixes so range scans over raw key bytes enumerate them in
// ascending lexicographic order.
var (
	keyConfig    = []byte("config")
	keyWhitelist = []byte("whitelist")
)

const (
	prefixSources  = "sources/"
	prefixAssetMap = "assetmap/"
)

func sourcesKey(symbol string) []byte {
	return []byte(prefixSources + symbol)
}

func assetMapKey(assetID string) []byte {
	return []byte(prefixAssetMap + assetID)
}
