// Package chains holds static display metadata for supported networks.
package chains

// Info describes how a network badge is drawn.
type Info struct {
	Label           string
	Color           string
	BackgroundColor string
}

var infos = map[int64]Info{
	10:    {Label: "Optimism", Color: "#FF0420", BackgroundColor: "#3A1015"},
	137:   {Label: "Polygon", Color: "#A457FF", BackgroundColor: "#2A1A40"},
	8453:  {Label: "Base", Color: "#0052FF", BackgroundColor: "#0A1A40"},
	42161: {Label: "Arbitrum", Color: "#28A0F0", BackgroundColor: "#0F2A3D"},
	42220: {Label: "Celo", Color: "#35D07F", BackgroundColor: "#10331F"},
}

// Lookup returns badge metadata for chainID. Mainnet has none, so no badge
// is drawn for it.
func Lookup(chainID int64) (Info, bool) {
	info, ok := infos[chainID]
	return info, ok
}

var scopes = map[int64]string{
	1:     "ETHEREUM",
	10:    "OPTIMISM",
	137:   "POLYGON",
	8453:  "BASE",
	42161: "ARBITRUM",
	42220: "CELO",
}

// ScopeName is the data API network scope for chainID. Unknown chains are
// queried as ETHEREUM.
func ScopeName(chainID int64) string {
	if name, ok := scopes[chainID]; ok {
		return name
	}
	return "ETHEREUM"
}

// Networks is the order the network filter cycles through.
var Networks = []int64{1, 10, 137, 42161, 8453, 42220}

// Next returns the network after chainID in Networks, wrapping around.
// Unknown chains move to the first entry.
func Next(chainID int64) int64 {
	for i, id := range Networks {
		if id == chainID {
			return Networks[(i+1)%len(Networks)]
		}
	}
	return Networks[0]
}
