package models

import (
	"time"
)

// Identity is the locally or on-chain resolved record for a token address.
// Name and Symbol are empty until resolved.
type Identity struct {
	Address  string `json:"address"`
	Name     string `json:"name"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	ChainID  int64  `json:"chain_id"`
}

// Resolved reports whether both name and symbol are known.
func (i Identity) Resolved() bool {
	return i.Name != "" && i.Symbol != ""
}

// RemoteToken is one entry of the remote record's token list.
type RemoteToken struct {
	Symbol  string `json:"symbol"`
	Chain   string `json:"chain"`
	Address string `json:"address"`
}

// PricePoint holds a timestamped USD price.
type PricePoint struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// RemoteDetail holds off-chain metadata for a token. Every field is optional;
// nil pointers mean the data API had nothing for it.
type RemoteDetail struct {
	Name         *string       `json:"name,omitempty"`
	Tokens       []RemoteToken `json:"tokens,omitempty"`
	Description  *string       `json:"description,omitempty"`
	HomepageURL  *string       `json:"homepage_url,omitempty"`
	TwitterName  *string       `json:"twitter_name,omitempty"`
	MarketCap    *float64      `json:"market_cap,omitempty"`
	Volume24h    *float64      `json:"volume_24h,omitempty"`
	PriceLow52W  *float64      `json:"price_low_52w,omitempty"`
	PriceHigh52W *float64      `json:"price_high_52w,omitempty"`
	Price        *float64      `json:"price,omitempty"`
	PriceHistory []PricePoint  `json:"price_history,omitempty"`
}

// IdentityData is the result of an identity lookup for one watch session.
type IdentityData struct {
	Session  uint64
	Identity Identity
	Err      error
}

// RemoteData is the result of a remote detail query for one watch session.
type RemoteData struct {
	Session uint64
	Address string
	Scope   string
	Detail  RemoteDetail
	Err     error
}

// ChainResult holds test results for a specific chain.
type ChainResult struct {
	Name            string      `json:"name"`
	ConfigChainID   int64       `json:"config_chain_id"`
	RPCs            []RPCResult `json:"rpcs"`
	Inconsistent    bool        `json:"inconsistent"`
	ChainIDUpdated  bool        `json:"chain_id_updated"`
	ObservedChainID int64       `json:"observed_chain_id,omitempty"`
}

// RPCResult holds test results for a specific RPC URL.
type RPCResult struct {
	URL       string `json:"url"`
	Status    string `json:"status"` // "ok" or "error"
	ChainID   int64  `json:"chain_id,omitempty"`
	LatencyMS int64  `json:"latency_ms,omitempty"`
	Error     string `json:"error,omitempty"`
}

// TestReport holds the results of the configuration test.
type TestReport struct {
	ConfigPath         string        `json:"config_path"`
	ValidStructure     bool          `json:"valid_structure"`
	StructureErrors    []string      `json:"structure_errors,omitempty"`
	ChainCount         int           `json:"chain_count"`
	TokenCount         int           `json:"token_count"`
	Chains             []ChainResult `json:"chains,omitempty"`
	InconsistentChains []string      `json:"inconsistent_chains,omitempty"`
	ConfigUpdated      bool          `json:"config_updated"`
	SaveError          string        `json:"save_error,omitempty"`
	DryRun             bool          `json:"dry_run"`
}
