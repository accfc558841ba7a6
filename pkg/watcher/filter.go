package watcher

import (
	"sync"

	"tokenview/pkg/chains"
)

// NetworkFilter is the process-wide network scope for remote queries.
type NetworkFilter struct {
	mu      sync.RWMutex
	chainID int64
}

func NewNetworkFilter(chainID int64) *NetworkFilter {
	return &NetworkFilter{chainID: chainID}
}

func (f *NetworkFilter) ChainID() int64 {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.chainID
}

// Scope is the data API name of the selected network.
func (f *NetworkFilter) Scope() string {
	return chains.ScopeName(f.ChainID())
}

func (f *NetworkFilter) Set(chainID int64) {
	f.mu.Lock()
	f.chainID = chainID
	f.mu.Unlock()
}

// Cycle moves to the next supported network and returns it.
func (f *NetworkFilter) Cycle() int64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.chainID = chains.Next(f.chainID)
	return f.chainID
}
