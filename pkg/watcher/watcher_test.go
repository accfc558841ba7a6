package watcher

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"tokenview/pkg/config"
	"tokenview/pkg/models"
	"tokenview/pkg/rpc"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

const (
	usdc = "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"
	weth = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"
)

type MockDataSource struct {
	mock.Mock
}

func (m *MockDataSource) FetchIdentity(ctx context.Context, chain config.ChainConfig, address string) (models.Identity, error) {
	args := m.Called(ctx, chain, address)
	return args.Get(0).(models.Identity), args.Error(1)
}

func (m *MockDataSource) FetchRemoteDetail(ctx context.Context, baseURL, address, scope string) (models.RemoteDetail, error) {
	args := m.Called(ctx, baseURL, address, scope)
	return args.Get(0).(models.RemoteDetail), args.Error(1)
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func newTestWatcher(ds DataSource) *Watcher {
	w := NewWatcher(config.GlobalConfig{DataAPIURL: "http://data.test", IdentityTimeoutSeconds: 5}, NewNetworkFilter(1), quietLogger(), nil)
	w.SetDataSource(ds)
	return w
}

var mainnet = config.ChainConfig{Name: "Ethereum", RPCURLs: []string{"http://rpc.test"}, ChainID: 1}

func strPtr(s string) *string { return &s }

func floatPtr(f float64) *float64 { return &f }

// collect reads events until n of the wanted types arrived.
func collect(t *testing.T, sub Subscriber, n int, types ...EventType) []Event {
	t.Helper()
	want := map[EventType]bool{}
	for _, typ := range types {
		want[typ] = true
	}
	var out []Event
	timeout := time.After(2 * time.Second)
	for len(out) < n {
		select {
		case ev := <-sub:
			if want[ev.Type] {
				out = append(out, ev)
			}
		case <-timeout:
			t.Fatalf("timed out waiting for events, got %d of %d", len(out), n)
		}
	}
	return out
}

func TestSubscribeUnsubscribe(t *testing.T) {
	w := newTestWatcher(new(MockDataSource))
	sub := w.Subscribe()
	assert.NotNil(t, sub)

	w.mu.RLock()
	assert.Equal(t, 1, len(w.subscribers))
	w.mu.RUnlock()

	w.Unsubscribe(sub)
	w.mu.RLock()
	assert.Equal(t, 0, len(w.subscribers))
	w.mu.RUnlock()

	_, open := <-sub
	assert.False(t, open)
}

func TestWatch_FiresBothFetches(t *testing.T) {
	ds := new(MockDataSource)
	ds.On("FetchIdentity", mock.Anything, mainnet, usdc).
		Return(models.Identity{Address: usdc, Name: "USD Coin", Symbol: "USDC", ChainID: 1}, nil)
	ds.On("FetchRemoteDetail", mock.Anything, "http://data.test", usdc, "ETHEREUM").
		Return(models.RemoteDetail{Name: strPtr("USD Coin")}, nil)

	w := newTestWatcher(ds)
	sub := w.Subscribe()

	session := w.Watch(usdc, mainnet)
	assert.Equal(t, uint64(1), session)

	events := collect(t, sub, 2, EventIdentityResolved, EventRemoteUpdated)
	for _, ev := range events {
		switch data := ev.Data.(type) {
		case models.IdentityData:
			assert.Equal(t, session, data.Session)
			assert.Equal(t, "USDC", data.Identity.Symbol)
			assert.NoError(t, data.Err)
		case models.RemoteData:
			assert.Equal(t, session, data.Session)
			assert.Equal(t, "ETHEREUM", data.Scope)
		default:
			t.Fatalf("unexpected event data %T", ev.Data)
		}
	}

	cur := w.Current()
	require.NotNil(t, cur.Identity)
	require.NotNil(t, cur.Remote)
	assert.Equal(t, usdc, cur.Address)
	ds.AssertExpectations(t)
}

func TestWatch_DropsSupersededResults(t *testing.T) {
	release := make(chan time.Time)
	ds := new(MockDataSource)
	ds.On("FetchIdentity", mock.Anything, mainnet, usdc).
		WaitUntil(release).
		Return(models.Identity{Address: usdc, Name: "USD Coin", Symbol: "USDC"}, nil)
	ds.On("FetchIdentity", mock.Anything, mainnet, weth).
		Return(models.Identity{Address: weth, Name: "Wrapped Ether", Symbol: "WETH"}, nil)
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.RemoteDetail{}, nil)

	w := newTestWatcher(ds)
	sub := w.Subscribe()

	first := w.Watch(usdc, mainnet)
	second := w.Watch(weth, mainnet)
	assert.Greater(t, second, first)

	events := collect(t, sub, 1, EventIdentityResolved)
	assert.Equal(t, second, events[0].Data.(models.IdentityData).Session)

	close(release)
	time.Sleep(50 * time.Millisecond)

	cur := w.Current()
	require.NotNil(t, cur.Identity)
	assert.Equal(t, "WETH", cur.Identity.Identity.Symbol)
	for len(sub) > 0 {
		ev := <-sub
		if data, ok := ev.Data.(models.IdentityData); ok {
			assert.Equal(t, second, data.Session, "stale identity published")
		}
	}
}

func TestWatch_UserAddedResolvesLocally(t *testing.T) {
	ds := new(MockDataSource)
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.RemoteDetail{}, nil)

	chain := mainnet
	chain.Tokens = []config.TokenConfig{{Address: usdc, Name: "My Dollar", Symbol: "MYD", Decimals: 6}}

	w := newTestWatcher(ds)
	sub := w.Subscribe()
	w.Watch(usdc, chain)

	ev := collect(t, sub, 1, EventIdentityResolved)[0]
	data := ev.Data.(models.IdentityData)
	assert.Equal(t, "My Dollar", data.Identity.Name)
	assert.Equal(t, "MYD", data.Identity.Symbol)
	ds.AssertNotCalled(t, "FetchIdentity", mock.Anything, mock.Anything, mock.Anything)
}

func TestWatch_IdentityErrorIsPublished(t *testing.T) {
	ds := new(MockDataSource)
	ds.On("FetchIdentity", mock.Anything, mock.Anything, mock.Anything).
		Return(models.Identity{}, errors.New("rpc down"))
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.RemoteDetail{}, nil)

	w := newTestWatcher(ds)
	sub := w.Subscribe()
	w.Watch(usdc, mainnet)

	data := collect(t, sub, 1, EventIdentityResolved)[0].Data.(models.IdentityData)
	assert.EqualError(t, data.Err, "rpc down")
	assert.False(t, data.Identity.Resolved())
}

func TestWatch_IncompleteIdentityIsAnError(t *testing.T) {
	ds := new(MockDataSource)
	ds.On("FetchIdentity", mock.Anything, mock.Anything, usdc).
		Return(models.Identity{Address: usdc, Name: "USD Coin"}, rpc.ErrIncompleteIdentity)
	ds.On("FetchIdentity", mock.Anything, mock.Anything, weth).
		Return(models.Identity{Address: weth, Symbol: "WETH"}, nil)
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.RemoteDetail{}, nil)

	w := newTestWatcher(ds)
	sub := w.Subscribe()

	w.Watch(usdc, mainnet)
	data := collect(t, sub, 1, EventIdentityResolved)[0].Data.(models.IdentityData)
	assert.ErrorIs(t, data.Err, rpc.ErrIncompleteIdentity)
	assert.Equal(t, "USD Coin", data.Identity.Name)

	// a data source that reports no error for half the metadata is still caught
	w.Watch(weth, mainnet)
	data = collect(t, sub, 1, EventIdentityResolved)[0].Data.(models.IdentityData)
	assert.ErrorIs(t, data.Err, rpc.ErrIncompleteIdentity)

	// the user-added symbol completes it
	chain := mainnet
	chain.Tokens = []config.TokenConfig{{Address: usdc, Symbol: "USDC"}}
	w.Watch(usdc, chain)
	data = collect(t, sub, 1, EventIdentityResolved)[0].Data.(models.IdentityData)
	assert.NoError(t, data.Err)
	assert.Equal(t, "USDC", data.Identity.Symbol)
}

func TestRefreshRemote_UsesNetworkFilter(t *testing.T) {
	ds := new(MockDataSource)
	ds.On("FetchIdentity", mock.Anything, mock.Anything, mock.Anything).
		Return(models.Identity{Address: usdc, Name: "USD Coin", Symbol: "USDC"}, nil)
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, usdc, "ETHEREUM").
		Return(models.RemoteDetail{}, nil)
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, usdc, "OPTIMISM").
		Return(models.RemoteDetail{Name: strPtr("USD Coin (Optimism)")}, nil)

	w := newTestWatcher(ds)
	sub := w.Subscribe()
	session := w.Watch(usdc, mainnet)
	collect(t, sub, 1, EventRemoteUpdated)

	assert.Equal(t, int64(10), w.Filter().Cycle())
	w.RefreshRemote()

	data := collect(t, sub, 1, EventRemoteUpdated)[0].Data.(models.RemoteData)
	assert.Equal(t, session, data.Session)
	assert.Equal(t, "OPTIMISM", data.Scope)
	assert.Equal(t, session, w.Current().ID, "refresh keeps the session")
}

func TestRefreshRemote_CancelsPreviousScope(t *testing.T) {
	cancelled := make(chan struct{}, 1)
	ds := new(MockDataSource)
	ds.On("FetchIdentity", mock.Anything, mock.Anything, mock.Anything).
		Return(models.Identity{Address: usdc, Name: "USD Coin", Symbol: "USDC"}, nil)
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, usdc, "ETHEREUM").
		Run(func(args mock.Arguments) {
			ctx := args.Get(0).(context.Context)
			select {
			case <-ctx.Done():
				cancelled <- struct{}{}
			case <-time.After(2 * time.Second):
			}
		}).
		Return(models.RemoteDetail{MarketCap: floatPtr(5e9)}, nil)
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, usdc, "OPTIMISM").
		Return(models.RemoteDetail{MarketCap: floatPtr(1e6)}, nil)

	w := newTestWatcher(ds)
	sub := w.Subscribe()
	w.Watch(usdc, mainnet)
	collect(t, sub, 1, EventIdentityResolved)

	w.Filter().Cycle()
	w.RefreshRemote()

	select {
	case <-cancelled:
	case <-time.After(2 * time.Second):
		t.Fatal("mainnet remote query was not cancelled")
	}
	data := collect(t, sub, 1, EventRemoteUpdated)[0].Data.(models.RemoteData)
	assert.Equal(t, "OPTIMISM", data.Scope)

	time.Sleep(50 * time.Millisecond)
	cur := w.Current()
	require.NotNil(t, cur.Remote)
	assert.Equal(t, "OPTIMISM", cur.Remote.Scope)
	for len(sub) > 0 {
		if data, ok := (<-sub).Data.(models.RemoteData); ok {
			assert.Equal(t, "OPTIMISM", data.Scope, "result for a deselected network published")
		}
	}
}

func TestFetchRemote_DropsDeselectedScope(t *testing.T) {
	ds := new(MockDataSource)
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, usdc, "ETHEREUM").
		Return(models.RemoteDetail{MarketCap: floatPtr(5e9)}, nil)

	w := newTestWatcher(ds)
	sub := w.Subscribe()
	w.mu.Lock()
	w.session = Session{ID: 7, Address: usdc, Chain: mainnet}
	w.mu.Unlock()

	w.Filter().Set(10)
	w.fetchRemote(context.Background(), 7, usdc, "ETHEREUM")

	assert.Nil(t, w.Current().Remote)
	assert.Equal(t, 0, len(sub))
}

func TestResolve(t *testing.T) {
	ds := new(MockDataSource)
	ds.On("FetchIdentity", mock.Anything, mainnet, usdc).
		Return(models.Identity{Address: usdc, Name: "USD Coin", Symbol: "USDC"}, nil)
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, usdc, "ETHEREUM").
		Return(models.RemoteDetail{}, errors.New("data api down"))

	w := newTestWatcher(ds)
	id, remote, err := w.Resolve(context.Background(), usdc, mainnet)
	require.NoError(t, err)
	assert.Equal(t, "USDC", id.Symbol)
	assert.Nil(t, remote.Name)
	assert.Zero(t, w.Current().ID)
}

func TestResolve_IdentityError(t *testing.T) {
	ds := new(MockDataSource)
	ds.On("FetchIdentity", mock.Anything, mock.Anything, mock.Anything).
		Return(models.Identity{}, errors.New("not a token"))
	ds.On("FetchRemoteDetail", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(models.RemoteDetail{}, nil).Maybe()

	w := newTestWatcher(ds)
	_, _, err := w.Resolve(context.Background(), weth, mainnet)
	assert.EqualError(t, err, "not a token")
}

func TestPollingLoop(t *testing.T) {
	ds := new(MockDataSource)
	w := NewWatcher(config.GlobalConfig{RefreshIntervalSeconds: 1}, nil, quietLogger(), nil)
	w.SetDataSource(ds)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	time.Sleep(50 * time.Millisecond)
	cancel()
	w.Stop()
	w.Stop()

	// no session yet, nothing fetched
	ds.AssertNotCalled(t, "FetchRemoteDetail", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
