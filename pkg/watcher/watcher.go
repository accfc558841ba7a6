package watcher

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"tokenview/pkg/config"
	"tokenview/pkg/metrics"
	"tokenview/pkg/models"
	"tokenview/pkg/rpc"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// ErrIdentityTimeout is reported when the identity lookup does not finish
// within the configured timeout.
var ErrIdentityTimeout = errors.New("identity lookup timed out")

// DataSource defines the interface for fetching data.
type DataSource interface {
	FetchIdentity(ctx context.Context, chain config.ChainConfig, address string) (models.Identity, error)
	FetchRemoteDetail(ctx context.Context, baseURL, address, scope string) (models.RemoteDetail, error)
}

// RealDataSource implements DataSource using the rpc package.
type RealDataSource struct{}

func (d *RealDataSource) FetchIdentity(ctx context.Context, chain config.ChainConfig, address string) (models.Identity, error) {
	return rpc.FetchIdentity(ctx, chain, address)
}

func (d *RealDataSource) FetchRemoteDetail(ctx context.Context, baseURL, address, scope string) (models.RemoteDetail, error) {
	return rpc.FetchRemoteDetail(ctx, baseURL, address, scope)
}

// Session is the state of the identifier currently being watched. Results of
// earlier sessions are never stored into it.
type Session struct {
	ID       uint64
	Address  string
	Chain    config.ChainConfig
	Identity *models.IdentityData
	Remote   *models.RemoteData
}

// Watcher fetches identity and remote detail for one identifier at a time and
// publishes the results to subscribers.
type Watcher struct {
	config     config.GlobalConfig
	filter     *NetworkFilter
	log        logrus.FieldLogger
	metrics    *metrics.Metrics
	dataSource DataSource

	subscribers  []Subscriber
	mu           sync.RWMutex
	session      Session
	cancel       context.CancelFunc
	// remoteCancel aborts the in-flight remote query; each refresh replaces it.
	remoteCancel context.CancelFunc
	stopChan     chan struct{}
	stopOnce     sync.Once
}

// NewWatcher creates a new Watcher instance. m may be nil.
func NewWatcher(globalCfg config.GlobalConfig, filter *NetworkFilter, log logrus.FieldLogger, m *metrics.Metrics) *Watcher {
	if filter == nil {
		filter = NewNetworkFilter(1)
	}
	return &Watcher{
		config:     globalCfg,
		filter:     filter,
		log:        log,
		metrics:    m,
		dataSource: &RealDataSource{},
		stopChan:   make(chan struct{}),
	}
}

// SetDataSource allows overriding the data source (useful for testing).
func (w *Watcher) SetDataSource(ds DataSource) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.dataSource = ds
}

func (w *Watcher) source() DataSource {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.dataSource
}

// Filter returns the network filter remote queries are scoped to.
func (w *Watcher) Filter() *NetworkFilter {
	return w.filter
}

// Subscribe adds a new subscriber and returns a channel to receive events.
func (w *Watcher) Subscribe() Subscriber {
	w.mu.Lock()
	defer w.mu.Unlock()
	ch := make(Subscriber, 100)
	w.subscribers = append(w.subscribers, ch)
	w.metrics.SetSubscribers(len(w.subscribers))
	return ch
}

// Unsubscribe removes a subscriber.
func (w *Watcher) Unsubscribe(ch Subscriber) {
	w.mu.Lock()
	defer w.mu.Unlock()
	for i, sub := range w.subscribers {
		if sub == ch {
			w.subscribers = append(w.subscribers[:i], w.subscribers[i+1:]...)
			close(ch)
			break
		}
	}
	w.metrics.SetSubscribers(len(w.subscribers))
}

// Publish sends event to every subscriber.
func (w *Watcher) Publish(event Event) {
	w.notify(event)
}

func (w *Watcher) notify(event Event) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	for _, sub := range w.subscribers {
		select {
		case sub <- event:
		default:
			w.log.WithField("event", event.Type).Warn("Dropping event for slow subscriber")
		}
	}
}

// Watch starts a new session for address on chain, superseding the previous
// one, and fires the identity and remote fetches concurrently.
func (w *Watcher) Watch(address string, chain config.ChainConfig) uint64 {
	address = strings.TrimSpace(address)

	w.mu.Lock()
	w.cancelLocked()
	ctx, cancel := context.WithCancel(context.Background())
	remoteCtx, remoteCancel := context.WithCancel(context.Background())
	id := w.session.ID + 1
	w.session = Session{ID: id, Address: address, Chain: chain}
	w.cancel = cancel
	w.remoteCancel = remoteCancel
	w.mu.Unlock()

	scope := w.filter.Scope()
	w.log.WithFields(logrus.Fields{"session": id, "address": address, "chain": chain.Name, "scope": scope}).Info("Watching token")
	w.notify(Event{Type: EventSessionStarted, Data: SessionInfo{Session: id, Address: address, Chain: chain.Name, Scope: scope}})

	go w.fetchIdentity(ctx, id, address, chain)
	go w.fetchRemote(remoteCtx, id, address, scope)
	return id
}

// cancelLocked aborts every fetch of the current session. w.mu must be held.
func (w *Watcher) cancelLocked() {
	if w.cancel != nil {
		w.cancel()
	}
	if w.remoteCancel != nil {
		w.remoteCancel()
	}
}

// Current returns a copy of the current session.
func (w *Watcher) Current() Session {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.session
}

// RefreshRemote re-queries remote detail for the current session using the
// current network filter. A query still in flight is cancelled.
func (w *Watcher) RefreshRemote() {
	scope := w.filter.Scope()

	w.mu.Lock()
	id, address := w.session.ID, w.session.Address
	if id == 0 {
		w.mu.Unlock()
		return
	}
	if w.remoteCancel != nil {
		w.remoteCancel()
	}
	ctx, cancel := context.WithCancel(context.Background())
	w.remoteCancel = cancel
	w.mu.Unlock()

	go w.fetchRemote(ctx, id, address, scope)
}

func (w *Watcher) identityTimeout() time.Duration {
	if w.config.IdentityTimeoutSeconds <= 0 {
		return config.DefaultIdentityTimeoutSeconds * time.Second
	}
	return time.Duration(w.config.IdentityTimeoutSeconds) * time.Second
}

// lookupIdentity resolves address from the user-added list when it has both
// name and symbol, otherwise from chain. User-added fields override on-chain
// values.
func (w *Watcher) lookupIdentity(ctx context.Context, address string, chain config.ChainConfig) (models.Identity, error) {
	local, userAdded := chain.UserToken(address)
	if userAdded && local.Name != "" && local.Symbol != "" {
		return models.Identity{
			Address:  address,
			Name:     local.Name,
			Symbol:   local.Symbol,
			Decimals: local.Decimals,
			ChainID:  chain.ChainID,
		}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, w.identityTimeout())
	defer cancel()

	start := time.Now()
	id, err := w.source().FetchIdentity(ctx, chain, address)
	w.metrics.ObserveFetch(metrics.KindIdentity, start, err)
	if err != nil && !errors.Is(err, rpc.ErrIncompleteIdentity) {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			err = ErrIdentityTimeout
		}
		return models.Identity{Address: address, ChainID: chain.ChainID}, err
	}
	if userAdded {
		if local.Name != "" {
			id.Name = local.Name
		}
		if local.Symbol != "" {
			id.Symbol = local.Symbol
		}
		if local.Decimals != 0 {
			id.Decimals = local.Decimals
		}
	}
	// a half-read identity is an error so the view can offer a retry
	if !id.Resolved() {
		if id.Address == "" {
			id.Address = address
		}
		return id, rpc.ErrIncompleteIdentity
	}
	return id, nil
}

func (w *Watcher) fetchIdentity(ctx context.Context, session uint64, address string, chain config.ChainConfig) {
	id, err := w.lookupIdentity(ctx, address, chain)
	if errors.Is(err, context.Canceled) {
		return
	}
	data := models.IdentityData{Session: session, Identity: id, Err: err}

	w.mu.Lock()
	stale := w.session.ID != session
	if !stale {
		w.session.Identity = &data
	}
	w.mu.Unlock()
	if stale {
		return
	}

	logger := w.log.WithFields(logrus.Fields{"session": session, "address": address})
	if err != nil {
		logger.WithError(err).Warn("Identity lookup failed")
	} else {
		logger.WithFields(logrus.Fields{"name": id.Name, "symbol": id.Symbol}).Debug("Identity resolved")
	}
	w.notify(Event{Type: EventIdentityResolved, Data: data})
}

func (w *Watcher) fetchRemote(ctx context.Context, session uint64, address, scope string) {
	start := time.Now()
	detail, err := w.source().FetchRemoteDetail(ctx, w.config.DataAPIURL, address, scope)
	w.metrics.ObserveFetch(metrics.KindRemote, start, err)
	if ctx.Err() != nil {
		return
	}
	data := models.RemoteData{Session: session, Address: address, Scope: scope, Detail: detail, Err: err}

	w.mu.Lock()
	// results for another session or a network no longer selected are dropped
	stale := w.session.ID != session || w.filter.Scope() != scope
	// a failed refresh keeps the last good detail
	if !stale && (err == nil || w.session.Remote == nil || w.session.Remote.Scope != scope) {
		w.session.Remote = &data
	}
	w.mu.Unlock()
	if stale {
		return
	}

	if err != nil {
		w.log.WithError(err).WithFields(logrus.Fields{"session": session, "scope": scope}).Warn("Remote detail query failed")
	}
	w.notify(Event{Type: EventRemoteUpdated, Data: data})
}

// Resolve fetches identity and remote detail for address concurrently without
// touching the current session. A remote failure is logged and yields an
// empty detail; an identity failure is returned.
func (w *Watcher) Resolve(ctx context.Context, address string, chain config.ChainConfig) (models.Identity, models.RemoteDetail, error) {
	var (
		identity models.Identity
		remote   models.RemoteDetail
	)
	scope := w.filter.Scope()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		identity, err = w.lookupIdentity(gctx, address, chain)
		return err
	})
	g.Go(func() error {
		start := time.Now()
		detail, err := w.source().FetchRemoteDetail(gctx, w.config.DataAPIURL, address, scope)
		w.metrics.ObserveFetch(metrics.KindRemote, start, err)
		if err != nil {
			w.log.WithError(err).WithField("address", address).Warn("Remote detail query failed")
			return nil
		}
		remote = detail
		return nil
	})
	if err := g.Wait(); err != nil {
		return identity, models.RemoteDetail{}, err
	}
	return identity, remote, nil
}

// Start begins the refresh loop.
func (w *Watcher) Start(ctx context.Context) {
	go w.pollingLoop(ctx)
}

// Stop stops the refresh loop and cancels in-flight fetches.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopChan)
		w.mu.Lock()
		w.cancelLocked()
		w.mu.Unlock()
	})
}

func (w *Watcher) pollingLoop(ctx context.Context) {
	if w.config.RefreshIntervalSeconds <= 0 {
		select {
		case <-w.stopChan:
		case <-ctx.Done():
		}
		return
	}

	ticker := time.NewTicker(time.Duration(w.config.RefreshIntervalSeconds) * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.RefreshRemote()
		case <-w.stopChan:
			return
		case <-ctx.Done():
			return
		}
	}
}
