package server

import (
	"tokenview/pkg/chains"
	"tokenview/pkg/detail"
	"tokenview/pkg/models"
	"tokenview/pkg/watcher"
)

// TokenView is the composed detail view served to headless clients. While
// Loading is true only Address and Error are meaningful.
type TokenView struct {
	Loading      bool                 `json:"loading"`
	Address      string               `json:"address"`
	Error        string               `json:"error,omitempty"`
	Display      *detail.DisplayModel `json:"display,omitempty"`
	Network      *chains.Info         `json:"network,omitempty"`
	Scope        string               `json:"scope"`
	Warning      string               `json:"warning"`
	Gate         string               `json:"gate"`
	Verified     bool                 `json:"verified"`
	Favorited    bool                 `json:"favorited"`
	ShareURL     string               `json:"share_url,omitempty"`
	Price        *float64             `json:"price,omitempty"`
	PriceHistory []models.PricePoint  `json:"price_history,omitempty"`
}

func (s *Server) compose(address string, identity models.Identity, remote models.RemoteDetail, err error) TokenView {
	view := TokenView{Address: address, Scope: s.watcher.Filter().Scope()}
	if err != nil || !identity.Resolved() {
		view.Loading = true
		if err != nil {
			view.Error = err.Error()
		}
		return view
	}

	_, userAdded := s.opts.Chain.UserToken(address)
	warning := s.opts.Classifier.Classify(address)
	gate := detail.NewGate(warning, userAdded)

	dm := s.opts.Reconciler.Reconcile(detail.Input{Identity: identity, Remote: remote, UserAdded: userAdded})

	view.Address = identity.Address
	view.Display = &dm
	view.Warning = warning.String()
	view.Gate = gate.State().String()
	view.Verified = gate.BadgeVisible()
	view.Favorited = s.opts.Favorites.IsFavorited(identity.Address)
	view.Price = remote.Price
	view.PriceHistory = remote.PriceHistory
	if info, ok := chains.Lookup(identity.ChainID); ok {
		view.Network = &info
	}
	if dm.CanShare() {
		view.ShareURL = detail.TweetURL(dm.Name, dm.Symbol, identity.Address)
	}
	return view
}

type wireMessage struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

type wireResult struct {
	Session uint64      `json:"session"`
	Value   interface{} `json:"value,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// toWire flattens error fields into strings for JSON clients.
func toWire(event watcher.Event) wireMessage {
	msg := wireMessage{Type: string(event.Type), Data: event.Data}
	switch data := event.Data.(type) {
	case models.IdentityData:
		msg.Data = wireResult{Session: data.Session, Value: data.Identity, Error: errString(data.Err)}
	case models.RemoteData:
		msg.Data = wireResult{Session: data.Session, Value: data.Detail, Error: errString(data.Err)}
	}
	return msg
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
