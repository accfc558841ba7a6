package watcher

// EventType defines the type of event being broadcast.
type EventType string

const (
	EventSessionStarted   EventType = "session_started"
	EventIdentityResolved EventType = "identity_resolved"
	EventRemoteUpdated    EventType = "remote_updated"
	EventFavoriteToggled  EventType = "favorite_toggled"
)

// Event represents a watcher event. Data is a SessionInfo, a
// models.IdentityData, a models.RemoteData or a FavoriteChange.
type Event struct {
	Type EventType
	Data interface{}
}

// SessionInfo announces a new watch session.
type SessionInfo struct {
	Session uint64 `json:"session"`
	Address string `json:"address"`
	Chain   string `json:"chain"`
	Scope   string `json:"scope"`
}

// FavoriteChange is published after a favorite toggle.
type FavoriteChange struct {
	Address   string `json:"address"`
	Favorited bool   `json:"favorited"`
}

// Subscriber is a channel that receives events.
type Subscriber chan Event
