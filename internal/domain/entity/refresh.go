package entity

import "time"

// RefreshStatus is the outcome of refreshing one address.
type RefreshStatus string

const (
	RefreshStatusSuccess     RefreshStatus = "success"
	RefreshStatusError       RefreshStatus = "error"
	RefreshStatusRateLimited RefreshStatus = "rate_limited"
)

// RefreshResult records what happened to one address during a refresh.
type RefreshResult struct {
	AddressID string        `json:"id"`
	Name      string        `json:"name"`
	Address   string        `json:"address"`
	Chain     Chain         `json:"chain"`
	Status    RefreshStatus `json:"status"`
	Error     string        `json:"error,omitempty"`
	RetryAt   *time.Time    `json:"retryAt,omitempty"`
}

// RefreshReport is returned once every address in a refresh-all has settled.
type RefreshReport struct {
	StartedAt   time.Time       `json:"startedAt"`
	CompletedAt time.Time       `json:"completedAt"`
	Succeeded   int             `json:"succeeded"`
	Failed      int             `json:"failed"`
	RateLimited int             `json:"rateLimited"`
	Results     []RefreshResult `json:"results"`
}

// EventType names a refresh lifecycle event.
type EventType string

const (
	EventAddressRefreshed     EventType = "address.refreshed"
	EventAddressRefreshFailed EventType = "address.refresh_failed"
	EventRefreshStarted       EventType = "refresh.started"
	EventRefreshCompleted     EventType = "refresh.completed"
)

// RefreshEvent is published on the event bus as refreshes progress.
type RefreshEvent struct {
	Type       EventType      `json:"type"`
	OccurredAt time.Time      `json:"occurredAt"`
	Result     *RefreshResult `json:"result,omitempty"`
	Report     *RefreshReport `json:"report,omitempty"`
}
