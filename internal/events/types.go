// Package events is a channel-based pub-sub bus carrying progress events from
// the integrity gates. The surrounding runner subscribes to observe remote
// metadata refreshes without this layer owning any output surface.
package events

import (
	"time"

	"github.com/aristath/pipeline/internal/product"
)

// Event is the base interface for all events.
type Event interface {
	EventType() string
	RunID() string
}

// Topic constants
const (
	TopicSync = "sync"
)

// Event type constants
const (
	EventTypeSyncStarted      = "sync.started"
	EventTypeProductRefreshed = "sync.product_refreshed"
	EventTypeFetchFailed      = "sync.fetch_failed"
	EventTypeSyncCompleted    = "sync.completed"
)

// SyncStartedEvent is published once per sync run, before any fetch is
// dispatched.
type SyncStartedEvent struct {
	Run       string
	Products  int // Number of remote-capable products to refresh
	Timestamp time.Time
}

func (e SyncStartedEvent) EventType() string { return EventTypeSyncStarted }
func (e SyncStartedEvent) RunID() string     { return e.Run }

// ProductRefreshedEvent is published after a product's metadata is fetched.
type ProductRefreshedEvent struct {
	Run       string
	Product   string
	Metadata  product.Metadata
	Timestamp time.Time
}

func (e ProductRefreshedEvent) EventType() string { return EventTypeProductRefreshed }
func (e ProductRefreshedEvent) RunID() string     { return e.Run }

// FetchFailedEvent is published for each fetch that fails. Several may be
// published per run: workers already in flight when the first failure cancels
// the pool can still fail and report. Only the first failure surfaces as the
// sync error.
type FetchFailedEvent struct {
	Run       string
	Product   string
	Err       error
	Timestamp time.Time
}

func (e FetchFailedEvent) EventType() string { return EventTypeFetchFailed }
func (e FetchFailedEvent) RunID() string     { return e.Run }

// SyncCompletedEvent is published when every fetch succeeded.
type SyncCompletedEvent struct {
	Run       string
	Products  int
	Duration  time.Duration
	Timestamp time.Time
}

func (e SyncCompletedEvent) EventType() string { return EventTypeSyncCompleted }
func (e SyncCompletedEvent) RunID() string     { return e.Run }
