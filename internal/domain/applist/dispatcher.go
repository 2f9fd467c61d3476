package applist

import (
	"slices"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/switcher/internal/infrastructure/logging"
	"github.com/GriffinCanCode/switcher/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/switcher/internal/shared/id"
	"github.com/GriffinCanCode/switcher/internal/shared/types"
)

// Change describes one accepted transition
type Change struct {
	Revision   uint64         `json:"revision"`
	RevisionID id.RevisionID  `json:"revision_id"`
	Kind       Kind           `json:"kind"`
	Snapshot   types.Snapshot `json:"snapshot"`
}

// Dispatcher owns the live snapshot and applies events to it one at a time
type Dispatcher struct {
	dispatchMu sync.Mutex // Serialises Dispatch, including subscriber delivery

	mu         sync.RWMutex
	current    types.Snapshot // Protected by mu
	revision   uint64         // Protected by mu
	revisionID id.RevisionID  // Protected by mu

	subMu   sync.Mutex
	subs    map[uint64]func(Change) // Protected by subMu
	nextSub uint64                  // Protected by subMu

	clock   func() time.Time
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewDispatcher creates a dispatcher whose live state starts at initial
func NewDispatcher(initial types.Snapshot) *Dispatcher {
	if initial.Apps == nil {
		initial.Apps = []types.AppEntry{}
	}
	return &Dispatcher{
		current:    initial.Clone(),
		revisionID: id.NewRevisionID(),
		subs:       make(map[uint64]func(Change)),
		clock:      time.Now,
		logger:     logging.NewNop(),
	}
}

// WithLogger sets the logger
func (d *Dispatcher) WithLogger(logger *logging.Logger) *Dispatcher {
	d.logger = logger.Named("dispatcher")
	return d
}

// WithMetrics adds metrics tracking to the dispatcher
func (d *Dispatcher) WithMetrics(metrics *monitoring.Metrics) *Dispatcher {
	d.metrics = metrics
	if metrics != nil {
		metrics.SetAppStats(d.current.Stats())
	}
	return d
}

// WithClock replaces the clock used to stamp time-dependent events
func (d *Dispatcher) WithClock(clock func() time.Time) *Dispatcher {
	d.clock = clock
	return d
}

// Dispatch applies event to the live snapshot. On success the new snapshot
// becomes live and every subscriber is called with it before Dispatch
// returns. On error the live snapshot is unchanged.
//
// Subscribers must not call Dispatch.
func (d *Dispatcher) Dispatch(event Event) (types.Snapshot, error) {
	change, err := d.DispatchChange(event)
	return change.Snapshot, err
}

// DispatchChange is Dispatch that also reports the revision the event
// produced. On error it returns the unchanged live state.
func (d *Dispatcher) DispatchChange(event Event) (Change, error) {
	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	event = d.stamp(event)
	kind := kindOf(event)
	timer := monitoring.NewTimer(d.metrics, string(kind))

	d.mu.Lock()
	next, err := Apply(d.current, event)
	if err != nil {
		d.mu.Unlock()
		timer.Stop(monitoring.StatusRejected)
		d.logger.Warn("Event rejected",
			zap.String("kind", string(kind)),
			zap.Error(err),
		)
		current := d.Current()
		current.Kind = kind
		return current, err
	}

	d.current = next
	d.revision++
	d.revisionID = id.NewRevisionID()
	change := Change{
		Revision:   d.revision,
		RevisionID: d.revisionID,
		Kind:       kind,
		Snapshot:   next.Clone(),
	}
	d.mu.Unlock()

	timer.Stop(monitoring.StatusApplied)
	stats := next.Stats()
	if d.metrics != nil {
		d.metrics.SetAppStats(stats)
		d.metrics.SetRevision(change.Revision)
	}
	d.logger.Debug("Event applied",
		zap.String("kind", string(kind)),
		zap.Uint64("revision", change.Revision),
		zap.String("revision_id", change.RevisionID.String()),
		zap.Int("apps", stats.TotalApps),
		zap.Int("installed", stats.InstalledApps),
	)

	d.notify(change)
	result := change
	result.Snapshot = change.Snapshot.Clone()
	return result, nil
}

// stamp fills in clock-dependent payloads the caller left empty
func (d *Dispatcher) stamp(event Event) Event {
	if e, ok := event.(MaybeLaterClicked); ok && e.At.IsZero() {
		e.At = d.clock()
		return e
	}
	return event
}

// Snapshot returns a copy of the live snapshot
func (d *Dispatcher) Snapshot() types.Snapshot {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.current.Clone()
}

// Current returns the live snapshot with its revision
func (d *Dispatcher) Current() Change {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Change{
		Revision:   d.revision,
		RevisionID: d.revisionID,
		Snapshot:   d.current.Clone(),
	}
}

// Revision returns the number of accepted events
func (d *Dispatcher) Revision() uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.revision
}

// Subscribe registers fn to be called after every accepted event.
// The returned function removes the subscription.
func (d *Dispatcher) Subscribe(fn func(Change)) func() {
	d.subMu.Lock()
	key := d.nextSub
	d.nextSub++
	d.subs[key] = fn
	d.subMu.Unlock()

	return func() {
		d.subMu.Lock()
		delete(d.subs, key)
		d.subMu.Unlock()
	}
}

// notify delivers change to subscribers in subscription order
func (d *Dispatcher) notify(change Change) {
	d.subMu.Lock()
	keys := make([]uint64, 0, len(d.subs))
	fns := make(map[uint64]func(Change), len(d.subs))
	for key, fn := range d.subs {
		keys = append(keys, key)
		fns[key] = fn
	}
	d.subMu.Unlock()

	slices.Sort(keys)
	for _, key := range keys {
		fns[key](change)
	}
}
