package viewmodel

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"fitprime-classes/internal/apperror"
	"fitprime-classes/internal/backend"
	"fitprime-classes/internal/model"
	"fitprime-classes/internal/normalize"
	"fitprime-classes/internal/schedule"
)

const (
	EmptyMessage     = "No hay clases disponibles."
	LoadErrorMessage = "Error al cargar las clases."
)

const defaultLoadTimeout = 20 * time.Second

// Fetcher reads class data from the backend.
type Fetcher interface {
	FetchClasses(ctx context.Context, q backend.ClassQuery) ([]backend.RawClass, error)
	FetchUserReservations(ctx context.Context, userID string) ([]backend.RawReservation, error)
}

// Commander performs reservation commands on the backend.
type Commander interface {
	CreateReservation(ctx context.Context, userID, classID string, at time.Time) (*backend.RawReservation, error)
	RecomputeCapacity(ctx context.Context, classID string) error
	CancelReservation(ctx context.Context, reservationID string) error
}

// Backend is everything the view-model needs from the REST API.
// *backend.Client satisfies it.
type Backend interface {
	Fetcher
	Commander
}

// Users exposes the current identity read-only.
type Users interface {
	Current() *schedule.User
}

// Journal records reserve and cancel attempts.
type Journal interface {
	RecordAction(ctx context.Context, record *model.ActionRecord) error
}

// Options tunes a ViewModel. Zero values fall back to defaults.
type Options struct {
	Location    *time.Location
	BookingLead time.Duration
	LoadTimeout time.Duration
	Now         func() time.Time
}

// State is a snapshot of what the class list shows.
type State struct {
	Version      uint64                `json:"version"`
	Loading      bool                  `json:"loading"`
	Filter       Filter                `json:"filter"`
	Items        []schedule.Projection `json:"items"`
	Error        string                `json:"error,omitempty"`
	EmptyMessage string                `json:"emptyMessage,omitempty"`
	LoadedAt     *time.Time            `json:"loadedAt,omitempty"`
}

// ViewModel runs the fetch, normalize, filter and project pipeline and
// holds the latest committed result. All methods are safe for concurrent use.
type ViewModel struct {
	backend Backend
	users   Users
	journal Journal
	norm    normalize.Normalizer
	loc     *time.Location
	lead    time.Duration
	timeout time.Duration
	now     func() time.Time

	mu         sync.Mutex
	generation uint64
	state      State
	nextSubID  int
	subs       map[int]chan State

	refreshes singleflight.Group
}

// New creates a ViewModel. journal may be nil.
func New(b Backend, users Users, journal Journal, opts Options) *ViewModel {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.BookingLead <= 0 {
		opts.BookingLead = schedule.DefaultBookingLead
	}
	if opts.LoadTimeout <= 0 {
		opts.LoadTimeout = defaultLoadTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &ViewModel{
		backend: b,
		users:   users,
		journal: journal,
		norm:    normalize.New(opts.Location),
		loc:     opts.Location,
		lead:    opts.BookingLead,
		timeout: opts.LoadTimeout,
		now:     opts.Now,
		state:   State{Items: []schedule.Projection{}},
		subs:    make(map[int]chan State),
	}
}

// State returns the latest committed snapshot.
func (vm *ViewModel) State() State {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snapshotLocked()
}

// Load replaces the filter and reloads the list. A load that is overtaken by
// a newer one returns apperror.ErrSuperseded and leaves the state alone.
func (vm *ViewModel) Load(ctx context.Context, f Filter) (State, error) {
	f = f.normalized()
	if err := f.Validate(); err != nil {
		return vm.State(), err
	}
	gen, _ := vm.begin(&f)
	return vm.run(ctx, gen, f)
}

// ClearFilters drops every filter and refetches.
func (vm *ViewModel) ClearFilters(ctx context.Context) (State, error) {
	return vm.Load(ctx, Filter{})
}

// Refresh reloads with the current filter. Concurrent callers share a
// single in-flight request, which outlives the cancellation of any one
// caller and is bounded by the load timeout only.
func (vm *ViewModel) Refresh(ctx context.Context) (State, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := vm.refreshes.Do("refresh", func() (any, error) {
		gen, f := vm.begin(nil)
		return vm.run(shared, gen, f)
	})
	st, _ := v.(State)
	return st, err
}

// begin opens a new generation and marks the state as loading. A nil f
// keeps the current filter.
func (vm *ViewModel) begin(f *Filter) (uint64, Filter) {
	vm.mu.Lock()
	vm.generation++
	gen := vm.generation
	if f != nil {
		vm.state.Filter = *f
	}
	vm.state.Loading = true
	vm.commitLocked()
	filter := vm.state.Filter
	vm.mu.Unlock()
	return gen, filter
}

func (vm *ViewModel) run(ctx context.Context, gen uint64, f Filter) (State, error) {
	ctx, cancel := context.WithTimeout(ctx, vm.timeout)
	defer cancel()

	user := vm.users.Current()
	items, err := vm.pipeline(ctx, f, user)

	vm.mu.Lock()
	if gen != vm.generation {
		snap := vm.snapshotLocked()
		vm.mu.Unlock()
		return snap, apperror.ErrSuperseded
	}

	vm.state.Loading = false
	if err != nil {
		log.Printf("Error loading classes (filter %s): %v", f, err)
		vm.state.Error = LoadErrorMessage
	} else {
		now := vm.now()
		vm.state.Items = items
		vm.state.Error = ""
		vm.state.EmptyMessage = ""
		if len(items) == 0 {
			vm.state.EmptyMessage = EmptyMessage
		}
		vm.state.LoadedAt = &now
	}
	snap := vm.commitLocked()
	vm.mu.Unlock()

	if err != nil {
		return snap, fmt.Errorf("load classes: %w", err)
	}
	return snap, nil
}

func (vm *ViewModel) pipeline(ctx context.Context, f Filter, user *schedule.User) ([]schedule.Projection, error) {
	q := f.query(vm.loc)
	if user != nil {
		q.ForUser = user.ID
	}
	raws, err := vm.backend.FetchClasses(ctx, q)
	if err != nil {
		return nil, err
	}
	sessions := vm.norm.Sessions(raws)
	bookable := schedule.Bookable(sessions, vm.now(), vm.lead)
	return schedule.ProjectAll(bookable, user), nil
}

// commitLocked bumps the version and hands the new snapshot to subscribers.
// Publishing under vm.mu keeps subscribers seeing versions in order.
func (vm *ViewModel) commitLocked() State {
	vm.state.Version++
	snap := vm.snapshotLocked()
	for _, ch := range vm.subs {
		select {
		case ch <- snap:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

func (vm *ViewModel) snapshotLocked() State {
	snap := vm.state
	snap.Items = append([]schedule.Projection(nil), vm.state.Items...)
	if snap.Items == nil {
		snap.Items = []schedule.Projection{}
	}
	return snap
}

// projection finds a session of the committed list and projects it for
// user. The committed projection may belong to whoever was signed in at the
// last load.
func (vm *ViewModel) projection(sessionID string, user *schedule.User) (schedule.Projection, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	for _, p := range vm.state.Items {
		if p.Session.ID == sessionID {
			return schedule.Project(p.Session, user), true
		}
	}
	return schedule.Projection{}, false
}

// Subscribe returns a channel of state snapshots and a function that ends
// the subscription. A slow reader only sees the latest snapshot.
func (vm *ViewModel) Subscribe() (<-chan State, func()) {
	ch := make(chan State, 1)

	vm.mu.Lock()
	id := vm.nextSubID
	vm.nextSubID++
	vm.subs[id] = ch
	vm.mu.Unlock()

	return ch, func() {
		vm.mu.Lock()
		defer vm.mu.Unlock()
		if _, ok := vm.subs[id]; ok {
			delete(vm.subs, id)
			close(ch)
		}
	}
}

// refreshAfterAction reloads the list once a command went through. It never
// joins an in-flight refresh, whose fetch may predate the command; its own
// generation supersedes that one. The command already succeeded, so a
// failed reload is only logged.
func (vm *ViewModel) refreshAfterAction(ctx context.Context) {
	gen, f := vm.begin(nil)
	if _, err := vm.run(ctx, gen, f); err != nil && !errors.Is(err, apperror.ErrSuperseded) {
		log.Printf("Warning: refresh after action failed: %v", err)
	}
}
