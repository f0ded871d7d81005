// Package board holds the view state of the todo board: the active query,
// the todo list fetched for it, the staged edit draft, and the team member
// cache. Presentation code renders State and calls the intent methods; it
// keeps no data rules of its own.
package board

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"

	"todoboard/internal/service"
)

// Service is the part of the resource client the board uses.
type Service interface {
	service.TodoService
	MemberLister
}

// ListStatus is the state of the todo list for the active query.
type ListStatus int

const (
	Idle ListStatus = iota
	Loading
	Loaded
	Error
)

func (s ListStatus) String() string {
	switch s {
	case Idle:
		return "idle"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Error:
		return "error"
	default:
		return "unknown"
	}
}

// ListState is the todo list for one query.
type ListState struct {
	Status ListStatus
	Query  Query
	Todos  []service.Todo
	Err    error
}

// State is a snapshot of the board.
type State struct {
	Query     Query
	List      ListState
	Draft     *Draft
	LastError error
}

// Ticket identifies one list fetch. Its response is applied only if Query is
// still the active query and no newer fetch has been applied.
type Ticket struct {
	Seq   uint64
	Query Query
}

// Confirmer asks the user to confirm deleting a todo.
type Confirmer func(todo service.Todo) bool

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.log = l }
}

// WithClock sets the clock used for "today".
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// Orchestrator coordinates the query, list fetches, mutations and drafts.
// It is safe for concurrent use; service calls are made without holding
// the lock.
type Orchestrator struct {
	svc     Service
	members *MemberCache
	log     *slog.Logger
	now     func() time.Time

	mu        sync.Mutex
	query     Query
	list      ListState
	draft     *Draft
	lastErr   error
	fetchErr  bool // lastErr came from a list fetch
	issued    uint64
	applied   uint64
	listeners map[int]func(State)
	nextSub   int
}

// New creates an orchestrator with the default query and an idle list.
func New(svc Service, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		svc:       svc,
		members:   NewMemberCache(svc),
		log:       slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		listeners: make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.query = DefaultQuery(o.now())
	o.list = ListState{Status: Idle, Query: o.query}
	return o
}

// Members returns the team member cache.
func (o *Orchestrator) Members() *MemberCache { return o.members }

// Today returns today's date in DateLayout.
func (o *Orchestrator) Today() string { return o.now().Format(DateLayout) }

// Now returns the orchestrator's clock reading.
func (o *Orchestrator) Now() time.Time { return o.now() }

// State returns a snapshot. Todos and the draft are deep copies.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.snapshotLocked()
}

// Query returns the active query.
func (o *Orchestrator) Query() Query {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.query.clone()
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the subscription.
func (o *Orchestrator) Subscribe(fn func(State)) func() {
	o.mu.Lock()
	defer o.mu.Unlock()
	id := o.nextSub
	o.nextSub++
	o.listeners[id] = fn
	return func() {
		o.mu.Lock()
		defer o.mu.Unlock()
		delete(o.listeners, id)
	}
}

// Mount loads the team member cache once and then fetches the active query.
// A member load failure is recorded but does not stop the list fetch. If a
// filter change already started a fetch while members were loading, Mount
// leaves it alone.
func (o *Orchestrator) Mount(ctx context.Context) error {
	memberErr := o.members.Load(ctx)
	if memberErr != nil {
		o.log.Debug("team member load failed", "error", memberErr)
		o.recordError(memberErr)
	}
	if t, ok := o.firstTicket(); ok {
		if _, err := o.Run(ctx, t); err != nil {
			return err
		}
	}
	return memberErr
}

// firstTicket issues the initial fetch of the active query, unless the list
// has left Idle.
func (o *Orchestrator) firstTicket() (Ticket, bool) {
	o.mu.Lock()
	if o.list.Status != Idle {
		o.mu.Unlock()
		o.log.Debug("mount fetch skipped, query already changed", "query", o.query.String())
		return Ticket{}, false
	}
	o.issued++
	t := Ticket{Seq: o.issued, Query: o.query.clone()}
	o.list = ListState{Status: Loading, Query: t.Query}
	o.mu.Unlock()

	o.notify()
	return t, true
}

// SetQuery makes q the active query. It invalidates the list and returns the
// ticket for the fetch that must follow. Setting the active query again is a
// no-op once it has been fetched.
func (o *Orchestrator) SetQuery(q Query) (Ticket, bool) {
	q = q.clone()
	o.mu.Lock()
	if q.Equal(o.query) && o.list.Status != Idle {
		o.mu.Unlock()
		return Ticket{}, false
	}
	o.query = q
	o.issued++
	t := Ticket{Seq: o.issued, Query: q}
	o.list = ListState{Status: Loading, Query: q}
	o.mu.Unlock()

	o.log.Debug("query changed", "query", q.String(), "seq", t.Seq)
	o.notify()
	return t, true
}

// RefreshTicket starts a refetch of the active query. The current todos stay
// visible while it loads.
func (o *Orchestrator) RefreshTicket() Ticket {
	o.mu.Lock()
	o.issued++
	t := Ticket{Seq: o.issued, Query: o.query}
	o.list.Status = Loading
	o.list.Err = nil
	o.mu.Unlock()

	o.notify()
	return t
}

// Run performs the fetch for t and applies the result if t is still current.
// applied is false when the response was discarded as stale; err is then nil.
func (o *Orchestrator) Run(ctx context.Context, t Ticket) (applied bool, err error) {
	todos, err := o.svc.ListTodos(ctx, t.Query.Filter())
	return o.apply(t, todos, err)
}

func (o *Orchestrator) apply(t Ticket, todos []service.Todo, err error) (bool, error) {
	o.mu.Lock()
	if !t.Query.Equal(o.query) || t.Seq <= o.applied {
		o.mu.Unlock()
		o.log.Debug("stale response discarded", "seq", t.Seq, "query", t.Query.String())
		return false, nil
	}
	o.applied = t.Seq
	if err != nil {
		o.list.Status = Error
		o.list.Err = err
		o.lastErr = err
		o.fetchErr = true
	} else {
		if todos == nil {
			todos = []service.Todo{}
		}
		o.list = ListState{Status: Loaded, Query: t.Query, Todos: todos}
		if o.fetchErr && o.applied == o.issued {
			o.lastErr = nil
			o.fetchErr = false
		}
	}
	o.mu.Unlock()

	o.notify()
	return true, err
}

// ApplyQuery sets q and fetches it.
func (o *Orchestrator) ApplyQuery(ctx context.Context, q Query) error {
	t, ok := o.SetQuery(q)
	if !ok {
		return nil
	}
	_, err := o.Run(ctx, t)
	return err
}

// SetDate changes the active date.
func (o *Orchestrator) SetDate(ctx context.Context, date string) error {
	return o.ApplyQuery(ctx, o.Query().WithDate(date))
}

// SetMember changes the member filter; nil clears it.
func (o *Orchestrator) SetMember(ctx context.Context, id *int64) error {
	return o.ApplyQuery(ctx, o.Query().WithMember(id))
}

// SetSearch changes the search term; "" clears it.
func (o *Orchestrator) SetSearch(ctx context.Context, search string) error {
	return o.ApplyQuery(ctx, o.Query().WithSearch(search))
}

// Refresh refetches the active query.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	_, err := o.Run(ctx, o.RefreshTicket())
	return err
}

// Create issues a create and then refetches the active query.
func (o *Orchestrator) Create(ctx context.Context, in service.TodoCreate) (service.Todo, error) {
	todo, err := o.svc.CreateTodo(ctx, in)
	if err != nil {
		o.mutationFailed("create", err)
		return service.Todo{}, err
	}
	o.mutated(ctx, "create", todo.ID)
	return todo, nil
}

// Update issues a partial update and then refetches the active query.
func (o *Orchestrator) Update(ctx context.Context, id int64, in service.TodoUpdate) (service.Todo, error) {
	todo, err := o.svc.UpdateTodo(ctx, id, in)
	if err != nil {
		o.mutationFailed("update", err)
		return service.Todo{}, err
	}
	o.mutated(ctx, "update", id)
	return todo, nil
}

// Toggle sets a todo's completed flag.
func (o *Orchestrator) Toggle(ctx context.Context, id int64, completed bool) (service.Todo, error) {
	return o.Update(ctx, id, service.TodoUpdate{Completed: service.Bool(completed)})
}

// Delete asks confirm first and deletes only when it agrees. A nil confirm
// counts as declined. The todo passed to confirm comes from the list, or
// carries only the id when the todo is not loaded.
func (o *Orchestrator) Delete(ctx context.Context, id int64, confirm Confirmer) (bool, error) {
	target, ok := o.findTodo(id)
	if !ok {
		target = service.Todo{ID: id}
	}
	if confirm == nil || !confirm(target) {
		o.log.Debug("delete declined", "id", id)
		return false, nil
	}
	if err := o.svc.DeleteTodo(ctx, id); err != nil {
		o.mutationFailed("delete", err)
		return false, err
	}
	o.mutated(ctx, "delete", id)
	return true, nil
}

// ClearError dismisses LastError.
func (o *Orchestrator) ClearError() {
	o.mu.Lock()
	o.lastErr = nil
	o.fetchErr = false
	o.mu.Unlock()
	o.notify()
}

// mutated refetches after a successful mutation. A refetch failure is
// recorded in the list state, not returned: the mutation itself succeeded.
func (o *Orchestrator) mutated(ctx context.Context, op string, id int64) {
	o.log.Debug("mutation applied", "op", op, "id", id)
	o.mu.Lock()
	o.lastErr = nil
	o.fetchErr = false
	o.mu.Unlock()
	if err := o.Refresh(ctx); err != nil {
		o.log.Debug("refetch after mutation failed", "op", op, "error", err)
	}
}

func (o *Orchestrator) mutationFailed(op string, err error) {
	o.log.Debug("mutation failed", "op", op, "error", err)
	o.recordError(err)
}

func (o *Orchestrator) recordError(err error) {
	o.mu.Lock()
	o.lastErr = err
	o.fetchErr = false
	o.mu.Unlock()
	o.notify()
}

func (o *Orchestrator) findTodo(id int64) (service.Todo, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for _, t := range o.list.Todos {
		if t.ID == id {
			return t.Clone(), true
		}
	}
	return service.Todo{}, false
}

func (o *Orchestrator) notify() {
	o.mu.Lock()
	if len(o.listeners) == 0 {
		o.mu.Unlock()
		return
	}
	snap := o.snapshotLocked()
	listeners := make([]func(State), 0, len(o.listeners))
	for _, fn := range o.listeners {
		listeners = append(listeners, fn)
	}
	o.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func (o *Orchestrator) snapshotLocked() State {
	st := State{
		Query:     o.query.clone(),
		List:      o.list,
		LastError: o.lastErr,
	}
	st.List.Query = o.list.Query.clone()
	if o.list.Todos != nil {
		st.List.Todos = make([]service.Todo, len(o.list.Todos))
		for i, t := range o.list.Todos {
			st.List.Todos[i] = t.Clone()
		}
	}
	if o.draft != nil {
		d := o.draft.clone()
		st.Draft = &d
	}
	return st
}

// Partition splits todos into active and completed, keeping order.
func Partition(todos []service.Todo) (active, completed []service.Todo) {
	for _, t := range todos {
		if t.Completed {
			completed = append(completed, t)
		} else {
			active = append(active, t)
		}
	}
	return active, completed
}
