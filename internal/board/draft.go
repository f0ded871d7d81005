package board

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoboard/internal/service"
)

// Defaults for a new todo.
const (
	DefaultStartTime = "10:30 AM"
	DefaultEndTime   = "12:00 PM"
)

var (
	// ErrTitleRequired is returned when a draft has an empty title.
	ErrTitleRequired = errors.New("title is required")

	// ErrNoDraft is returned when submitting without a staged draft.
	ErrNoDraft = errors.New("no draft in progress")
)

// DraftMode says what submitting a draft does.
type DraftMode int

const (
	DraftCreate DraftMode = iota
	DraftEdit
)

// Draft is a staged, detached copy of a todo being created or edited.
// Changing it never touches the list; only Submit sends it.
type Draft struct {
	Mode DraftMode
	ID   int64

	Title        string
	Description  *string
	Completed    bool
	Color        service.Color
	StartTime    *string
	EndTime      *string
	Date         *string
	AssignedToID *int64
}

// NewDraft returns a create draft with the default values for date.
func NewDraft(date string) Draft {
	return Draft{
		Mode:      DraftCreate,
		Color:     service.DefaultColor,
		StartTime: service.String(DefaultStartTime),
		EndTime:   service.String(DefaultEndTime),
		Date:      service.String(date),
	}
}

// DraftFrom returns an edit draft initialized from t. A todo without a color
// gets DefaultColor, which is what the backend assumes for it.
func DraftFrom(t service.Todo) Draft {
	c := t.Clone()
	if c.Color == "" {
		c.Color = service.DefaultColor
	}
	return Draft{
		Mode:         DraftEdit,
		ID:           c.ID,
		Title:        c.Title,
		Description:  c.Description,
		Completed:    c.Completed,
		Color:        c.Color,
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		Date:         c.Date,
		AssignedToID: c.AssignedToID,
	}
}

// Validate checks the draft before it is sent.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return ErrTitleRequired
	}
	if !d.Color.Valid() {
		return fmt.Errorf("invalid color: %s", d.Color)
	}
	if d.Date != nil && *d.Date != "" {
		if _, err := time.Parse(DateLayout, *d.Date); err != nil {
			return fmt.Errorf("invalid date: %s (want YYYY-MM-DD)", *d.Date)
		}
	}
	return nil
}

// CreatePayload is the body for creating the drafted todo.
func (d Draft) CreatePayload() service.TodoCreate {
	c := d.clone()
	return service.TodoCreate{
		Title:        strings.TrimSpace(c.Title),
		Description:  c.Description,
		Completed:    service.Bool(c.Completed),
		Color:        service.ColorPtr(c.Color),
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		Date:         c.Date,
		AssignedToID: c.AssignedToID,
	}
}

// UpdatePayload is the body for updating the drafted todo. It carries every
// field the draft holds as staged, so an unchanged draft reproduces the
// original.
func (d Draft) UpdatePayload() service.TodoUpdate {
	c := d.clone()
	return service.TodoUpdate{
		Title:        service.String(c.Title),
		Description:  c.Description,
		Completed:    service.Bool(c.Completed),
		Color:        service.ColorPtr(c.Color),
		StartTime:    c.StartTime,
		EndTime:      c.EndTime,
		Date:         c.Date,
		AssignedToID: c.AssignedToID,
	}
}

func (d Draft) clone() Draft {
	out := d
	out.Description = copyString(d.Description)
	out.StartTime = copyString(d.StartTime)
	out.EndTime = copyString(d.EndTime)
	out.Date = copyString(d.Date)
	if d.AssignedToID != nil {
		out.AssignedToID = service.Int64(*d.AssignedToID)
	}
	return out
}

func copyString(s *string) *string {
	if s == nil {
		return nil
	}
	return service.String(*s)
}

// BeginCreate stages a create draft dated on the active query's date.
func (o *Orchestrator) BeginCreate() Draft {
	o.mu.Lock()
	d := NewDraft(o.query.Date)
	staged := d.clone()
	o.draft = &staged
	o.mu.Unlock()

	o.notify()
	return d
}

// BeginEdit stages an edit draft copied from the todo with id. The todo is
// taken from the list when loaded, otherwise fetched.
func (o *Orchestrator) BeginEdit(ctx context.Context, id int64) (Draft, error) {
	todo, ok := o.findTodo(id)
	if !ok {
		fetched, err := o.svc.GetTodo(ctx, id)
		if err != nil {
			o.recordError(err)
			return Draft{}, err
		}
		todo = fetched
	}

	d := DraftFrom(todo)
	o.mu.Lock()
	staged := d.clone()
	o.draft = &staged
	o.mu.Unlock()

	o.notify()
	return d, nil
}

// Draft returns the staged draft, if any.
func (o *Orchestrator) Draft() (Draft, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.draft == nil {
		return Draft{}, false
	}
	return o.draft.clone(), true
}

// Cancel discards the staged draft without any request.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	o.draft = nil
	o.mu.Unlock()
	o.notify()
}

// Submit validates d and issues a create or update for it. On success the
// staged draft is cleared and the list refetched. On failure the draft stays
// staged so it can be corrected.
func (o *Orchestrator) Submit(ctx context.Context, d Draft) (service.Todo, error) {
	if err := d.Validate(); err != nil {
		return service.Todo{}, err
	}

	var (
		todo service.Todo
		err  error
	)
	switch d.Mode {
	case DraftCreate:
		todo, err = o.Create(ctx, d.CreatePayload())
	case DraftEdit:
		todo, err = o.Update(ctx, d.ID, d.UpdatePayload())
	default:
		return service.Todo{}, fmt.Errorf("unknown draft mode: %d", d.Mode)
	}
	if err != nil {
		return service.Todo{}, err
	}

	o.mu.Lock()
	o.draft = nil
	o.mu.Unlock()
	o.notify()
	return todo, nil
}
