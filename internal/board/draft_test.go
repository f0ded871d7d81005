package board

import (
	"context"
	"errors"
	"testing"

	"todoboard/internal/service"
)

func TestBeginCreate_Defaults(t *testing.T) {
	o, fake := newTestBoard(t)
	d := o.BeginCreate()

	if d.Mode != DraftCreate {
		t.Errorf("expected create mode, got %v", d.Mode)
	}
	if d.Color != service.ColorBlue {
		t.Errorf("expected blue, got %q", d.Color)
	}
	if service.Deref(d.StartTime) != "10:30 AM" || service.Deref(d.EndTime) != "12:00 PM" {
		t.Errorf("unexpected default times: %v %v", d.StartTime, d.EndTime)
	}
	if service.Deref(d.Date) != "2024-05-01" {
		t.Errorf("expected today's date, got %v", d.Date)
	}
	if d.Completed || d.AssignedToID != nil || d.Title != "" {
		t.Errorf("unexpected draft: %+v", d)
	}
	if staged, ok := o.Draft(); !ok || staged.Mode != DraftCreate {
		t.Error("expected draft staged")
	}
	if len(fake.Calls()) != 0 || len(fake.ListCalls()) != 0 {
		t.Error("beginning a draft must not send requests")
	}
}

func TestBeginCreate_UsesActiveDate(t *testing.T) {
	o, _ := newTestBoard(t)
	if err := o.SetDate(context.Background(), "2024-07-04"); err != nil {
		t.Fatalf("set date: %v", err)
	}
	if d := o.BeginCreate(); service.Deref(d.Date) != "2024-07-04" {
		t.Errorf("expected active date, got %v", d.Date)
	}
}

func TestSubmit_CreatePayload(t *testing.T) {
	o, fake := newTestBoard(t)
	d := o.BeginCreate()
	d.Title = "  Plan sprint  "
	d.Description = service.String("Q3 goals")
	d.Color = service.ColorGreen
	d.AssignedToID = service.Int64(2)

	if _, err := o.Submit(context.Background(), d); err != nil {
		t.Fatalf("submit: %v", err)
	}
	creates := fake.Creates()
	if len(creates) != 1 {
		t.Fatalf("expected 1 create, got %d", len(creates))
	}
	in := creates[0]
	if in.Title != "Plan sprint" {
		t.Errorf("expected trimmed title, got %q", in.Title)
	}
	if in.Color == nil || *in.Color != service.ColorGreen {
		t.Errorf("unexpected color: %v", in.Color)
	}
	if in.Completed == nil || *in.Completed {
		t.Errorf("expected completed=false, got %v", in.Completed)
	}
	if in.AssignedToID == nil || *in.AssignedToID != 2 {
		t.Errorf("unexpected assignee: %v", in.AssignedToID)
	}
	if _, ok := o.Draft(); ok {
		t.Error("expected draft cleared after submit")
	}
}

func TestSubmit_Validation(t *testing.T) {
	o, fake := newTestBoard(t)
	ctx := context.Background()

	d := o.BeginCreate()
	d.Title = "   "
	if _, err := o.Submit(ctx, d); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("expected ErrTitleRequired, got %v", err)
	}

	d.Title = "ok"
	d.Color = "orange"
	if _, err := o.Submit(ctx, d); err == nil {
		t.Error("expected invalid color error")
	}

	d.Color = service.ColorPink
	d.Date = service.String("05/01/2024")
	if _, err := o.Submit(ctx, d); err == nil {
		t.Error("expected invalid date error")
	}

	if len(fake.Calls()) != 0 {
		t.Errorf("invalid drafts must not send requests, got %v", fake.Calls())
	}
	if _, ok := o.Draft(); !ok {
		t.Error("expected draft to stay staged after validation failure")
	}
}

func TestCancel_NoRequest(t *testing.T) {
	o, fake := newTestBoard(t)
	todo := fake.AddTodo(todoOn("Keep", "2024-05-01"))
	if err := o.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}
	fetches := len(fake.ListCalls())
	calls := len(fake.Calls())

	d, err := o.BeginEdit(context.Background(), todo.ID)
	if err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	d.Title = "Changed"
	o.Cancel()

	if _, ok := o.Draft(); ok {
		t.Error("expected draft discarded")
	}
	if len(fake.Calls()) != calls || len(fake.ListCalls()) != fetches {
		t.Errorf("cancel must not send requests, got %v", fake.Calls())
	}
	if o.State().List.Todos[0].Title != "Keep" {
		t.Error("editing a draft must not touch the list")
	}
}

func TestEdit_UnchangedDraftReproducesOriginal(t *testing.T) {
	o, fake := newTestBoard(t)
	ctx := context.Background()
	member := fake.AddMember("Alice")
	original := fake.AddTodo(service.Todo{
		Title:        "Write report",
		Completed:    true,
		Color:        service.ColorPurple,
		StartTime:    service.String("09:00 AM"),
		EndTime:      service.String("10:00 AM"),
		Date:         service.String("2024-05-01"),
		AssignedToID: service.Int64(member.ID),
	})
	if err := o.Mount(ctx); err != nil {
		t.Fatalf("mount: %v", err)
	}

	d, err := o.BeginEdit(ctx, original.ID)
	if err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if _, err := o.Submit(ctx, d); err != nil {
		t.Fatalf("submit: %v", err)
	}

	updates := fake.Updates()
	if len(updates) != 1 {
		t.Fatalf("expected 1 update, got %d", len(updates))
	}
	u := updates[0]
	if service.Deref(u.Title) != original.Title {
		t.Errorf("title: want %q got %v", original.Title, u.Title)
	}
	if u.Description != nil {
		t.Errorf("description: want unset, got %v", *u.Description)
	}
	if u.Completed == nil || *u.Completed != original.Completed {
		t.Errorf("completed: want %v got %v", original.Completed, u.Completed)
	}
	if u.Color == nil || *u.Color != original.Color {
		t.Errorf("color: want %v got %v", original.Color, u.Color)
	}
	if service.Deref(u.StartTime) != "09:00 AM" || service.Deref(u.EndTime) != "10:00 AM" {
		t.Errorf("times: got %v %v", u.StartTime, u.EndTime)
	}
	if service.Deref(u.Date) != "2024-05-01" {
		t.Errorf("date: got %v", u.Date)
	}
	if u.AssignedToID == nil || *u.AssignedToID != member.ID {
		t.Errorf("assignee: got %v", u.AssignedToID)
	}

	after := fake.Todos()[0]
	if after.Title != original.Title || after.Color != original.Color || after.Completed != original.Completed {
		t.Errorf("idempotent edit changed the todo: %+v", after)
	}
}

func TestUpdatePayload_KeepsTitleAsStored(t *testing.T) {
	d := DraftFrom(service.Todo{ID: 7, Title: " Team Meeting ", Color: service.ColorGreen})
	if err := d.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	if got := service.Deref(d.UpdatePayload().Title); got != " Team Meeting " {
		t.Errorf("expected title sent unchanged, got %q", got)
	}

	d.Title = "   "
	if err := d.Validate(); !errors.Is(err, ErrTitleRequired) {
		t.Errorf("expected blank title rejected, got %v", err)
	}
}

func TestDraftFrom_MissingColorDefaults(t *testing.T) {
	d := DraftFrom(service.Todo{ID: 3, Title: "No color", Date: service.String("2024-05-01")})
	if d.Color != service.DefaultColor {
		t.Errorf("expected %s, got %q", service.DefaultColor, d.Color)
	}
	if err := d.Validate(); err != nil {
		t.Errorf("expected unchanged draft to validate, got %v", err)
	}
	if c := d.UpdatePayload().Color; c == nil || *c != service.DefaultColor {
		t.Errorf("unexpected payload color: %v", c)
	}
}

func TestEdit_UnchangedDraftKeepsPaddedTitle(t *testing.T) {
	o, fake := newTestBoard(t)
	ctx := context.Background()
	original := fake.AddTodo(todoOn(" Team Meeting ", "2024-05-01"))
	if err := o.Mount(ctx); err != nil {
		t.Fatalf("mount: %v", err)
	}

	d, err := o.BeginEdit(ctx, original.ID)
	if err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if _, err := o.Submit(ctx, d); err != nil {
		t.Fatalf("submit: %v", err)
	}
	if got := fake.Todos()[0].Title; got != " Team Meeting " {
		t.Errorf("unchanged edit rewrote the title to %q", got)
	}
}

func TestBeginEdit_DraftIsDetached(t *testing.T) {
	o, fake := newTestBoard(t)
	todo := fake.AddTodo(service.Todo{Title: "T", Date: service.String("2024-05-01"), Description: service.String("d")})
	if err := o.Mount(context.Background()); err != nil {
		t.Fatalf("mount: %v", err)
	}

	d, err := o.BeginEdit(context.Background(), todo.ID)
	if err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	*d.Description = "changed"
	*d.Date = "2030-01-01"

	listed := o.State().List.Todos[0]
	if service.Deref(listed.Description) != "d" || service.Deref(listed.Date) != "2024-05-01" {
		t.Errorf("draft aliased the list: %+v", listed)
	}
	staged, _ := o.Draft()
	if service.Deref(staged.Description) != "d" {
		t.Error("returned draft aliased the staged draft")
	}
}

func TestBeginEdit_FetchesWhenNotLoaded(t *testing.T) {
	o, fake := newTestBoard(t)
	todo := fake.AddTodo(todoOn("Elsewhere", "2025-01-01"))

	d, err := o.BeginEdit(context.Background(), todo.ID)
	if err != nil {
		t.Fatalf("begin edit: %v", err)
	}
	if d.Mode != DraftEdit || d.ID != todo.ID || d.Title != "Elsewhere" {
		t.Errorf("unexpected draft: %+v", d)
	}

	if _, err := o.BeginEdit(context.Background(), 999); !service.IsNotFound(err) {
		t.Errorf("expected not found, got %v", err)
	}
	if o.State().LastError == nil {
		t.Error("expected failure recorded")
	}
}

func TestSubmit_FailureKeepsDraft(t *testing.T) {
	o, fake := newTestBoard(t)
	fake.CreateTodoErr = &service.ServerError{StatusCode: 500}
	d := o.BeginCreate()
	d.Title = "Will fail"

	if _, err := o.Submit(context.Background(), d); err == nil {
		t.Fatal("expected error")
	}
	if _, ok := o.Draft(); !ok {
		t.Error("expected draft kept after failed submit")
	}
	if o.State().LastError == nil {
		t.Error("expected LastError set")
	}
}
