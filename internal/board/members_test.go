package board

import (
	"context"
	"errors"
	"testing"

	"todoboard/internal/service"
	"todoboard/internal/testutil"
)

func loadedCache(t *testing.T, names ...string) (*MemberCache, *testutil.FakeService) {
	t.Helper()
	fake := testutil.NewFakeService()
	for _, n := range names {
		fake.AddMember(n)
	}
	c := NewMemberCache(fake)
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return c, fake
}

func TestMemberCache_LoadOnce(t *testing.T) {
	c, fake := loadedCache(t, "Alice")
	fake.AddMember("Bob")

	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if n := len(c.All()); n != 1 {
		t.Errorf("expected cache not refreshed by Load, got %d members", n)
	}
	if err := c.Reload(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if n := len(c.All()); n != 2 {
		t.Errorf("expected 2 members after Reload, got %d", n)
	}
}

func TestMemberCache_ReloadFailureKeepsContents(t *testing.T) {
	c, fake := loadedCache(t, "Alice")
	fake.ListMembersErr = errors.New("down")

	if err := c.Reload(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if n := len(c.All()); n != 1 {
		t.Errorf("expected previous contents kept, got %d", n)
	}
}

func TestMemberCache_LoadRetriesAfterFailure(t *testing.T) {
	fake := testutil.NewFakeService()
	fake.AddMember("Alice")
	fake.ListMembersErr = errors.New("down")
	c := NewMemberCache(fake)

	if err := c.Load(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if c.Loaded() {
		t.Error("expected not loaded after failure")
	}
	fake.ListMembersErr = nil
	if err := c.Load(context.Background()); err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.Loaded() || len(c.All()) != 1 {
		t.Error("expected loaded after retry")
	}
}

func TestMemberCache_Resolve(t *testing.T) {
	c, _ := loadedCache(t, "Alice", "Bob", "bob")

	id, err := c.Resolve("  ALICE ")
	if err != nil || id != 1 {
		t.Errorf("expected alice=1, got %d %v", id, err)
	}

	id, err = c.Resolve("42")
	if err != nil || id != 42 {
		t.Errorf("expected numeric ref accepted uncached, got %d %v", id, err)
	}

	if _, err := c.Resolve("Carol"); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	if _, err := c.Resolve("bob"); !errors.Is(err, ErrAmbiguousMember) {
		t.Errorf("expected ambiguous, got %v", err)
	}
	if _, err := c.Resolve(""); !errors.Is(err, ErrMemberNotFound) {
		t.Errorf("expected not found for empty ref, got %v", err)
	}
}

func TestMemberCache_AssigneePrefersCache(t *testing.T) {
	c, _ := loadedCache(t, "Alice")

	stale := service.Todo{
		AssignedToID: service.Int64(1),
		AssignedTo:   &service.TeamMember{ID: 1, Name: "Alice (old name)"},
	}
	m, ok := c.Assignee(stale)
	if !ok || m.Name != "Alice" {
		t.Errorf("expected cached member, got %+v %v", m, ok)
	}

	uncached := service.Todo{
		AssignedToID: service.Int64(9),
		AssignedTo:   &service.TeamMember{ID: 9, Name: "Zed"},
	}
	if m, ok := c.Assignee(uncached); !ok || m.Name != "Zed" {
		t.Errorf("expected snapshot fallback, got %+v %v", m, ok)
	}

	mismatched := service.Todo{
		AssignedToID: service.Int64(9),
		AssignedTo:   &service.TeamMember{ID: 3, Name: "Wrong"},
	}
	if _, ok := c.Assignee(mismatched); ok {
		t.Error("snapshot for a different id must be ignored")
	}

	if name := c.AssigneeName(service.Todo{AssignedToID: service.Int64(9)}); name != "#9" {
		t.Errorf("expected #9, got %q", name)
	}
	if name := c.AssigneeName(service.Todo{}); name != "" {
		t.Errorf("expected empty for unassigned, got %q", name)
	}
}
