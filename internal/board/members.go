package board

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"todoboard/internal/service"
)

var (
	// ErrMemberNotFound is returned when a member reference matches nothing.
	ErrMemberNotFound = errors.New("team member not found")

	// ErrAmbiguousMember is returned when a name matches several members.
	ErrAmbiguousMember = errors.New("ambiguous team member name")
)

// MemberLister is the part of the resource client the cache needs.
type MemberLister interface {
	ListTeamMembers(ctx context.Context) ([]service.TeamMember, error)
}

// MemberCache holds the team member list fetched at startup. It is read-only
// to its consumers and is never invalidated automatically.
type MemberCache struct {
	svc MemberLister

	mu      sync.RWMutex
	loaded  bool
	members []service.TeamMember
	byID    map[int64]service.TeamMember
}

// NewMemberCache creates an empty cache.
func NewMemberCache(svc MemberLister) *MemberCache {
	return &MemberCache{svc: svc, byID: make(map[int64]service.TeamMember)}
}

// Load fetches the members unless a previous Load succeeded.
func (c *MemberCache) Load(ctx context.Context) error {
	c.mu.RLock()
	loaded := c.loaded
	c.mu.RUnlock()
	if loaded {
		return nil
	}
	return c.Reload(ctx)
}

// Reload fetches the members unconditionally. On failure the previous
// contents are kept.
func (c *MemberCache) Reload(ctx context.Context) error {
	members, err := c.svc.ListTeamMembers(ctx)
	if err != nil {
		return err
	}
	byID := make(map[int64]service.TeamMember, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.members = members
	c.byID = byID
	c.loaded = true
	return nil
}

// Loaded reports whether a fetch has succeeded.
func (c *MemberCache) Loaded() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loaded
}

// All returns the members in server order.
func (c *MemberCache) All() []service.TeamMember {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]service.TeamMember, len(c.members))
	copy(out, c.members)
	return out
}

// Lookup returns the cached member with id.
func (c *MemberCache) Lookup(id int64) (service.TeamMember, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	m, ok := c.byID[id]
	return m, ok
}

// Resolve turns a user reference into a member id. A numeric reference is
// accepted as-is, even when the member is not cached. Anything else is
// matched against member names (case-insensitive, trimmed).
func (c *MemberCache) Resolve(ref string) (int64, error) {
	ref = strings.TrimSpace(ref)
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil && id > 0 {
		return id, nil
	}
	if ref == "" {
		return 0, fmt.Errorf("%w: empty name", ErrMemberNotFound)
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	var matches []service.TeamMember
	for _, m := range c.members {
		if strings.EqualFold(strings.TrimSpace(m.Name), ref) {
			matches = append(matches, m)
		}
	}
	switch len(matches) {
	case 0:
		return 0, fmt.Errorf("%w: %s", ErrMemberNotFound, ref)
	case 1:
		return matches[0].ID, nil
	default:
		return 0, fmt.Errorf("%w: %s (use the member id)", ErrAmbiguousMember, ref)
	}
}

// Assignee resolves a todo's assignee through AssignedToID. The server's
// embedded snapshot is used only when the id is not cached.
func (c *MemberCache) Assignee(t service.Todo) (service.TeamMember, bool) {
	if t.AssignedToID == nil {
		return service.TeamMember{}, false
	}
	if m, ok := c.Lookup(*t.AssignedToID); ok {
		return m, true
	}
	if t.AssignedTo != nil && t.AssignedTo.ID == *t.AssignedToID {
		return *t.AssignedTo, true
	}
	return service.TeamMember{}, false
}

// AssigneeName is the display name of a todo's assignee, "#<id>" for an
// unknown member, or "" when unassigned.
func (c *MemberCache) AssigneeName(t service.Todo) string {
	if t.AssignedToID == nil {
		return ""
	}
	if m, ok := c.Assignee(t); ok {
		return m.Name
	}
	return fmt.Sprintf("#%d", *t.AssignedToID)
}
