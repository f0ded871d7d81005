// Package service defines the backend-agnostic interface for todo operations.
package service

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Color is the display color of a todo.
type Color string

const (
	ColorBlue   Color = "blue"
	ColorPurple Color = "purple"
	ColorYellow Color = "yellow"
	ColorPink   Color = "pink"
	ColorGreen  Color = "green"

	// DefaultColor is applied by the backend when a todo is created without a color.
	DefaultColor = ColorBlue
)

// Colors lists the valid colors in display order.
var Colors = []Color{ColorBlue, ColorPurple, ColorYellow, ColorPink, ColorGreen}

// Valid reports whether c is one of the known colors.
func (c Color) Valid() bool {
	for _, known := range Colors {
		if c == known {
			return true
		}
	}
	return false
}

// ParseColor parses a color name (case-insensitive, trimmed).
func ParseColor(s string) (Color, error) {
	c := Color(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("invalid color: %s", s)
	}
	return c, nil
}

// TeamMember is a person todos can be assigned to.
type TeamMember struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Avatar    *string   `json:"avatar,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
}

// TeamMemberInput is the request body for creating or updating a team member.
type TeamMemberInput struct {
	Name   string  `json:"name"`
	Avatar *string `json:"avatar,omitempty"`
}

// Todo is a task record with scheduling and assignment metadata.
//
// AssignedTo is a denormalized snapshot joined by the server. It is read-only
// and never the source of truth for member identity; resolve AssignedToID
// against the team member cache instead.
type Todo struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Description  *string     `json:"description,omitempty"`
	Completed    bool        `json:"completed"`
	Color        Color       `json:"color"`
	StartTime    *string     `json:"start_time,omitempty"`
	EndTime      *string     `json:"end_time,omitempty"`
	Date         *string     `json:"date,omitempty"`
	AssignedToID *int64      `json:"assigned_to_id,omitempty"`
	AssignedTo   *TeamMember `json:"assigned_to,omitempty"`
	CreatedAt    Timestamp   `json:"created_at"`
	UpdatedAt    Timestamp   `json:"updated_at"`
}

// Clone returns a deep copy of t. Pointer fields never alias the original.
func (t Todo) Clone() Todo {
	out := t
	out.Description = cloneString(t.Description)
	out.StartTime = cloneString(t.StartTime)
	out.EndTime = cloneString(t.EndTime)
	out.Date = cloneString(t.Date)
	out.AssignedToID = cloneInt64(t.AssignedToID)
	if t.AssignedTo != nil {
		m := *t.AssignedTo
		m.Avatar = cloneString(t.AssignedTo.Avatar)
		out.AssignedTo = &m
	}
	return out
}

// TodoCreate is the request body for creating a todo.
// Nil fields are omitted so the server applies its defaults.
type TodoCreate struct {
	Title        string  `json:"title"`
	Description  *string `json:"description,omitempty"`
	Completed    *bool   `json:"completed,omitempty"`
	Color        *Color  `json:"color,omitempty"`
	StartTime    *string `json:"start_time,omitempty"`
	EndTime      *string `json:"end_time,omitempty"`
	Date         *string `json:"date,omitempty"`
	AssignedToID *int64  `json:"assigned_to_id,omitempty"`
}

// TodoUpdate is the request body for updating a todo.
// Only non-nil fields are sent; the server leaves the others unchanged.
type TodoUpdate struct {
	Title        *string `json:"title,omitempty"`
	Description  *string `json:"description,omitempty"`
	Completed    *bool   `json:"completed,omitempty"`
	Color        *Color  `json:"color,omitempty"`
	StartTime    *string `json:"start_time,omitempty"`
	EndTime      *string `json:"end_time,omitempty"`
	Date         *string `json:"date,omitempty"`
	AssignedToID *int64  `json:"assigned_to_id,omitempty"`
}

// IsEmpty reports whether the update carries no fields.
func (u TodoUpdate) IsEmpty() bool {
	return u.Title == nil && u.Description == nil && u.Completed == nil && u.Color == nil &&
		u.StartTime == nil && u.EndTime == nil && u.Date == nil && u.AssignedToID == nil
}

// Filter selects todos on the server. Nil fields are not sent.
type Filter struct {
	Date         *string
	AssignedToID *int64
	Search       *string
	Completed    *bool
}

// Values encodes the filter as query parameters, skipping unset fields.
// A set field is sent even when it holds the zero value.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.Date != nil {
		v.Set("date", *f.Date)
	}
	if f.AssignedToID != nil {
		v.Set("assigned_to_id", strconv.FormatInt(*f.AssignedToID, 10))
	}
	if f.Search != nil {
		v.Set("search", *f.Search)
	}
	if f.Completed != nil {
		v.Set("completed", strconv.FormatBool(*f.Completed))
	}
	return v
}

// User is the authenticated account returned by the identity endpoint.
type User struct {
	ID       int64  `json:"id"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}

// Credentials are exchanged for an access token.
type Credentials struct {
	Username string
	Password string
}

// Registration is the payload for creating an account.
type Registration struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Token is the response of the token endpoint.
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// String returns a pointer to s.
func String(s string) *string { return &s }

// Int64 returns a pointer to n.
func Int64(n int64) *int64 { return &n }

// Bool returns a pointer to b.
func Bool(b bool) *bool { return &b }

// ColorPtr returns a pointer to c.
func ColorPtr(c Color) *Color { return &c }

// Deref returns the pointed-to string or "".
func Deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneInt64(n *int64) *int64 {
	if n == nil {
		return nil
	}
	v := *n
	return &v
}
