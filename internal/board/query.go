package board

import (
	"fmt"
	"strings"
	"time"

	"todoboard/internal/service"
)

// DateLayout is the wire format of a todo date.
const DateLayout = "2006-01-02"

// Query is the active date/assignee/search criteria scoping the visible list.
// Exactly one date is always active.
type Query struct {
	Date     string
	MemberID *int64
	Search   string

	// Completed narrows the list to one completion state; nil lists both.
	Completed *bool
}

// DefaultQuery is today with no member and no search.
func DefaultQuery(now time.Time) Query {
	return Query{Date: now.Format(DateLayout)}
}

// Equal reports whether q and other select the same todos.
func (q Query) Equal(other Query) bool {
	if q.Date != other.Date || q.Search != other.Search {
		return false
	}
	if !equalPtr(q.MemberID, other.MemberID) {
		return false
	}
	return equalPtr(q.Completed, other.Completed)
}

func equalPtr[T comparable](a, b *T) bool {
	if (a == nil) != (b == nil) {
		return false
	}
	return a == nil || *a == *b
}

// Filter maps the query to the resource client filter. The date is always
// sent; the member only when set and the search only when non-empty.
func (q Query) Filter() service.Filter {
	f := service.Filter{Date: service.String(q.Date)}
	if q.MemberID != nil {
		f.AssignedToID = service.Int64(*q.MemberID)
	}
	if q.Search != "" {
		f.Search = service.String(q.Search)
	}
	if q.Completed != nil {
		f.Completed = service.Bool(*q.Completed)
	}
	return f
}

// WithDate returns a copy of q for another date.
func (q Query) WithDate(date string) Query {
	q.Date = date
	return q
}

// WithMember returns a copy of q scoped to a member; nil clears it.
func (q Query) WithMember(id *int64) Query {
	if id == nil {
		q.MemberID = nil
	} else {
		q.MemberID = service.Int64(*id)
	}
	return q
}

// WithSearch returns a copy of q with a new search term.
func (q Query) WithSearch(search string) Query {
	q.Search = strings.TrimSpace(search)
	return q
}

// WithCompleted returns a copy of q narrowed to one completion state; nil
// lists both.
func (q Query) WithCompleted(completed *bool) Query {
	if completed == nil {
		q.Completed = nil
	} else {
		q.Completed = service.Bool(*completed)
	}
	return q
}

// clone detaches q's pointer fields.
func (q Query) clone() Query {
	if q.MemberID != nil {
		q.MemberID = service.Int64(*q.MemberID)
	}
	if q.Completed != nil {
		q.Completed = service.Bool(*q.Completed)
	}
	return q
}

// String is used in log lines.
func (q Query) String() string {
	member := "any"
	if q.MemberID != nil {
		member = fmt.Sprint(*q.MemberID)
	}
	s := fmt.Sprintf("date=%s member=%s search=%q", q.Date, member, q.Search)
	if q.Completed != nil {
		s += fmt.Sprintf(" completed=%t", *q.Completed)
	}
	return s
}

// ResolveDate accepts YYYY-MM-DD, "today", "tomorrow" or "yesterday".
func ResolveDate(s string, now time.Time) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now.Format(DateLayout), nil
	case "tomorrow":
		return now.AddDate(0, 0, 1).Format(DateLayout), nil
	case "yesterday":
		return now.AddDate(0, 0, -1).Format(DateLayout), nil
	}
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid date: %s (want YYYY-MM-DD)", s)
	}
	return d.Format(DateLayout), nil
}

// ShiftDate moves a YYYY-MM-DD date by days.
func ShiftDate(date string, days int) (string, error) {
	d, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", fmt.Errorf("invalid date: %s", date)
	}
	return d.AddDate(0, 0, days).Format(DateLayout), nil
}
