// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"todoboard/internal/service"
)

// TokenLoader is the part of a token store the fake reads bearer tokens from.
type TokenLoader interface {
	Load(ctx context.Context) (string, error)
}

// ListHook runs before ListTodos computes its result. A non-nil error is
// returned to the caller instead of the list.
type ListHook func(ctx context.Context, filter service.Filter) error

// FakeService is an in-memory implementation of service.Service for testing.
// It filters like the real backend: exact date and assignee, case-insensitive
// title search.
type FakeService struct {
	mu           sync.Mutex
	todos        []service.Todo
	members      []service.TeamMember
	users        map[string]fakeUser // email -> user
	tokens       map[string]string   // token -> email
	nextTodoID   int64
	nextMemberID int64
	nextUserID   int64
	listCalls    []service.Filter
	calls        []string
	creates      []service.TodoCreate
	updates      []service.TodoUpdate

	// Now stamps created_at/updated_at. Defaults to time.Now.
	Now func() time.Time

	// Tokens reads the bearer token for Me. When nil, Me always fails with 401.
	Tokens TokenLoader

	// BeforeList, when set, runs at the start of every ListTodos call.
	BeforeList ListHook

	// Error injection for testing
	ListTodosErr    error
	GetTodoErr      error
	CreateTodoErr   error
	UpdateTodoErr   error
	DeleteTodoErr   error
	ListMembersErr  error
	GetMemberErr    error
	CreateMemberErr error
	UpdateMemberErr error
	DeleteMemberErr error
	LoginErr        error
	MeErr           error
	RegisterErr     error
}

type fakeUser struct {
	user     service.User
	password string
}

// NewFakeService creates an empty FakeService.
func NewFakeService() *FakeService {
	return &FakeService{
		users:  make(map[string]fakeUser),
		tokens: make(map[string]string),
		Now:    time.Now,
	}
}

// NotFound builds the 404 the backend returns for a missing resource.
func NotFound(resource string) error {
	return &service.ServerError{StatusCode: http.StatusNotFound, Message: resource + " not found"}
}

// Unauthorized builds the 401 the backend returns for a bad credential.
func Unauthorized() error {
	return &service.ServerError{StatusCode: http.StatusUnauthorized, Message: "Could not validate credentials"}
}

// AddMember adds a team member and returns it.
func (f *FakeService) AddMember(name string) service.TeamMember {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addMemberLocked(service.TeamMemberInput{Name: name})
}

// AddTodo stores t with a fresh ID (t.ID is ignored) and returns the stored copy.
func (f *FakeService) AddTodo(t service.Todo) service.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextTodoID++
	t.ID = f.nextTodoID
	if t.Color == "" {
		t.Color = service.DefaultColor
	}
	now := service.Timestamp{Time: f.Now()}
	t.CreatedAt, t.UpdatedAt = now, now
	t.AssignedTo = nil
	f.todos = append(f.todos, t.Clone())
	return f.joinLocked(t)
}

// AddUser registers an account and returns it.
func (f *FakeService) AddUser(email, password string) service.User {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.addUserLocked(email, password)
}

// IssueToken returns a valid bearer token for an existing user.
func (f *FakeService) IssueToken(email string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	token := fmt.Sprintf("token-%d-%s", len(f.tokens)+1, email)
	f.tokens[token] = email
	return token
}

// RevokeToken makes token invalid for Me.
func (f *FakeService) RevokeToken(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, token)
}

// Todos returns a snapshot of every stored todo.
func (f *FakeService) Todos() []service.Todo {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Todo, 0, len(f.todos))
	for _, t := range f.todos {
		out = append(out, f.joinLocked(t))
	}
	return out
}

// ListCalls returns the filters of every ListTodos call, in order.
func (f *FakeService) ListCalls() []service.Filter {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.Filter, len(f.listCalls))
	copy(out, f.listCalls)
	return out
}

// Calls returns a log of every mutating call, like "UpdateTodo 3".
func (f *FakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// Creates returns every CreateTodo payload, in order.
func (f *FakeService) Creates() []service.TodoCreate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.TodoCreate, len(f.creates))
	copy(out, f.creates)
	return out
}

// Updates returns every UpdateTodo payload, in order.
func (f *FakeService) Updates() []service.TodoUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]service.TodoUpdate, len(f.updates))
	copy(out, f.updates)
	return out
}

func (f *FakeService) record(format string, args ...any) {
	f.calls = append(f.calls, fmt.Sprintf(format, args...))
}

// ListTodos implements service.Service.
func (f *FakeService) ListTodos(ctx context.Context, filter service.Filter) ([]service.Todo, error) {
	f.mu.Lock()
	f.listCalls = append(f.listCalls, filter)
	hook := f.BeforeList
	f.mu.Unlock()

	if hook != nil {
		if err := hook(ctx, filter); err != nil {
			return nil, err
		}
	}
	if f.ListTodosErr != nil {
		return nil, f.ListTodosErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	result := []service.Todo{}
	for _, t := range f.todos {
		if matches(t, filter) {
			result = append(result, f.joinLocked(t))
		}
	}
	return result, nil
}

func matches(t service.Todo, filter service.Filter) bool {
	if filter.Date != nil && service.Deref(t.Date) != *filter.Date {
		return false
	}
	if filter.AssignedToID != nil && (t.AssignedToID == nil || *t.AssignedToID != *filter.AssignedToID) {
		return false
	}
	if filter.Search != nil && *filter.Search != "" &&
		!strings.Contains(strings.ToLower(t.Title), strings.ToLower(*filter.Search)) {
		return false
	}
	if filter.Completed != nil && t.Completed != *filter.Completed {
		return false
	}
	return true
}

// GetTodo implements service.Service.
func (f *FakeService) GetTodo(ctx context.Context, id int64) (service.Todo, error) {
	if f.GetTodoErr != nil {
		return service.Todo{}, f.GetTodoErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.todoIndexLocked(id)
	if i < 0 {
		return service.Todo{}, NotFound("Todo")
	}
	return f.joinLocked(f.todos[i]), nil
}

// CreateTodo implements service.Service.
func (f *FakeService) CreateTodo(ctx context.Context, in service.TodoCreate) (service.Todo, error) {
	if f.CreateTodoErr != nil {
		return service.Todo{}, f.CreateTodoErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTodo %s", in.Title)
	f.creates = append(f.creates, in)

	f.nextTodoID++
	now := service.Timestamp{Time: f.Now()}
	t := service.Todo{
		ID:           f.nextTodoID,
		Title:        in.Title,
		Description:  in.Description,
		Color:        service.DefaultColor,
		StartTime:    in.StartTime,
		EndTime:      in.EndTime,
		Date:         in.Date,
		AssignedToID: in.AssignedToID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if in.Color != nil {
		t.Color = *in.Color
	}
	t = t.Clone()
	f.todos = append(f.todos, t)
	return f.joinLocked(t), nil
}

// UpdateTodo implements service.Service.
func (f *FakeService) UpdateTodo(ctx context.Context, id int64, in service.TodoUpdate) (service.Todo, error) {
	if f.UpdateTodoErr != nil {
		return service.Todo{}, f.UpdateTodoErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTodo %d", id)
	f.updates = append(f.updates, in)

	i := f.todoIndexLocked(id)
	if i < 0 {
		return service.Todo{}, NotFound("Todo")
	}
	t := f.todos[i].Clone()
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Description != nil {
		t.Description = service.String(*in.Description)
	}
	if in.Completed != nil {
		t.Completed = *in.Completed
	}
	if in.Color != nil {
		t.Color = *in.Color
	}
	if in.StartTime != nil {
		t.StartTime = service.String(*in.StartTime)
	}
	if in.EndTime != nil {
		t.EndTime = service.String(*in.EndTime)
	}
	if in.Date != nil {
		t.Date = service.String(*in.Date)
	}
	if in.AssignedToID != nil {
		t.AssignedToID = service.Int64(*in.AssignedToID)
	}
	t.UpdatedAt = service.Timestamp{Time: f.Now()}
	f.todos[i] = t
	return f.joinLocked(t), nil
}

// DeleteTodo implements service.Service.
func (f *FakeService) DeleteTodo(ctx context.Context, id int64) error {
	if f.DeleteTodoErr != nil {
		return f.DeleteTodoErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTodo %d", id)

	i := f.todoIndexLocked(id)
	if i < 0 {
		return NotFound("Todo")
	}
	f.todos = append(f.todos[:i], f.todos[i+1:]...)
	return nil
}

// ListTeamMembers implements service.Service.
func (f *FakeService) ListTeamMembers(ctx context.Context) ([]service.TeamMember, error) {
	if f.ListMembersErr != nil {
		return nil, f.ListMembersErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListTeamMembers")
	out := make([]service.TeamMember, len(f.members))
	copy(out, f.members)
	return out, nil
}

// GetTeamMember implements service.Service.
func (f *FakeService) GetTeamMember(ctx context.Context, id int64) (service.TeamMember, error) {
	if f.GetMemberErr != nil {
		return service.TeamMember{}, f.GetMemberErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.memberIndexLocked(id)
	if i < 0 {
		return service.TeamMember{}, NotFound("Team member")
	}
	return f.members[i], nil
}

// CreateTeamMember implements service.Service.
func (f *FakeService) CreateTeamMember(ctx context.Context, in service.TeamMemberInput) (service.TeamMember, error) {
	if f.CreateMemberErr != nil {
		return service.TeamMember{}, f.CreateMemberErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateTeamMember %s", in.Name)
	return f.addMemberLocked(in), nil
}

// UpdateTeamMember implements service.Service.
func (f *FakeService) UpdateTeamMember(ctx context.Context, id int64, in service.TeamMemberInput) (service.TeamMember, error) {
	if f.UpdateMemberErr != nil {
		return service.TeamMember{}, f.UpdateMemberErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UpdateTeamMember %d", id)

	i := f.memberIndexLocked(id)
	if i < 0 {
		return service.TeamMember{}, NotFound("Team member")
	}
	if in.Name != "" {
		f.members[i].Name = in.Name
	}
	if in.Avatar != nil {
		f.members[i].Avatar = service.String(*in.Avatar)
	}
	return f.members[i], nil
}

// DeleteTeamMember implements service.Service.
func (f *FakeService) DeleteTeamMember(ctx context.Context, id int64) error {
	if f.DeleteMemberErr != nil {
		return f.DeleteMemberErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("DeleteTeamMember %d", id)

	i := f.memberIndexLocked(id)
	if i < 0 {
		return NotFound("Team member")
	}
	f.members = append(f.members[:i], f.members[i+1:]...)
	return nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.Token, error) {
	if f.LoginErr != nil {
		return service.Token{}, f.LoginErr
	}
	f.mu.Lock()
	u, ok := f.users[creds.Username]
	f.mu.Unlock()
	if !ok || u.password != creds.Password {
		return service.Token{}, &service.ServerError{StatusCode: http.StatusUnauthorized, Message: "Incorrect username or password"}
	}
	return service.Token{AccessToken: f.IssueToken(creds.Username), TokenType: "bearer"}, nil
}

// Me implements service.Service.
func (f *FakeService) Me(ctx context.Context) (service.User, error) {
	if f.MeErr != nil {
		return service.User{}, f.MeErr
	}
	if f.Tokens == nil {
		return service.User{}, Unauthorized()
	}
	token, err := f.Tokens.Load(ctx)
	if err != nil {
		return service.User{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	email, ok := f.tokens[token]
	if !ok {
		return service.User{}, Unauthorized()
	}
	return f.users[email].user, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, in service.Registration) error {
	if f.RegisterErr != nil {
		return f.RegisterErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.users[in.Email]; exists {
		return &service.ServerError{StatusCode: http.StatusBadRequest, Message: "Email already registered"}
	}
	f.addUserLocked(in.Email, in.Password)
	return nil
}

func (f *FakeService) addMemberLocked(in service.TeamMemberInput) service.TeamMember {
	f.nextMemberID++
	m := service.TeamMember{
		ID:        f.nextMemberID,
		Name:      in.Name,
		Avatar:    in.Avatar,
		CreatedAt: service.Timestamp{Time: f.Now()},
	}
	f.members = append(f.members, m)
	sort.SliceStable(f.members, func(i, j int) bool { return f.members[i].ID < f.members[j].ID })
	return m
}

func (f *FakeService) addUserLocked(email, password string) service.User {
	f.nextUserID++
	u := service.User{ID: f.nextUserID, Email: email, IsActive: true}
	f.users[email] = fakeUser{user: u, password: password}
	return u
}

// joinLocked returns a copy of t with the server-side assigned_to join filled.
func (f *FakeService) joinLocked(t service.Todo) service.Todo {
	out := t.Clone()
	out.AssignedTo = nil
	if t.AssignedToID != nil {
		if i := f.memberIndexLocked(*t.AssignedToID); i >= 0 {
			m := f.members[i]
			out.AssignedTo = &m
		}
	}
	return out
}

func (f *FakeService) todoIndexLocked(id int64) int {
	for i, t := range f.todos {
		if t.ID == id {
			return i
		}
	}
	return -1
}

func (f *FakeService) memberIndexLocked(id int64) int {
	for i, m := range f.members {
		if m.ID == id {
			return i
		}
	}
	return -1
}
