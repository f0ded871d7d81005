// Package service defines the backend-agnostic interface for todo operations.
package service

import "context"

// TodoService maps the todo resource of the REST backend.
type TodoService interface {
	// ListTodos returns todos matching the filter, in server order.
	// Unset filter fields are not sent.
	ListTodos(ctx context.Context, filter Filter) ([]Todo, error)

	// GetTodo returns a single todo.
	GetTodo(ctx context.Context, id int64) (Todo, error)

	// CreateTodo creates a todo and returns the server's copy.
	CreateTodo(ctx context.Context, in TodoCreate) (Todo, error)

	// UpdateTodo applies a partial update and returns the server's copy.
	UpdateTodo(ctx context.Context, id int64, in TodoUpdate) (Todo, error)

	// DeleteTodo deletes a todo.
	DeleteTodo(ctx context.Context, id int64) error
}

// TeamMemberService maps the team member resource.
type TeamMemberService interface {
	ListTeamMembers(ctx context.Context) ([]TeamMember, error)
	GetTeamMember(ctx context.Context, id int64) (TeamMember, error)
	CreateTeamMember(ctx context.Context, in TeamMemberInput) (TeamMember, error)
	UpdateTeamMember(ctx context.Context, id int64, in TeamMemberInput) (TeamMember, error)
	DeleteTeamMember(ctx context.Context, id int64) error
}

// AuthService maps the authentication endpoints.
type AuthService interface {
	// Login exchanges credentials for an access token.
	Login(ctx context.Context, creds Credentials) (Token, error)

	// Me returns the identity bound to the current bearer token.
	Me(ctx context.Context) (User, error)

	// Register creates an account.
	Register(ctx context.Context, in Registration) error
}

// Service is the full resource client.
// Commands and the board never import a transport directly.
type Service interface {
	TodoService
	TeamMemberService
	AuthService
}
