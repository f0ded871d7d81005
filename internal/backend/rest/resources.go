package rest

import (
	"context"
	"fmt"
	"net/http"

	"todoboard/internal/service"
)

// ListTodos returns todos matching filter. Unset filter fields are not sent.
func (c *Client) ListTodos(ctx context.Context, filter service.Filter) ([]service.Todo, error) {
	var todos []service.Todo
	if err := c.do(ctx, "list todos", http.MethodGet, "/todos", filter.Values(), nil, &todos); err != nil {
		return nil, err
	}
	if todos == nil {
		todos = []service.Todo{}
	}
	return todos, nil
}

// GetTodo returns one todo.
func (c *Client) GetTodo(ctx context.Context, id int64) (service.Todo, error) {
	var todo service.Todo
	err := c.do(ctx, "get todo", http.MethodGet, todoPath(id), nil, nil, &todo)
	return todo, err
}

// CreateTodo creates a todo.
func (c *Client) CreateTodo(ctx context.Context, in service.TodoCreate) (service.Todo, error) {
	var todo service.Todo
	err := c.do(ctx, "create todo", http.MethodPost, "/todos", nil, in, &todo)
	return todo, err
}

// UpdateTodo sends a partial update. The backend route is PUT but only the
// fields present in the body are changed.
func (c *Client) UpdateTodo(ctx context.Context, id int64, in service.TodoUpdate) (service.Todo, error) {
	var todo service.Todo
	err := c.do(ctx, "update todo", http.MethodPut, todoPath(id), nil, in, &todo)
	return todo, err
}

// DeleteTodo deletes a todo.
func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	return c.do(ctx, "delete todo", http.MethodDelete, todoPath(id), nil, nil, nil)
}

// ListTeamMembers returns every team member.
func (c *Client) ListTeamMembers(ctx context.Context) ([]service.TeamMember, error) {
	var members []service.TeamMember
	if err := c.do(ctx, "list team members", http.MethodGet, "/team-members", nil, nil, &members); err != nil {
		return nil, err
	}
	if members == nil {
		members = []service.TeamMember{}
	}
	return members, nil
}

func (c *Client) GetTeamMember(ctx context.Context, id int64) (service.TeamMember, error) {
	var m service.TeamMember
	err := c.do(ctx, "get team member", http.MethodGet, memberPath(id), nil, nil, &m)
	return m, err
}

func (c *Client) CreateTeamMember(ctx context.Context, in service.TeamMemberInput) (service.TeamMember, error) {
	var m service.TeamMember
	err := c.do(ctx, "create team member", http.MethodPost, "/team-members", nil, in, &m)
	return m, err
}

func (c *Client) UpdateTeamMember(ctx context.Context, id int64, in service.TeamMemberInput) (service.TeamMember, error) {
	var m service.TeamMember
	err := c.do(ctx, "update team member", http.MethodPut, memberPath(id), nil, in, &m)
	return m, err
}

func (c *Client) DeleteTeamMember(ctx context.Context, id int64) error {
	return c.do(ctx, "delete team member", http.MethodDelete, memberPath(id), nil, nil, nil)
}

func todoPath(id int64) string   { return fmt.Sprintf("/todos/%d", id) }
func memberPath(id int64) string { return fmt.Sprintf("/team-members/%d", id) }
