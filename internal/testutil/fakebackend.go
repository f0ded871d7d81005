package testutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/mux"
	"golang.org/x/crypto/bcrypt"

	"todoboard/internal/service"
)

var backendKey = []byte("fake-backend-signing-key")

// RecordedRequest is one request seen by FakeBackend.
type RecordedRequest struct {
	Method string
	Path   string
	Query  url.Values
	Header http.Header
	Body   []byte
}

// FakeBackend serves the todo REST contract over HTTP for client tests.
// Todo and team member data lives in Data; accounts are held separately with
// bcrypt hashes and tokens are HS256 JWTs.
type FakeBackend struct {
	*httptest.Server

	// Data backs the todo and team member routes. Its error injection fields
	// surface as HTTP errors.
	Data *FakeService

	// RequireAuth makes the resource routes reject requests without a valid token.
	RequireAuth bool

	mu       sync.Mutex
	accounts map[string]account
	nextID   int64
	requests []RecordedRequest
}

type account struct {
	user service.User
	hash []byte
}

// NewFakeBackend starts a FakeBackend. It is closed when the test ends.
func NewFakeBackend(t testing.TB) *FakeBackend {
	t.Helper()
	b := &FakeBackend{
		Data:     NewFakeService(),
		accounts: make(map[string]account),
	}

	r := mux.NewRouter()
	r.Use(b.recordRequests)
	r.HandleFunc("/token", b.handleToken).Methods("POST")
	r.HandleFunc("/register", b.handleRegister).Methods("POST")
	r.HandleFunc("/users/me", b.handleMe).Methods("GET")

	api := r.NewRoute().Subrouter()
	api.Use(b.authorize)
	api.HandleFunc("/todos", b.handleListTodos).Methods("GET")
	api.HandleFunc("/todos", b.handleCreateTodo).Methods("POST")
	api.HandleFunc("/todos/{id}", b.handleGetTodo).Methods("GET")
	api.HandleFunc("/todos/{id}", b.handleUpdateTodo).Methods("PUT")
	api.HandleFunc("/todos/{id}", b.handleDeleteTodo).Methods("DELETE")
	api.HandleFunc("/team-members", b.handleListMembers).Methods("GET")
	api.HandleFunc("/team-members", b.handleCreateMember).Methods("POST")
	api.HandleFunc("/team-members/{id}", b.handleGetMember).Methods("GET")
	api.HandleFunc("/team-members/{id}", b.handleUpdateMember).Methods("PUT")
	api.HandleFunc("/team-members/{id}", b.handleDeleteMember).Methods("DELETE")

	b.Server = httptest.NewServer(r)
	t.Cleanup(b.Close)
	return b
}

// AddUser creates an account.
func (b *FakeBackend) AddUser(email, password string) service.User {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.nextID++
	u := service.User{ID: b.nextID, Email: email, IsActive: true}
	b.accounts[email] = account{user: u, hash: hash}
	return u
}

// Token signs a token for email valid for ttl. A negative ttl yields an
// expired token.
func (b *FakeBackend) Token(email string, ttl time.Duration) string {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   email,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(backendKey)
	if err != nil {
		panic(err)
	}
	return signed
}

// Requests returns every request received so far.
func (b *FakeBackend) Requests() []RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]RecordedRequest, len(b.requests))
	copy(out, b.requests)
	return out
}

// LastRequest returns the most recent request, or the zero value.
func (b *FakeBackend) LastRequest() RecordedRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.requests) == 0 {
		return RecordedRequest{}
	}
	return b.requests[len(b.requests)-1]
}

func (b *FakeBackend) recordRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		b.mu.Lock()
		b.requests = append(b.requests, RecordedRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		b.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (b *FakeBackend) authorize(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if b.RequireAuth {
			if _, ok := b.currentUser(r); !ok {
				writeDetail(w, http.StatusUnauthorized, "Not authenticated")
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// currentUser validates the bearer token and returns its account.
func (b *FakeBackend) currentUser(r *http.Request) (service.User, bool) {
	header := r.Header.Get("Authorization")
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return service.User{}, false
	}
	claims := &jwt.RegisteredClaims{}
	token, err := jwt.ParseWithClaims(parts[1], claims, func(token *jwt.Token) (interface{}, error) {
		return backendKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return service.User{}, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	acct, ok := b.accounts[claims.Subject]
	return acct.user, ok
}

func (b *FakeBackend) handleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "invalid form")
		return
	}
	if gt := r.PostForm.Get("grant_type"); gt != "" && gt != "password" {
		writeDetail(w, http.StatusBadRequest, "unsupported grant_type")
		return
	}
	email := r.PostForm.Get("username")
	b.mu.Lock()
	acct, ok := b.accounts[email]
	b.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(r.PostForm.Get("password"))) != nil {
		writeDetail(w, http.StatusUnauthorized, "Incorrect username or password")
		return
	}
	writeJSON(w, http.StatusOK, service.Token{AccessToken: b.Token(email, 30*time.Minute), TokenType: "bearer"})
}

func (b *FakeBackend) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in service.Registration
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil || in.Email == "" || in.Password == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "email and password are required")
		return
	}
	b.mu.Lock()
	_, exists := b.accounts[in.Email]
	b.mu.Unlock()
	if exists {
		writeDetail(w, http.StatusBadRequest, "Email already registered")
		return
	}
	writeJSON(w, http.StatusOK, b.AddUser(in.Email, in.Password))
}

func (b *FakeBackend) handleMe(w http.ResponseWriter, r *http.Request) {
	u, ok := b.currentUser(r)
	if !ok {
		writeDetail(w, http.StatusUnauthorized, "Could not validate credentials")
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (b *FakeBackend) handleListTodos(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var filter service.Filter
	if _, ok := q["date"]; ok {
		filter.Date = service.String(q.Get("date"))
	}
	if _, ok := q["assigned_to_id"]; ok {
		id, err := strconv.ParseInt(q.Get("assigned_to_id"), 10, 64)
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "assigned_to_id must be an integer")
			return
		}
		filter.AssignedToID = &id
	}
	if _, ok := q["search"]; ok {
		filter.Search = service.String(q.Get("search"))
	}
	if _, ok := q["completed"]; ok {
		c, err := strconv.ParseBool(q.Get("completed"))
		if err != nil {
			writeDetail(w, http.StatusUnprocessableEntity, "completed must be a boolean")
			return
		}
		filter.Completed = &c
	}
	todos, err := b.Data.ListTodos(r.Context(), filter)
	respond(w, todos, err)
}

func (b *FakeBackend) handleGetTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	todo, err := b.Data.GetTodo(r.Context(), id)
	respond(w, todo, err)
}

func (b *FakeBackend) handleCreateTodo(w http.ResponseWriter, r *http.Request) {
	var in service.TodoCreate
	if !decode(w, r, &in) {
		return
	}
	if in.Title == "" {
		writeDetail(w, http.StatusUnprocessableEntity, "title is required")
		return
	}
	todo, err := b.Data.CreateTodo(r.Context(), in)
	respond(w, todo, err)
}

func (b *FakeBackend) handleUpdateTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.TodoUpdate
	if !decode(w, r, &in) {
		return
	}
	todo, err := b.Data.UpdateTodo(r.Context(), id, in)
	respond(w, todo, err)
}

func (b *FakeBackend) handleDeleteTodo(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := b.Data.DeleteTodo(r.Context(), id)
	respond(w, map[string]string{"detail": "Todo deleted"}, err)
}

func (b *FakeBackend) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := b.Data.ListTeamMembers(r.Context())
	respond(w, members, err)
}

func (b *FakeBackend) handleGetMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	member, err := b.Data.GetTeamMember(r.Context(), id)
	respond(w, member, err)
}

func (b *FakeBackend) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	var in service.TeamMemberInput
	if !decode(w, r, &in) {
		return
	}
	member, err := b.Data.CreateTeamMember(r.Context(), in)
	respond(w, member, err)
}

func (b *FakeBackend) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var in service.TeamMemberInput
	if !decode(w, r, &in) {
		return
	}
	member, err := b.Data.UpdateTeamMember(r.Context(), id, in)
	respond(w, member, err)
}

func (b *FakeBackend) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	err := b.Data.DeleteTeamMember(r.Context(), id)
	respond(w, map[string]string{"detail": "Team member deleted"}, err)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, "id must be an integer")
		return 0, false
	}
	return id, true
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeDetail(w, http.StatusUnprocessableEntity, fmt.Sprintf("invalid body: %v", err))
		return false
	}
	return true
}

func respond(w http.ResponseWriter, payload any, err error) {
	if err != nil {
		var se *service.ServerError
		if errors.As(err, &se) {
			writeDetail(w, se.StatusCode, se.Message)
			return
		}
		writeDetail(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, payload)
}

func writeDetail(w http.ResponseWriter, code int, detail string) {
	writeJSON(w, code, map[string]string{"detail": detail})
}

func writeJSON(w http.ResponseWriter, code int, payload any) {
	data, _ := json.Marshal(payload)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(data)
}
