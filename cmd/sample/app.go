package main

import (
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bjaus/route"
	"github.com/bjaus/route/auth"
)

// ---------------------------------------------------------------------------
// Domain types
// ---------------------------------------------------------------------------

// User is the core domain entity.
type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      auth.Role `json:"role"`
	CreatedAt time.Time `json:"created_at"`

	passwordHash string
}

// Post is the polymorphic body of POST /users/{id}/posts, discriminated by
// "$type": "text" or "link".
type Post interface {
	Headline() string
}

// TextPost is a plain text post.
type TextPost struct {
	Title string `json:"title" validate:"required,max=120"`
	Body  string `json:"body" validate:"required"`
}

func (p TextPost) Headline() string { return p.Title }

// LinkPost shares a URL.
type LinkPost struct {
	Title string `json:"title" validate:"required,max=120"`
	URL   string `json:"url" validate:"required,url"`
}

func (p LinkPost) Headline() string { return p.Title }

// PostView is a stored post as returned to clients.
type PostView struct {
	ID       int       `json:"id"`
	AuthorID int       `json:"author_id"`
	Kind     string    `json:"kind"`
	Title    string    `json:"title"`
	Body     string    `json:"body,omitempty"`
	URL      string    `json:"url,omitempty"`
	PostedAt time.Time `json:"posted_at"`
}

type notFoundError struct {
	kind string
	id   int
}

func (e *notFoundError) Error() string { return fmt.Sprintf("%s %d not found", e.kind, e.id) }

// ---------------------------------------------------------------------------
// Request / Response types
// ---------------------------------------------------------------------------

type HealthResp struct {
	Status string    `json:"status"`
	Time   time.Time `json:"time"`
}

type LoginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResp struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type CreateUserReq struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// Validate rejects names that are only whitespace.
func (r CreateUserReq) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return route.Error(http.StatusBadRequest, "name must not be blank")
	}
	return nil
}

type ListUsersResp struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

// ---------------------------------------------------------------------------
// In-memory store
// ---------------------------------------------------------------------------

type store struct {
	mu     sync.RWMutex
	users  map[int]*User
	posts  map[int][]PostView
	nextID int
	postID int
}

func newStore() *store {
	return &store{
		users:  make(map[int]*User),
		posts:  make(map[int][]PostView),
		nextID: 1,
		postID: 1,
	}
}

func (s *store) createUser(name, email, hash string, role auth.Role) (User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return User{}, false
		}
	}
	u := &User{
		ID:           s.nextID,
		Name:         name,
		Email:        email,
		Role:         role,
		CreatedAt:    time.Now(),
		passwordHash: hash,
	}
	s.nextID++
	s.users[u.ID] = u
	return *u, true
}

func (s *store) user(id int) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.users[id]
	if !ok {
		return User{}, false
	}
	return *u, true
}

func (s *store) userByEmail(email string) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return *u, true
		}
	}
	return User{}, false
}

func (s *store) listUsers(role auth.Role) []User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]User, 0, len(s.users))
	for _, u := range s.users {
		if role != "" && u.Role != role {
			continue
		}
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b User) int { return a.ID - b.ID })
	return out
}

func (s *store) deleteUser(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return false
	}
	delete(s.users, id)
	delete(s.posts, id)
	return true
}

func (s *store) addPost(author int, p Post) PostView {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := PostView{ID: s.postID, AuthorID: author, Title: p.Headline(), PostedAt: time.Now()}
	switch p := p.(type) {
	case TextPost:
		v.Kind, v.Body = "text", p.Body
	case LinkPost:
		v.Kind, v.URL = "link", p.URL
	}
	s.postID++
	s.posts[author] = append(s.posts[author], v)
	return v
}

func (s *store) postsBy(author int) []PostView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.posts[author])
}

// ---------------------------------------------------------------------------
// Endpoints
// ---------------------------------------------------------------------------

var (
	userID = route.PathParam("id", route.OfPositiveInt, route.Describe("User ID"))

	roleFilter = route.OptionalQuery("role", route.OfEnum(auth.RoleUser, auth.RoleAdmin), "",
		route.EmptyAsMissing(),
		route.Describe("Filter by role"),
	)
	limit = route.OptionalQuery("limit", route.OfIntRange(1, 100), 50,
		route.InvalidAsMissing(),
		route.Describe("Max results"),
	)
	offset = route.OptionalQuery("offset", route.OfNonNegativeInt, 0, route.Describe("Pagination offset"))
)

type app struct {
	store  *store
	tokens *auth.Manager
	hasher auth.PasswordHasher
	token  *route.Parameter[auth.Authentication]
}

func newApp(tokens *auth.Manager, hasher auth.PasswordHasher) *app {
	return &app{
		store:  newStore(),
		tokens: tokens,
		hasher: hasher,
		token:  auth.AccessToken(tokens),
	}
}

func (a *app) seed() error {
	for _, u := range []struct {
		name, email, password string
		role                  auth.Role
	}{
		{"Alice", "alice@example.com", "alice-password", auth.RoleAdmin},
		{"Bob", "bob@example.com", "bob-password", auth.RoleUser},
	} {
		hash, err := a.hasher.Hash(u.password)
		if err != nil {
			return err
		}
		a.store.createUser(u.name, u.email, hash, u.role)
	}
	return nil
}

func (a *app) register(r *route.Router) {
	route.Handle(r, route.GET("health").InSummary("Health check").Tagged("ops"), a.health)
	route.Handle(r, route.POST("login").InSummary("Issue an access token").Tagged("auth"), a.login)

	self := route.Or(auth.PrincipalEquals(a.token, userID), auth.HasRole(a.token, auth.RoleAdmin))

	r.Group("users", route.WithGroupTags("users")).Scoped(func(g *route.Router) {
		route.Handle(g, route.GET().
			With(roleFilter, limit, offset).
			OnlyIf(auth.HasRole(a.token, auth.RoleAdmin)).
			InSummary("List users"), a.listUsers)
		route.Handle(g, route.POST().InSummary("Create user"), a.createUser)
		route.Handle(g, route.GET(userID).OnlyIf(self).InSummary("Get user"), a.getUser)
		route.Handle(g, route.DELETE(userID).
			OnlyIf(auth.HasRole(a.token, auth.RoleAdmin)).
			InSummary("Delete user"), a.deleteUser)

		route.Handle(g, route.GET(userID, "posts").
			OnlyIf(auth.IsAuthenticated(a.token)).
			InSummary("List posts").
			Tagged("posts"), a.listPosts)
		route.Handle(g, route.POST(userID, "posts").
			OnlyIf(auth.PrincipalEquals(a.token, userID)).
			InSummary("Create a text or link post").
			DescribedAs(`The body carries "$type": "text" or "link".`).
			Tagged("posts"), a.createPost)
	})
}

// ---------------------------------------------------------------------------
// Handlers
// ---------------------------------------------------------------------------

func (a *app) health(*route.Request, route.NoBody) (route.Response, error) {
	return route.OK(HealthResp{Status: "ok", Time: time.Now()}), nil
}

func (a *app) login(_ *route.Request, body LoginReq) (route.Response, error) {
	u, ok := a.store.userByEmail(body.Email)
	if !ok || !a.hasher.Verify(u.passwordHash, body.Password) {
		return route.Unauthorized("invalid credentials"), nil
	}
	tok, err := a.tokens.NewAccessToken(auth.Claims{UserID: strconv.Itoa(u.ID), Role: u.Role})
	if err != nil {
		return nil, err
	}
	return route.OK(LoginResp{AccessToken: tok, TokenType: "Bearer"}), nil
}

func (a *app) listUsers(r *route.Request, _ route.NoBody) (route.Response, error) {
	users := a.store.listUsers(roleFilter.Get(r))
	total := len(users)

	off := min(offset.Get(r), len(users))
	users = users[off:]
	if n := limit.Get(r); n < len(users) {
		users = users[:n]
	}
	return route.OK(ListUsersResp{Users: users, Total: total}), nil
}

func (a *app) createUser(_ *route.Request, body CreateUserReq) (route.Response, error) {
	hash, err := a.hasher.Hash(body.Password)
	if err != nil {
		return nil, err
	}
	u, ok := a.store.createUser(body.Name, body.Email, hash, auth.RoleUser)
	if !ok {
		return route.Conflict("email already registered"), nil
	}
	return route.Created(u).Header("Location", "/users/"+strconv.Itoa(u.ID)), nil
}

func (a *app) getUser(r *route.Request, _ route.NoBody) (route.Response, error) {
	id := userID.Get(r)
	u, ok := a.store.user(id)
	if !ok {
		return nil, &notFoundError{kind: "user", id: id}
	}
	return route.OK(u), nil
}

func (a *app) deleteUser(r *route.Request, _ route.NoBody) (route.Response, error) {
	id := userID.Get(r)
	if !a.store.deleteUser(id) {
		return nil, &notFoundError{kind: "user", id: id}
	}
	return route.NoContent(), nil
}

func (a *app) listPosts(r *route.Request, _ route.NoBody) (route.Response, error) {
	id := userID.Get(r)
	if _, ok := a.store.user(id); !ok {
		return nil, &notFoundError{kind: "user", id: id}
	}
	return route.OK(a.store.postsBy(id)), nil
}

func (a *app) createPost(r *route.Request, body Post) (route.Response, error) {
	id := userID.Get(r)
	if _, ok := a.store.user(id); !ok {
		return nil, &notFoundError{kind: "user", id: id}
	}
	return route.Created(a.store.addPost(id, body)), nil
}
