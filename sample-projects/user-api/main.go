package main

import (
	"fmt"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	json "github.com/goccy/go-json"

	skematic "github.com/kharioki/skematic"
	g "github.com/kharioki/skematic/dsl"
	"github.com/kharioki/skematic/middleware"
)

// User represents a user in our system
type User struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Age    int    `json:"age"`
	Active bool   `json:"active"`
}

// UserStore is a simple in-memory store
type UserStore struct {
	mu     sync.RWMutex
	users  map[int]User
	nextID int
}

func NewUserStore() *UserStore {
	return &UserStore{
		users:  make(map[int]User),
		nextID: 1,
	}
}

func (s *UserStore) Create(user User) User {
	s.mu.Lock()
	defer s.mu.Unlock()

	user.ID = s.nextID
	s.nextID++
	s.users[user.ID] = user

	return user
}

func (s *UserStore) GetAll() []User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users
}

func (s *UserStore) GetByID(id int) (User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, exists := s.users[id]
	return user, exists
}

func (s *UserStore) Update(id int, user User) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return false
	}

	user.ID = id
	s.users[id] = user
	return true
}

func (s *UserStore) Delete(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[id]; !exists {
		return false
	}

	delete(s.users, id)
	return true
}

// Server holds our application state
type Server struct {
	store        *UserStore
	createSchema skematic.Schema[User]

	// ready-wrapped handlers: validation happens in middleware before the
	// handler runs, the parsed value travels via request context
	createUser http.Handler
	patchUser  http.Handler
}

// createUserSchema validates full user payloads. The server assigns IDs, so
// the wire format has no id field and unknown keys are rejected.
func createUserSchema() skematic.Schema[User] {
	return g.MustBind[User](g.Object().
		Field("name", g.String().Min(1)).
		Field("email", g.String().Email()).
		Field("age", g.IntOf[int]()).Default(18).
		Field("active", g.Bool()).Default(true).
		UnknownStrict())
}

// patchUserSchema accepts any subset of the user fields. Nothing is
// defaulted, so the presence map alone decides which fields to update.
func patchUserSchema() skematic.Schema[User] {
	return g.MustBind[User](g.Object().
		Field("name", g.String().Min(1)).Optional().
		Field("email", g.String().Email()).Optional().
		Field("age", g.IntOf[int]()).Optional().
		Field("active", g.Bool()).Optional().
		UnknownStrict())
}

func NewServer() *Server {
	s := &Server{
		store:        NewUserStore(),
		createSchema: createUserSchema(),
	}

	opt := middleware.DefaultParseOpt()
	s.createUser = middleware.ValidateJSON[User](s.createSchema, opt)(http.HandlerFunc(s.handleCreateUser))
	s.patchUser = middleware.ValidateJSON[User](patchUserSchema(), opt)(http.HandlerFunc(s.handlePatchUser))

	return s
}

func (s *Server) handleUsers(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleGetUsers(w, r)
	case http.MethodPost:
		s.createUser.ServeHTTP(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleUserByID(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFromPath(w, r)
	if !ok {
		return
	}

	switch r.Method {
	case http.MethodGet:
		s.handleGetUser(w, r, id)
	case http.MethodPatch:
		s.patchUser.ServeHTTP(w, r)
	case http.MethodDelete:
		s.handleDeleteUser(w, r, id)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func userIDFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	path := strings.TrimPrefix(r.URL.Path, "/users/")
	id, err := strconv.Atoi(path)
	if err != nil {
		http.Error(w, "Invalid user ID", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

func (s *Server) handleGetUsers(w http.ResponseWriter, _ *http.Request) {
	users := s.store.GetAll()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"users": users,
		"count": len(users),
	})
}

func (s *Server) handleGetUser(w http.ResponseWriter, _ *http.Request, id int) {
	user, exists := s.store.GetByID(id)
	if !exists {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(user)
}

func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	pv, ok := middleware.ParsedFromContext[User](r.Context())
	if !ok {
		http.Error(w, "missing parsed request", http.StatusInternalServerError)
		return
	}

	createdUser := s.store.Create(pv.Value)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(createdUser)
}

func (s *Server) handlePatchUser(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFromPath(w, r)
	if !ok {
		return
	}

	existingUser, exists := s.store.GetByID(id)
	if !exists {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	pv, ok := middleware.ParsedFromContext[User](r.Context())
	if !ok {
		http.Error(w, "missing parsed request", http.StatusInternalServerError)
		return
	}

	// Only fields present in the request body overwrite the stored user.
	updatedUser := existingUser
	if pv.Presence["/name"]&skematic.PresenceSeen != 0 {
		updatedUser.Name = pv.Value.Name
	}
	if pv.Presence["/email"]&skematic.PresenceSeen != 0 {
		updatedUser.Email = pv.Value.Email
	}
	if pv.Presence["/age"]&skematic.PresenceSeen != 0 {
		updatedUser.Age = pv.Value.Age
	}
	if pv.Presence["/active"]&skematic.PresenceSeen != 0 {
		updatedUser.Active = pv.Value.Active
	}

	s.store.Update(id, updatedUser)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"user":           updatedUser,
		"updated_fields": updatedFields(pv.Presence),
	})
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, _ *http.Request, id int) {
	if !s.store.Delete(id) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jsonSchema, err := s.createSchema.JSONSchema()
	if err != nil {
		http.Error(w, fmt.Sprintf("Failed to generate schema: %v", err), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jsonSchema)
}

func updatedFields(presence skematic.PresenceMap) []string {
	var updated []string

	fields := []string{"/name", "/email", "/age", "/active"}
	for _, field := range fields {
		if presence[field]&skematic.PresenceSeen != 0 {
			updated = append(updated, strings.TrimPrefix(field, "/"))
		}
	}

	return updated
}

func main() {
	server := NewServer()

	// seed data
	server.store.Create(User{Name: "Taro", Email: "taro@example.com", Age: 30, Active: true})
	server.store.Create(User{Name: "Hanako", Email: "hanako@example.com", Age: 25, Active: true})

	http.HandleFunc("/users", server.handleUsers)
	http.HandleFunc("/users/", server.handleUserByID)
	http.HandleFunc("/schema", server.handleSchema)

	http.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	})

	http.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"message": "skematic User API Sample",
			"endpoints": map[string]string{
				"GET /users":         "Get all users",
				"POST /users":        "Create a new user",
				"GET /users/{id}":    "Get user by ID",
				"PATCH /users/{id}":  "Partially update user",
				"DELETE /users/{id}": "Delete user",
				"GET /schema":        "Get JSON Schema for User",
				"GET /health":        "Health check",
			},
			"examples": map[string]any{
				"create_user": map[string]any{
					"method": "POST",
					"url":    "/users",
					"body": map[string]any{
						"name":   "Taro",
						"email":  "taro@example.com",
						"age":    30,
						"active": true,
					},
				},
				"partial_update": map[string]any{
					"method": "PATCH",
					"url":    "/users/1",
					"body": map[string]any{
						"name": "Jiro",
					},
					"note": "Only updates the 'name' field, other fields remain unchanged",
				},
			},
		})
	})

	log.Println("🚀 skematic User API server starting on :8080")
	log.Println("Visit http://localhost:8080 for usage instructions")

	if err := http.ListenAndServe(":8080", nil); err != nil {
		log.Fatal("Server failed to start:", err)
	}
}
