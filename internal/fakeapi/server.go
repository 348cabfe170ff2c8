// Package fakeapi is an in-process stand-in for the field support portal's
// JSON API. It backs the client tests and the mock-server command.
package fakeapi

import (
	"crypto/rand"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	oaerrors "github.com/go-openapi/errors"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	"github.com/oklog/ulid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const sessionName = "fieldsync_session"

// Route names, usable with FailNext and Calls.
const (
	RouteHealth     = "health"
	RouteLogin      = "login"
	RouteLogout     = "logout"
	RouteMyTasks    = "my-tasks"
	RouteUpdate     = "update"
	RouteStatus     = "status"
	RouteWebRefresh = "trigger-web-refresh"
	RouteRefreshAll = "refresh-all"
)

type User struct {
	Username     string
	PasswordHash string
	Role         string
	Email        string
}

// Update is one accepted task update as the portal received it.
type Update struct {
	ID     string // ULID, sortable by arrival
	TaskID string
	Method string
	Body   map[string]any
}

type Server struct {
	log   *logrus.Entry
	store *sessions.CookieStore

	mu       sync.Mutex
	users    map[string]*User
	tasks    map[string][]map[string]any // by assignee, in list order
	updates  []Update
	calls    map[string]int
	agents   map[string]string // last User-Agent seen per route
	failures map[string][]int
	delay    time.Duration
}

func New(log *logrus.Entry) *Server {
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	key := make([]byte, 32)
	if _, err := rand.Read(key); err != nil {
		panic(fmt.Sprintf("fakeapi: session key: %v", err))
	}
	store := sessions.NewCookieStore(key)
	store.Options = &sessions.Options{Path: "/", HttpOnly: true, MaxAge: 86400}

	return &Server{
		log:      log.WithField("component", "fakeapi"),
		store:    store,
		users:    make(map[string]*User),
		tasks:    make(map[string][]map[string]any),
		calls:    make(map[string]int),
		agents:   make(map[string]string),
		failures: make(map[string][]int),
	}
}

func (s *Server) AddUser(username, password, role, email string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[username] = &User{Username: username, PasswordHash: string(hash), Role: role, Email: email}
	return nil
}

// SetTasks replaces the raw task objects returned to username. Keys are kept
// exactly as given so missing fields stay missing on the wire.
func (s *Server) SetTasks(username string, tasks []map[string]any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]map[string]any, 0, len(tasks))
	for _, t := range tasks {
		m := make(map[string]any, len(t))
		for k, v := range t {
			m[k] = v
		}
		copied = append(copied, m)
	}
	s.tasks[username] = copied
}

// FailNext makes the next request to route answer with status instead of
// being handled. Calls queue up.
func (s *Server) FailNext(route string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = append(s.failures[route], status)
}

// SetDelay holds every request for d before handling it.
func (s *Server) SetDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delay = d
}

func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// UserAgent returns the User-Agent of the last request to route.
func (s *Server) UserAgent(route string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.agents[route]
}

func (s *Server) Updates() []Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Update, len(s.updates))
	copy(out, s.updates)
	return out
}

// Handler returns the API mounted under /api.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()
	api.Use(s.instrument)

	api.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet).Name(RouteHealth)
	api.HandleFunc("/auth/login", s.handleLogin).Methods(http.MethodPost).Name(RouteLogin)
	api.HandleFunc("/auth/logout", s.handleLogout).Methods(http.MethodPost).Name(RouteLogout)
	api.HandleFunc("/tasks/my-tasks", s.requireUser(s.handleMyTasks)).Methods(http.MethodGet).Name(RouteMyTasks)
	api.HandleFunc("/tasks/{id}/update", s.requireUser(s.handleUpdate)).Methods(http.MethodPost).Name(RouteUpdate)
	api.HandleFunc("/tasks/{id}/status", s.requireUser(s.handleUpdate)).Methods(http.MethodPut).Name(RouteStatus)
	api.HandleFunc("/sync/trigger-web-refresh", s.handleAck).Methods(http.MethodPost).Name(RouteWebRefresh)
	api.HandleFunc("/sync/refresh-all", s.handleAck).Methods(http.MethodPost).Name(RouteRefreshAll)
	return r
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		name := ""
		if route := mux.CurrentRoute(r); route != nil {
			name = route.GetName()
		}

		s.mu.Lock()
		s.calls[name]++
		s.agents[name] = r.UserAgent()
		delay := s.delay
		status := 0
		if queued := s.failures[name]; len(queued) > 0 {
			status, s.failures[name] = queued[0], queued[1:]
		}
		s.mu.Unlock()

		s.log.WithFields(logrus.Fields{"route": name, "method": r.Method, "agent": r.UserAgent()}).Debug("request")

		if delay > 0 {
			select {
			case <-time.After(delay):
			case <-r.Context().Done():
				return
			}
		}
		if status != 0 {
			http.Error(w, fmt.Sprintf("injected failure on %s", name), status)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireUser(next func(http.ResponseWriter, *http.Request, string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		session, err := s.store.Get(r, sessionName)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid session")
			return
		}
		username, ok := session.Values["username"].(string)
		if !ok || username == "" {
			writeError(w, http.StatusUnauthorized, "not logged in")
			return
		}
		next(w, r, username)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": "fakeapi"})
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var creds struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&creds); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	user, ok := s.users[creds.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(creds.Password)) != nil {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	session, _ := s.store.New(r, sessionName)
	session.Values["username"] = user.Username
	if err := session.Save(r, w); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	profile := map[string]string{"username": user.Username}
	if user.Role != "" {
		profile["role"] = user.Role
	}
	if user.Email != "" {
		profile["email"] = user.Email
	}
	writeJSON(w, http.StatusOK, profile)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	session, _ := s.store.Get(r, sessionName)
	session.Options.MaxAge = -1
	_ = session.Save(r, w)
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func (s *Server) handleMyTasks(w http.ResponseWriter, r *http.Request, username string) {
	s.mu.Lock()
	tasks := s.tasks[username]
	if tasks == nil {
		tasks = []map[string]any{}
	}
	data, err := json.Marshal(tasks)
	s.mu.Unlock()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request, username string) {
	id := mux.Vars(r)["id"]

	var body map[string]any
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var task map[string]any
	for _, t := range s.tasks[username] {
		if tid, _ := t["id"].(string); tid == id {
			task = t
			break
		}
	}
	if task == nil {
		writeError(w, http.StatusNotFound, "task not found")
		return
	}

	if status, ok := body["status"].(string); ok {
		task["status"] = status
	}
	if notes, ok := body["notes"].(string); ok {
		existing, _ := task["notes"].(string)
		task["notes"] = strings.TrimSpace(existing + "\n" + notes)
	}
	now := time.Now().UTC()
	task["updatedAt"] = now.Format(time.RFC3339)
	updateID := ulid.MustNew(ulid.Timestamp(now), rand.Reader).String()
	s.updates = append(s.updates, Update{ID: updateID, TaskID: id, Method: r.Method, Body: body})

	writeJSON(w, http.StatusOK, map[string]any{"success": true, "id": id, "updateId": updateID})
}

func (s *Server) handleAck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"success": true})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	apiErr := oaerrors.New(int32(status), "%s", msg)
	writeJSON(w, int(apiErr.Code()), map[string]any{"error": apiErr.Error(), "code": apiErr.Code()})
}
