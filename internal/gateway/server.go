package gateway

import (
	"encoding/json"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/stackdock/internal/model"
)

// Routes served by Server and called by HTTPClient.
const (
	routeStacks   = "/stacks"
	routeStack    = "/stacks/{id}"
	routeCards    = "/cards"
	routeCard     = "/cards/{id}"
	routeCardMove = "/cards/{id}/move"
)

// errorBody is the JSON body of every non-2xx response.
type errorBody struct {
	Error string `json:"error"`
}

// moveBody is the JSON body of a move request.
type moveBody struct {
	StackID string `json:"stackId"`
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithFailureRate makes the server reject a random share of mutations with
// 503, for exercising client rollback against a real transport.
func WithFailureRate(rate float64, seed uint64) ServerOption {
	return func(s *Server) {
		s.failureRate = rate
		s.rnd = rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	}
}

// WithServerLogger sets the logger. Defaults to slog.Default().
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithRecords preloads the server with the records of snap, so a client
// whose local mirror already holds them can keep editing them.
func WithRecords(snap *model.Snapshot) ServerOption {
	return func(s *Server) {
		for _, st := range snap.Stacks {
			s.stacks[st.ID] = st
		}
		for _, c := range snap.Cards {
			s.cards[c.ID] = c
		}
	}
}

// Server is a reference remote source of record. It keeps accepted stacks
// and cards in memory and enforces id uniqueness and existence.
type Server struct {
	router chi.Router
	logger *slog.Logger

	mu          sync.Mutex
	stacks      map[string]model.Stack
	cards       map[string]model.Card
	failureRate float64
	rnd         *rand.Rand
}

// NewServer creates a Server with all routes configured.
func NewServer(opts ...ServerOption) *Server {
	s := &Server{
		logger: slog.Default(),
		stacks: make(map[string]model.Stack),
		cards:  make(map[string]model.Card),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Post(routeStacks, s.handleCreateStack)
	r.Put(routeStack, s.handleUpdateStack)
	r.Delete(routeStack, s.handleDeleteStack)

	r.Post(routeCards, s.handleCreateCard)
	r.Put(routeCard, s.handleUpdateCard)
	r.Delete(routeCard, s.handleDeleteCard)
	r.Post(routeCardMove, s.handleMoveCard)

	s.router = r
	return s
}

// ServeHTTP implements the http.Handler interface, delegating to the chi router.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Snapshot returns the accepted records. Order is unspecified.
func (s *Server) Snapshot() *model.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := model.EmptySnapshot()
	for _, st := range s.stacks {
		snap.Stacks = append(snap.Stacks, st)
	}
	for _, c := range s.cards {
		snap.Cards = append(snap.Cards, c)
	}
	return snap
}

// injectFault reports whether this request should fail. Caller holds s.mu.
func (s *Server) injectFault() bool {
	return s.rnd != nil && s.rnd.Float64() < s.failureRate
}

func (s *Server) handleCreateStack(w http.ResponseWriter, r *http.Request) {
	var st model.Stack
	if !decodeBody(w, r, &st) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.injectFault():
		writeError(w, http.StatusServiceUnavailable, defaultMessage(OpCreateStack))
	case st.ID == "" || model.ValidateName(st.Name) != nil:
		writeError(w, http.StatusUnprocessableEntity, "Stack id and name are required.")
	case s.hasStack(st.ID):
		writeError(w, http.StatusConflict, "Stack already exists.")
	default:
		s.stacks[st.ID] = st
		s.logger.Info("stack created", "id", st.ID, "name", st.Name)
		writeJSON(w, http.StatusCreated, st)
	}
}

func (s *Server) handleUpdateStack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var st model.Stack
	if !decodeBody(w, r, &st) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.injectFault():
		writeError(w, http.StatusServiceUnavailable, defaultMessage(OpUpdateStack))
	case st.ID != id:
		writeError(w, http.StatusUnprocessableEntity, "Stack id does not match the path.")
	case !s.hasStack(id):
		writeError(w, http.StatusNotFound, "Stack not found.")
	default:
		s.stacks[id] = st
		s.logger.Info("stack updated", "id", id, "name", st.Name)
		writeJSON(w, http.StatusOK, st)
	}
}

func (s *Server) handleDeleteStack(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.injectFault():
		writeError(w, http.StatusServiceUnavailable, defaultMessage(OpDeleteStack))
	case !s.hasStack(id):
		writeError(w, http.StatusNotFound, "Stack not found.")
	default:
		delete(s.stacks, id)
		for cid, c := range s.cards {
			if c.StackID == id {
				delete(s.cards, cid)
			}
		}
		s.logger.Info("stack deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleCreateCard(w http.ResponseWriter, r *http.Request) {
	var c model.Card
	if !decodeBody(w, r, &c) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.injectFault():
		writeError(w, http.StatusServiceUnavailable, defaultMessage(OpCreateCard))
	case c.ID == "" || model.ValidateName(c.Name) != nil:
		writeError(w, http.StatusUnprocessableEntity, "Card id and name are required.")
	case s.hasCard(c.ID):
		writeError(w, http.StatusConflict, "Card already exists.")
	case !s.hasStack(c.StackID):
		writeError(w, http.StatusUnprocessableEntity, "Stack not found.")
	default:
		s.cards[c.ID] = c
		s.logger.Info("card created", "id", c.ID, "name", c.Name)
		writeJSON(w, http.StatusCreated, c)
	}
}

func (s *Server) handleUpdateCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var c model.Card
	if !decodeBody(w, r, &c) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.injectFault():
		writeError(w, http.StatusServiceUnavailable, defaultMessage(OpUpdateCard))
	case c.ID != id:
		writeError(w, http.StatusUnprocessableEntity, "Card id does not match the path.")
	case !s.hasCard(id):
		writeError(w, http.StatusNotFound, "Card not found.")
	default:
		s.cards[id] = c
		s.logger.Info("card updated", "id", id, "name", c.Name)
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) handleDeleteCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.injectFault():
		writeError(w, http.StatusServiceUnavailable, defaultMessage(OpDeleteCard))
	case !s.hasCard(id):
		writeError(w, http.StatusNotFound, "Card not found.")
	default:
		delete(s.cards, id)
		s.logger.Info("card deleted", "id", id)
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *Server) handleMoveCard(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var body moveBody
	if !decodeBody(w, r, &body) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.injectFault():
		writeError(w, http.StatusServiceUnavailable, defaultMessage(OpMoveCard))
	case !s.hasCard(id):
		writeError(w, http.StatusNotFound, "Card not found.")
	case !s.hasStack(body.StackID):
		writeError(w, http.StatusUnprocessableEntity, "Stack not found.")
	default:
		c := s.cards[id]
		c.StackID = body.StackID
		s.cards[id] = c
		s.logger.Info("card moved", "id", id, "to", body.StackID)
		writeJSON(w, http.StatusOK, c)
	}
}

func (s *Server) hasStack(id string) bool {
	_, ok := s.stacks[id]
	return ok
}

func (s *Server) hasCard(id string) bool {
	_, ok := s.cards[id]
	return ok
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "Malformed request body.")
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorBody{Error: message})
}
