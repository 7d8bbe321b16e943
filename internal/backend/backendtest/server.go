// Package backendtest runs an in-process stand-in for the ticketing backend.
package backendtest

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	jwt "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
)

// Route names accepted by Fail, Hold and Calls.
const (
	RouteLogin   = "login"
	RouteUsers   = "users"
	RouteTickets = "tickets"
	RouteStatus  = "status"
	RouteNotify  = "notify"
)

// TokenSecret signs the tokens the fake hands out.
const TokenSecret = "backendtest-secret"

type account struct {
	username string
	hash     []byte
	role     string
}

type failure struct {
	status int
	detail string
}

type gate struct {
	ch   chan struct{}
	once sync.Once
}

func (g *gate) open() { g.once.Do(func() { close(g.ch) }) }

// wireTicket mirrors the Mongo-shaped documents the real backend returns.
type wireTicket struct {
	ID          string `json:"_id"`
	Subject     string `json:"subject,omitempty"`
	Description string `json:"description,omitempty"`
	Priority    string `json:"priority,omitempty"`
	Status      string `json:"status,omitempty"`
	Category    string `json:"category,omitempty"`
	Subcategory string `json:"subcategory,omitempty"`
	Email       string `json:"email,omitempty"`
	Department  string `json:"department,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// Server is a fake backend bound to a local listener.
type Server struct {
	URL string

	srv *httptest.Server

	mu       sync.Mutex
	accounts map[string]account
	tickets  []wireTicket
	calls    map[string]int
	queries  []string
	failures map[string]failure
	gates    map[string]*gate
	created  []domain.NewUserRequest
}

// New starts a fake backend that is closed when the test ends.
func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		accounts: map[string]account{},
		calls:    map[string]int{},
		failures: map[string]failure{},
		gates:    map[string]*gate{},
	}

	app := fiber.New(fiber.Config{Immutable: true, DisableStartupMessage: true})
	app.Post("/api/login", s.login)
	app.Post("/api/users", s.createUser)
	app.Get("/tickets", s.listTickets)
	app.Patch("/tickets/:id/status", s.updateStatus)
	app.Post("/tickets/:id/notify", s.notify)

	s.srv = httptest.NewServer(adaptor.FiberApp(app))
	s.URL = s.srv.URL
	t.Cleanup(s.Close)
	return s
}

// Close releases held requests and stops the listener.
func (s *Server) Close() {
	s.mu.Lock()
	for _, g := range s.gates {
		g.open()
	}
	s.mu.Unlock()
	s.srv.Close()
}

// AddAccount registers login credentials.
func (s *Server) AddAccount(email, password, role string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[email] = account{username: email, hash: hash, role: role}
}

// SetTickets replaces the stored tickets, preserving order.
func (s *Server) SetTickets(tickets ...domain.Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tickets = s.tickets[:0]
	for _, t := range tickets {
		s.tickets = append(s.tickets, wireTicket{
			ID:          t.ID,
			Subject:     t.Subject,
			Description: t.Description,
			Priority:    string(t.Priority),
			Status:      string(t.Status),
			Category:    t.Category,
			Subcategory: t.Subcategory,
			Email:       t.Email,
			Department:  t.Department,
			CreatedAt:   t.CreatedAt,
		})
	}
}

// TicketStatus returns the stored status of a ticket.
func (s *Server) TicketStatus(id string) (domain.TicketStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return domain.TicketStatus(t.Status), true
		}
	}
	return "", false
}

// CreatedUsers lists successful user submissions.
func (s *Server) CreatedUsers() []domain.NewUserRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.NewUserRequest(nil), s.created...)
}

// Fail makes every call to route answer with status and {"detail": detail}.
func (s *Server) Fail(route string, status int, detail string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[route] = failure{status: status, detail: detail}
}

// Recover clears a failure set by Fail.
func (s *Server) Recover(route string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.failures, route)
}

// Hold blocks requests to route until the returned release func is called.
func (s *Server) Hold(route string) (release func()) {
	g := &gate{ch: make(chan struct{})}
	s.mu.Lock()
	s.gates[route] = g
	s.mu.Unlock()
	return func() {
		g.open()
		s.mu.Lock()
		if s.gates[route] == g {
			delete(s.gates, route)
		}
		s.mu.Unlock()
	}
}

// Calls reports how many requests reached route.
func (s *Server) Calls(route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[route]
}

// TicketQueries lists the raw query strings of ticket list requests.
func (s *Server) TicketQueries() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

// IssueToken signs a token shaped like the backend's.
func IssueToken(email, role string) string {
	claims := jwt.MapClaims{
		"email": email,
		"role":  role,
		"exp":   time.Now().Add(2 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(TokenSecret))
	if err != nil {
		panic(err)
	}
	return token
}

// enter counts the call, waits on any hold and reports an injected failure.
func (s *Server) enter(route string) (failure, bool) {
	s.mu.Lock()
	s.calls[route]++
	g := s.gates[route]
	s.mu.Unlock()

	if g != nil {
		<-g.ch
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	f, failed := s.failures[route]
	return f, failed
}

func detail(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(fiber.Map{"detail": msg})
}

func (s *Server) login(c *fiber.Ctx) error {
	if f, failed := s.enter(RouteLogin); failed {
		return detail(c, f.status, f.detail)
	}
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid payload")
	}

	s.mu.Lock()
	acct, ok := s.accounts[req.Username]
	s.mu.Unlock()
	if !ok || bcrypt.CompareHashAndPassword(acct.hash, []byte(req.Password)) != nil {
		return detail(c, http.StatusUnauthorized, "Invalid email or password")
	}
	return c.JSON(fiber.Map{"token": IssueToken(req.Username, acct.role), "role": acct.role})
}

func (s *Server) createUser(c *fiber.Ctx) error {
	if f, failed := s.enter(RouteUsers); failed {
		return detail(c, f.status, f.detail)
	}
	var req domain.NewUserRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid payload")
	}
	if !strings.Contains(req.Email, "@") {
		return detail(c, http.StatusBadRequest, "Invalid email: "+req.Email)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.accounts[req.Email]; exists {
		return detail(c, http.StatusBadRequest, "User already exists")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.MinCost)
	if err != nil {
		return detail(c, http.StatusInternalServerError, err.Error())
	}
	s.accounts[req.Email] = account{username: req.Username, hash: hash, role: string(req.Role)}
	s.created = append(s.created, req)
	return c.JSON(fiber.Map{"message": "User added successfully"})
}

func (s *Server) listTickets(c *fiber.Ctx) error {
	if f, failed := s.enter(RouteTickets); failed {
		return detail(c, f.status, f.detail)
	}
	skip := c.QueryInt("skip", 0)
	limit := c.QueryInt("limit", 10)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, string(c.Request().URI().QueryString()))
	out := []wireTicket{}
	for i := skip; i >= 0 && i < len(s.tickets) && len(out) < limit; i++ {
		out = append(out, s.tickets[i])
	}
	return c.JSON(out)
}

func (s *Server) updateStatus(c *fiber.Ctx) error {
	if f, failed := s.enter(RouteStatus); failed {
		return detail(c, f.status, f.detail)
	}
	var req struct {
		Status string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return detail(c, http.StatusUnprocessableEntity, "invalid payload")
	}
	id := c.Params("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.tickets {
		if s.tickets[i].ID == id {
			s.tickets[i].Status = req.Status
			return c.JSON(fiber.Map{"message": "Ticket " + id + " status updated"})
		}
	}
	return detail(c, http.StatusBadRequest, "Failed to update ticket status")
}

func (s *Server) notify(c *fiber.Ctx) error {
	if f, failed := s.enter(RouteNotify); failed {
		return detail(c, f.status, f.detail)
	}
	id := c.Params("id")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tickets {
		if t.ID == id {
			return c.JSON(fiber.Map{"message": "Notification sent"})
		}
	}
	return detail(c, http.StatusNotFound, "Ticket not found")
}
