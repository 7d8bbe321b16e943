package backend_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/helpdesk-tools/ticket-dashboard/internal/backend"
	"github.com/helpdesk-tools/ticket-dashboard/internal/backend/backendtest"
	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
	apperrors "github.com/helpdesk-tools/ticket-dashboard/pkg/util/errorutil"
)

func TestLogin(t *testing.T) {
	fake := backendtest.New(t)
	fake.AddAccount("a@b.com", "x", "Admin")
	client := backend.NewClient(fake.URL, time.Second)

	resp, err := client.Login(context.Background(), "a@b.com", "x")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if resp.Role != "Admin" || resp.Token == "" {
		t.Errorf("Login = %+v", resp)
	}

	_, err = client.Login(context.Background(), "a@b.com", "wrong")
	detail, status, ok := apperrors.BackendDetail(err)
	if !ok {
		t.Fatalf("expected backend error, got %v", err)
	}
	if status != http.StatusUnauthorized || detail != "Invalid email or password" {
		t.Errorf("detail = %q status = %d", detail, status)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := backend.NewClient(url, time.Second)
	_, err := client.ListTickets(context.Background(), 0, 10)
	if !apperrors.IsTransport(err) {
		t.Fatalf("expected transport error, got %v", err)
	}
	if _, _, ok := apperrors.BackendDetail(err); ok {
		t.Error("transport failure must not look like a backend rejection")
	}
}

func TestNonStringDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","email"],"msg":"field required"}]}`))
	}))
	defer srv.Close()

	err := backend.NewClient(srv.URL, time.Second).CreateUser(context.Background(), domain.NewUserRequest{})
	detail, status, ok := apperrors.BackendDetail(err)
	if !ok || detail != "" || status != http.StatusUnprocessableEntity {
		t.Fatalf("BackendDetail = %q, %d, %v", detail, status, ok)
	}
}

func TestListTicketsQuery(t *testing.T) {
	fake := backendtest.New(t)
	fake.SetTickets(
		domain.Ticket{ID: "t1", Subject: "one", CreatedAt: "2024-01-01"},
		domain.Ticket{ID: "t2", Subject: "two"},
		domain.Ticket{ID: "t3", Subject: "three"},
	)
	client := backend.NewClient(fake.URL, time.Second)

	got, err := client.ListTickets(context.Background(), 1, 10)
	if err != nil {
		t.Fatalf("ListTickets: %v", err)
	}
	if len(got) != 2 || got[0].ID != "t2" || got[1].ID != "t3" {
		t.Fatalf("ListTickets = %+v", got)
	}

	first, err := client.ListTickets(context.Background(), 0, 1)
	if err != nil {
		t.Fatal(err)
	}
	if first[0].CreatedAt != "2024-01-01" {
		t.Errorf("CreatedAt = %q", first[0].CreatedAt)
	}

	queries := fake.TicketQueries()
	if len(queries) != 2 || queries[0] != "limit=10&skip=1" {
		t.Errorf("queries = %v", queries)
	}
}

func TestStatusAndNotify(t *testing.T) {
	fake := backendtest.New(t)
	fake.SetTickets(domain.Ticket{ID: "t1", Status: domain.TicketStatusOpen})
	client := backend.NewClient(fake.URL, time.Second)
	ctx := context.Background()

	if err := client.UpdateTicketStatus(ctx, "t1", domain.TicketStatusResolved); err != nil {
		t.Fatalf("UpdateTicketStatus: %v", err)
	}
	if status, _ := fake.TicketStatus("t1"); status != domain.TicketStatusResolved {
		t.Errorf("backend status = %q", status)
	}
	if err := client.NotifyTicket(ctx, "t1"); err != nil {
		t.Fatalf("NotifyTicket: %v", err)
	}
	if err := client.NotifyTicket(ctx, "missing"); err == nil {
		t.Error("notify on unknown ticket should fail")
	}
}

func TestBearerToken(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client := backend.NewClient(srv.URL, time.Second, backend.WithTokenSource(func() string { return "T" }))
	if _, err := client.ListTickets(context.Background(), 0, 10); err != nil {
		t.Fatal(err)
	}
	if got != "Bearer T" {
		t.Errorf("Authorization = %q", got)
	}
}
