package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"

	"github.com/helpdesk-tools/ticket-dashboard/internal/domain"
)

type fakeSession struct {
	token string
	role  domain.Role
}

func (f fakeSession) IsAuthenticated() bool { return f.token != "" && f.role != "" }

func (f fakeSession) CurrentRole() (domain.Role, bool) {
	if !f.IsAuthenticated() {
		return "", false
	}
	return f.role, true
}

func (f fakeSession) Token() string { return f.token }

func TestAuthorizeMatrix(t *testing.T) {
	sessions := []fakeSession{
		{},
		{token: "T"},
		{role: domain.RoleAdmin},
		{token: "T", role: domain.RoleAdmin},
		{token: "T", role: domain.RoleTechTeam},
		{token: "T", role: domain.RoleUser},
	}
	for _, sess := range sessions {
		for _, required := range domain.Roles() {
			got := Authorize(sess, required)
			want := sess.IsAuthenticated() && sess.role == required
			if got.Allowed != want {
				t.Errorf("Authorize(%+v, %q).Allowed = %v, want %v", sess, required, got.Allowed, want)
			}
			if !got.Allowed && got.Redirect != domain.LoginPath {
				t.Errorf("Authorize(%+v, %q).Redirect = %q", sess, required, got.Redirect)
			}
		}
	}
}

func TestAdminDoesNotInherit(t *testing.T) {
	admin := fakeSession{token: "T", role: domain.RoleAdmin}
	for _, role := range []domain.Role{domain.RoleTechTeam, domain.RoleUser} {
		if Authorize(admin, role).Allowed {
			t.Errorf("admin allowed into %q route", role)
		}
	}
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		session    fakeSession
		wantStatus int
	}{
		{name: "anonymous", session: fakeSession{}, wantStatus: http.StatusFound},
		{name: "wrong role", session: fakeSession{token: "T", role: domain.RoleUser}, wantStatus: http.StatusFound},
		{name: "allowed", session: fakeSession{token: "T", role: domain.RoleTechTeam}, wantStatus: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/pages/techteam-dashboard", RequireRole(tt.session, domain.RoleTechTeam), func(c *fiber.Ctx) error {
				principal, ok := PrincipalFromContext(c)
				if !ok || principal.Role != domain.RoleTechTeam {
					return c.SendStatus(http.StatusInternalServerError)
				}
				return c.SendString("ok")
			})

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/pages/techteam-dashboard", nil), -1)
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusFound {
				if loc := resp.Header.Get("Location"); loc != domain.LoginPath {
					t.Errorf("Location = %q", loc)
				}
			}
		})
	}
}

func TestParseIdentity(t *testing.T) {
	exp := time.Now().Add(time.Hour).Truncate(time.Second)
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": "a@b.com",
		"role":  "Admin",
		"exp":   exp.Unix(),
	}).SignedString([]byte("unknown-to-the-dashboard"))
	if err != nil {
		t.Fatal(err)
	}

	id := ParseIdentity(signed)
	if id.Email != "a@b.com" || id.Role != "Admin" {
		t.Errorf("identity = %+v", id)
	}
	if id.ExpiresAt == nil || !id.ExpiresAt.Equal(exp) {
		t.Errorf("ExpiresAt = %v, want %v", id.ExpiresAt, exp)
	}

	if got := ParseIdentity("opaque-token"); got != (Identity{}) {
		t.Errorf("opaque token identity = %+v", got)
	}
}
