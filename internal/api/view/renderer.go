// Package view renders the dashboard's server-side HTML pages.
package view

import (
	"bytes"
	"embed"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/flosch/pongo2/v6"
	"github.com/gofiber/fiber/v2"
)

//go:embed templates/*.html
var templateFS embed.FS

// Page templates.
const (
	PageLogin   = "login.html"
	PageLanding = "landing.html"
	PageTickets = "tickets.html"
	PageUsers   = "users.html"
	PageError   = "error.html"
)

// embedLoader serves templates out of the binary.
type embedLoader struct {
	fsys fs.FS
}

func (l embedLoader) Abs(base, name string) string {
	if path.IsAbs(name) || base == "" {
		return strings.TrimPrefix(path.Clean(name), "/")
	}
	return path.Join(path.Dir(base), name)
}

func (l embedLoader) Get(name string) (io.Reader, error) {
	raw, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(raw), nil
}

// Renderer executes pongo2 templates.
type Renderer struct {
	set *pongo2.TemplateSet
}

// NewRenderer compiles every page up front so a broken template fails at startup.
func NewRenderer(appName string) (*Renderer, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	set := pongo2.NewSet("dashboard", embedLoader{fsys: sub})
	set.Globals["app_name"] = appName

	for _, page := range []string{PageLogin, PageLanding, PageTickets, PageUsers, PageError} {
		if _, err := set.FromFile(page); err != nil {
			return nil, err
		}
	}
	return &Renderer{set: set}, nil
}

// Render writes the named page to w.
func (r *Renderer) Render(w io.Writer, name string, data pongo2.Context) error {
	tpl, err := r.set.FromCache(name)
	if err != nil {
		return err
	}
	return tpl.ExecuteWriter(data, w)
}

// HTML renders a page as the response body.
func (r *Renderer) HTML(c *fiber.Ctx, status int, name string, data fiber.Map) error {
	var buf bytes.Buffer
	if err := r.Render(&buf, name, pongo2.Context(data)); err != nil {
		return err
	}
	c.Status(status)
	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	return c.Send(buf.Bytes())
}
