package view

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/flosch/pongo2/v6"
)

func TestMarkdownEscapesRawHTML(t *testing.T) {
	got := Markdown("**Printer** on fire\n<script>alert(1)</script>")
	if !strings.Contains(got, "<strong>Printer</strong>") {
		t.Errorf("Markdown() = %q, want bold text", got)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("Markdown() passed raw HTML through: %q", got)
	}
	if Markdown("") != "" {
		t.Error("empty source should render empty")
	}
}

func TestAgo(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	if got := Ago(now.Add(-3*time.Hour), now); got != "3 hours ago" {
		t.Errorf("Ago() = %q", got)
	}
	if got := Ago(time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC), now); got != "2020-01-02" {
		t.Errorf("Ago() beyond a year = %q", got)
	}
}

func TestRenderPages(t *testing.T) {
	r, err := NewRenderer("Support Desk")
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}

	type ticket struct {
		ID, Subject, DescriptionHTML, Priority, Status string
		Notifying                                      bool
	}
	tests := []struct {
		name string
		page string
		data pongo2.Context
		want []string
		deny []string
	}{
		{
			name: "login with error",
			page: PageLogin,
			data: pongo2.Context{"error": "Invalid credentials", "username": "a@b.com"},
			want: []string{"Invalid credentials", `value="a@b.com"`, "Support Desk"},
			deny: []string{"Logout"},
		},
		{
			name: "tickets",
			page: PageTickets,
			data: pongo2.Context{
				"principal": map[string]string{"Role": "Admin"},
				"base_path": "/support-page",
				"criteria":  []string{"Date created", "Priority", "Status"},
				"criterion": "Priority",
				"statuses":  []string{"Open", "Closed"},
				"has_more":  true,
				"tickets": []ticket{
					{ID: "t1", Subject: "<b>VPN</b>", DescriptionHTML: "<p>down</p>", Priority: "High", Status: "Closed", Notifying: true},
				},
			},
			want: []string{
				"&lt;b&gt;VPN&lt;/b&gt;",
				"<p>down</p>",
				"badge-high",
				`<option value="Closed" selected>`,
				`<option value="Priority" selected>`,
				"/support-page/tickets/t1/status",
				"Sending...",
				"Load More",
				"Logout",
			},
		},
		{
			name: "empty tickets",
			page: PageTickets,
			data: pongo2.Context{"principal": map[string]string{"Role": "Tech Team"}, "base_path": "/pages/tickets"},
			want: []string{"No tickets found."},
			deny: []string{"Load More"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := r.Render(&buf, tt.page, tt.data); err != nil {
				t.Fatalf("Render: %v", err)
			}
			out := buf.String()
			for _, s := range tt.want {
				if !strings.Contains(out, s) {
					t.Errorf("output missing %q", s)
				}
			}
			for _, s := range tt.deny {
				if strings.Contains(out, s) {
					t.Errorf("output unexpectedly contains %q", s)
				}
			}
		})
	}
}
