package view

import (
	"bytes"
	"html"
	"time"

	"github.com/xeonx/timeago"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkhtml "github.com/yuin/goldmark/renderer/html"
)

// markdown escapes raw HTML in ticket text; WithUnsafe is never set.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	goldmark.WithRendererOptions(goldmarkhtml.WithHardWraps()),
)

// Markdown converts a ticket description to HTML. On a conversion error the
// escaped source is shown instead.
func Markdown(src string) string {
	if src == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "<p>" + html.EscapeString(src) + "</p>"
	}
	return buf.String()
}

// Ago formats t relative to now, e.g. "3 hours ago".
func Ago(t, now time.Time) string {
	cfg := timeago.English
	cfg.Max = 365 * 24 * time.Hour
	cfg.DefaultLayout = "2006-01-02"
	return cfg.FormatReference(t, now)
}
