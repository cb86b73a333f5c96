// Package web holds the embedded page templates and static assets.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"sort"

	"github.com/scoreboard/scoreboard/internal/model"
)

// Page names.
const (
	PageIndex = "index.html"
	PageEdit  = "edit.html"
	PageLogin = "login.html"
)

//go:embed templates/*.html
var templateFiles embed.FS

//go:embed static
var staticFiles embed.FS

var contentTypes = map[string]string{
	".css":  "text/css; charset=utf-8",
	".js":   "application/javascript; charset=utf-8",
	".html": "text/html; charset=utf-8",
	".svg":  "image/svg+xml",
	".png":  "image/png",
	".ico":  "image/x-icon",
}

// PageData is the value every page template renders.
type PageData struct {
	ScoreboardID string
	Title        string
	Listings     []model.Listing
	Username     string
}

// NewPageData builds page data from a scoreboard, ranking its listings.
func NewPageData(sb *model.Scoreboard, username string) PageData {
	return PageData{
		ScoreboardID: sb.ScoreboardID,
		Title:        sb.Title,
		Listings:     RankListings(sb.Scores),
		Username:     username,
	}
}

// RankListings orders listings by total, highest first. Ties are broken by
// name and then id so the page order is stable.
func RankListings(scores map[string]model.Listing) []model.Listing {
	out := make([]model.Listing, 0, len(scores))
	for _, l := range scores {
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Total != out[j].Total {
			return out[i].Total > out[j].Total
		}
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].ListingID < out[j].ListingID
	})
	return out
}

// Renderer executes the page templates.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every page together with the shared layout.
func NewRenderer() (*Renderer, error) {
	funcs := template.FuncMap{
		"inc": func(i int) int { return i + 1 },
	}

	r := &Renderer{pages: make(map[string]*template.Template)}
	for _, page := range []string{PageIndex, PageEdit, PageLogin} {
		tmpl, err := template.New(page).Funcs(funcs).ParseFS(templateFiles,
			"templates/layout.html",
			"templates/"+page,
		)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", page, err)
		}
		r.pages[page] = tmpl
	}
	return r, nil
}

// Render writes the named page. Output is buffered so a template error
// never leaves a half-written page.
func (r *Renderer) Render(w io.Writer, page string, data PageData) error {
	tmpl, ok := r.pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}
	_, err := buf.WriteTo(w)
	return err
}

// Static returns the static asset filesystem, rooted at the asset directory.
func Static() fs.FS {
	sub, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic(err)
	}
	return sub
}

// ContentType returns the Content-Type for a static file name.
func ContentType(name string) string {
	if ct, ok := contentTypes[path.Ext(name)]; ok {
		return ct
	}
	return "application/octet-stream"
}
