package web

import (
	"bytes"
	"io/fs"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scoreboard/scoreboard/internal/model"
)

func TestRankListings(t *testing.T) {
	t.Parallel()

	scores := map[string]model.Listing{
		"c": {ListingID: "c", Name: "Charlie", Total: 5},
		"a": {ListingID: "a", Name: "Alpha", Total: 10},
		"b": {ListingID: "b", Name: "Bravo", Total: 5},
		"d": {ListingID: "d", Name: "Bravo", Total: 5},
	}

	got := RankListings(scores)
	var ids []string
	for _, l := range got {
		ids = append(ids, l.ListingID)
	}

	if diff := cmp.Diff([]string{"a", "b", "d", "c"}, ids); diff != "" {
		t.Errorf("ranking mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderer_Pages(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}

	sb := &model.Scoreboard{
		ScoreboardID: "d288202a-3fc1-475f-be96-5567a605b287",
		Title:        "Spring <League>",
		Scores: map[string]model.Listing{
			"01HX": {ListingID: "01HX", Name: "<script>alert(1)</script>", Total: 3},
		},
	}
	data := NewPageData(sb, "alice")

	tests := []struct {
		page     string
		contains []string
	}{
		{PageIndex, []string{"Spring &lt;League&gt;", "&lt;script&gt;alert(1)&lt;/script&gt;", "static/style.css"}},
		{PageEdit, []string{"static/edit.js", `data-listing-id="01HX"`, "Signed in as alice"}},
		{PageLogin, []string{`id="login-form"`, "static/login.js"}},
	}

	for _, tt := range tests {
		t.Run(tt.page, func(t *testing.T) {
			var buf bytes.Buffer
			if err := r.Render(&buf, tt.page, data); err != nil {
				t.Fatalf("Render failed: %v", err)
			}
			html := buf.String()
			for _, want := range tt.contains {
				if !strings.Contains(html, want) {
					t.Errorf("%s missing %q", tt.page, want)
				}
			}
			if strings.Contains(html, "<script>alert(1)</script>") {
				t.Errorf("%s rendered unescaped listing name", tt.page)
			}
		})
	}
}

func TestRenderer_UnknownPage(t *testing.T) {
	t.Parallel()

	r, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer failed: %v", err)
	}
	if err := r.Render(&bytes.Buffer{}, "admin.html", PageData{}); err == nil {
		t.Error("expected error for unknown page")
	}
}

func TestStatic(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"edit.js", "login.js", "style.css"} {
		if _, err := fs.Stat(Static(), name); err != nil {
			t.Errorf("static asset %s missing: %v", name, err)
		}
	}
}

func TestContentType(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"edit.js":   "application/javascript; charset=utf-8",
		"style.css": "text/css; charset=utf-8",
		"page.html": "text/html; charset=utf-8",
		"data.bin":  "application/octet-stream",
	}
	for name, want := range tests {
		if got := ContentType(name); got != want {
			t.Errorf("ContentType(%q) = %q, want %q", name, got, want)
		}
	}
}
