package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/scoreboard/scoreboard/internal/handler/dto"
	"github.com/scoreboard/scoreboard/internal/model"
)

func decodeListing(t *testing.T, body []byte) dto.ListingResponse {
	t.Helper()

	var listing dto.ListingResponse
	if err := json.Unmarshal(body, &listing); err != nil {
		t.Fatalf("failed to decode listing: %v (body %q)", err, body)
	}
	return listing
}

func (a *testApp) scoreboard(t *testing.T, id string) *model.Scoreboard {
	t.Helper()

	sb, err := a.scoreboards.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get scoreboard failed: %v", err)
	}
	return sb
}

func TestScoreboard_RequiresToken(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)

	endpoints := []string{"/add-listing", "/edit-listing", "/delete-listing", "/edit-scoreboard"}
	tests := []struct {
		name string
		body string
		opts []requestOption
	}{
		{"no token", `{}`, nil},
		{"unknown cookie", `{}`, []requestOption{withCookie("not-a-token")}},
		{"unknown bearer", `{}`, []requestOption{withBearer("not-a-token")}},
		{"unknown body key", `{"access_key":"not-a-token"}`, nil},
	}

	for _, endpoint := range endpoints {
		for _, tt := range tests {
			t.Run(endpoint+"/"+tt.name, func(t *testing.T) {
				rec := app.do(t, http.MethodPost, endpoint, tt.body, tt.opts...)
				assertError(t, rec, dto.CodeUnauthorized)
			})
		}
	}

	if got := len(app.scoreboard(t, testDefaultID).Scores); got != 0 {
		t.Errorf("unauthorized requests changed the scoreboard: %d listings", got)
	}
}

func TestScoreboard_AddListing(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	key := app.login(t)

	tests := []struct {
		name      string
		body      string
		opts      []requestOption
		wantName  string
		wantTotal int
	}{
		{"defaults with body key", fmt.Sprintf(`{"access_key":%q}`, key), nil, model.DefaultListingName, 0},
		{"cookie with fields", `{"name":"Team A","total":12}`, []requestOption{withCookie(key)}, "Team A", 12},
		{"bearer with string total", `{"name":"Team B","total":"7"}`, []requestOption{withBearer(key)}, "Team B", 7},
		{"empty body", "", []requestOption{withBearer(key)}, model.DefaultListingName, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := app.do(t, http.MethodPost, "/add-listing", tt.body, tt.opts...)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
			}

			listing := decodeListing(t, rec.Body.Bytes())
			if listing.ListingID == "" {
				t.Error("expected a listing id")
			}
			if listing.Name != tt.wantName || listing.Total != tt.wantTotal {
				t.Errorf("listing = %+v, want name %q total %d", listing, tt.wantName, tt.wantTotal)
			}

			stored, ok := app.scoreboard(t, testDefaultID).Scores[listing.ListingID]
			if !ok {
				t.Fatalf("listing %s not persisted", listing.ListingID)
			}
			if diff := cmp.Diff(listing, dto.ToListingResponse(&stored)); diff != "" {
				t.Errorf("stored listing mismatch (-response +stored):\n%s", diff)
			}
		})
	}
}

func TestScoreboard_EditListingMergesFields(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	key := app.login(t)

	rec := app.do(t, http.MethodPost, "/add-listing", `{"name":"Team A","total":5}`, withCookie(key))
	created := decodeListing(t, rec.Body.Bytes())

	rec = app.do(t, http.MethodPost, "/edit-listing",
		fmt.Sprintf(`{"listing_id":%q,"total":"9"}`, created.ListingID), withCookie(key))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	want := dto.ListingResponse{ListingID: created.ListingID, Name: "Team A", Total: 9}
	if diff := cmp.Diff(want, decodeListing(t, rec.Body.Bytes())); diff != "" {
		t.Errorf("edited listing mismatch (-want +got):\n%s", diff)
	}

	rec = app.do(t, http.MethodPost, "/edit-listing",
		fmt.Sprintf(`{"listing_id":%q,"name":"Team Z"}`, created.ListingID), withCookie(key))
	want.Name = "Team Z"
	if diff := cmp.Diff(want, decodeListing(t, rec.Body.Bytes())); diff != "" {
		t.Errorf("renamed listing mismatch (-want +got):\n%s", diff)
	}
}

func TestScoreboard_DeleteListing(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	key := app.login(t)

	rec := app.do(t, http.MethodPost, "/add-listing", `{}`, withCookie(key))
	created := decodeListing(t, rec.Body.Bytes())
	body := fmt.Sprintf(`{"listing_id":%q}`, created.ListingID)

	rec = app.do(t, http.MethodPost, "/delete-listing", body, withCookie(key))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.DeleteListingResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if !resp.Deleted || resp.ListingID != created.ListingID {
		t.Errorf("unexpected delete response: %+v", resp)
	}

	if _, ok := app.scoreboard(t, testDefaultID).Scores[created.ListingID]; ok {
		t.Error("listing still present after delete")
	}

	rec = app.do(t, http.MethodPost, "/delete-listing", body, withCookie(key))
	assertError(t, rec, dto.CodeListingNotFound)
}

func TestScoreboard_EditScoreboard(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	key := app.login(t)

	app.do(t, http.MethodPost, "/add-listing", `{"name":"Team A"}`, withCookie(key))

	rec := app.do(t, http.MethodPost, "/edit-scoreboard", `{"title":"Spring League"}`, withCookie(key))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp dto.ScoreboardResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Title != "Spring League" || resp.ScoreboardID != testDefaultID {
		t.Errorf("unexpected scoreboard response: %+v", resp)
	}
	if len(resp.Scores) != 1 {
		t.Errorf("title update must not touch scores, got %d listings", len(resp.Scores))
	}
}

func TestScoreboard_SelectsScoreboardByID(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	key := app.login(t)
	other := "0b5a4d59-6c1f-4a7e-9d7c-2f4b8e1a3c55"

	rec := app.do(t, http.MethodPost, "/add-listing",
		fmt.Sprintf(`{"scoreboard_id":%q,"name":"Elsewhere"}`, other), withCookie(key))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	if got := len(app.scoreboard(t, other).Scores); got != 1 {
		t.Errorf("other scoreboard has %d listings, want 1", got)
	}
	if got := len(app.scoreboard(t, testDefaultID).Scores); got != 0 {
		t.Errorf("default scoreboard has %d listings, want 0", got)
	}
}

func TestScoreboard_Errors(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	key := app.login(t)

	tests := []struct {
		name     string
		endpoint string
		body     string
		want     dto.ErrorCode
	}{
		{"edit without listing id", "/edit-listing", `{"name":"x"}`, dto.CodeMissingField},
		{"delete without listing id", "/delete-listing", `{}`, dto.CodeMissingField},
		{"edit unknown listing", "/edit-listing", `{"listing_id":"01ARZ3NDEKTSV4RRFFQ69G5FAV","name":"x"}`, dto.CodeListingNotFound},
		{"delete unknown listing", "/delete-listing", `{"listing_id":"01ARZ3NDEKTSV4RRFFQ69G5FAV"}`, dto.CodeListingNotFound},
		{"title missing", "/edit-scoreboard", `{}`, dto.CodeMissingField},
		{"title blank", "/edit-scoreboard", `{"title":"   "}`, dto.CodeInvalidField},
		{"name blank", "/add-listing", `{"name":""}`, dto.CodeInvalidField},
		{"total not a number", "/add-listing", `{"total":"abc"}`, dto.CodeInvalidField},
		{"name wrong type", "/add-listing", `{"name":5}`, dto.CodeInvalidField},
		{"invalid scoreboard id", "/add-listing", `{"scoreboard_id":"../other"}`, dto.CodeInvalidField},
		{"malformed json", "/add-listing", `{"name":`, dto.CodeMissingField},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rec := app.do(t, http.MethodPost, tt.endpoint, tt.body, withCookie(key))
			assertError(t, rec, tt.want)
		})
	}
}
