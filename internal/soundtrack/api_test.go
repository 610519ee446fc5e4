package soundtrack

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/zonetune/zonetune/internal/cache"
)

func newTestApi(url string, c cache.Cache) *Api {
	client := NewClient(ClientConfig{
		URL:        url,
		APIToken:   "test-token",
		RetryDelay: time.Millisecond,
	})
	return NewApi(client, c)
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

func decodeRequest(t *testing.T, r *http.Request) graphqlRequest {
	t.Helper()
	var req graphqlRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		t.Fatalf("failed to decode request: %v", err)
	}
	return req
}

func TestAccountZonesFollowsCursor(t *testing.T) {
	pages := map[string]string{
		"": `{"data":{"account":{"id":"acc-1","soundZones":{
			"pageInfo":{"hasNextPage":true,"endCursor":"c1"},
			"edges":[{"node":{"id":"z1","name":"Lobby"}},{"node":{"id":"z2","name":"Bar"}}]}}}}`,
		"c1": `{"data":{"account":{"id":"acc-1","soundZones":{
			"pageInfo":{"hasNextPage":true,"endCursor":"c2"},
			"edges":[{"node":{"id":"z3","name":"Gym"}},{"node":{"id":"z4","name":"Spa"}}]}}}}`,
		"c2": `{"data":{"account":{"id":"acc-1","soundZones":{
			"pageInfo":{"hasNextPage":false,"endCursor":null},
			"edges":[{"node":{"id":"z5","name":"Pool"}}]}}}}`,
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		cursor, _ := req.Variables["cursor"].(string)
		body, ok := pages[cursor]
		if !ok {
			t.Errorf("unexpected cursor %q", cursor)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		fmt.Fprint(w, body)
	}))
	defer server.Close()

	api := newTestApi(server.URL, nil)

	zones, err := api.AccountZones(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("AccountZones failed: %v", err)
	}
	if len(zones) != 5 {
		t.Fatalf("expected 5 zones, got %d", len(zones))
	}
	for i, wantID := range []string{"z1", "z2", "z3", "z4", "z5"} {
		if zones[i].ID != wantID {
			t.Fatalf("zone %d: expected %s, got %s", i, wantID, zones[i].ID)
		}
	}
	for _, zone := range zones {
		if zone.Account.ID != "acc-1" {
			t.Fatalf("zone %s missing account ref, got %q", zone.ID, zone.Account.ID)
		}
	}
}

func TestAccountsCacheAside(t *testing.T) {
	var requests int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		fmt.Fprint(w, `{"data":{"me":{"accounts":{"edges":[{"node":{"id":"acc-1","businessName":"Cafe"}}]}}}}`)
	}))
	defer server.Close()

	api := newTestApi(server.URL, cache.NewMemoryCache())
	ctx := context.Background()

	// Miss, fetch, write through.
	first, err := api.Accounts(ctx, false)
	if err != nil {
		t.Fatalf("Accounts failed: %v", err)
	}
	if len(first) != 1 || first[0].ID != "acc-1" {
		t.Fatalf("unexpected accounts: %+v", first)
	}

	// Hit, no request.
	if _, err := api.Accounts(ctx, false); err != nil {
		t.Fatalf("Accounts failed: %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 1 {
		t.Fatalf("expected 1 upstream request after cache hit, got %d", got)
	}

	// skipCache forces a live fetch and does not touch the cached entry.
	if _, err := api.Accounts(ctx, true); err != nil {
		t.Fatalf("Accounts failed: %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 2 {
		t.Fatalf("expected 2 upstream requests after skipCache, got %d", got)
	}

	// The entry written on the first call still serves.
	if _, err := api.Accounts(ctx, false); err != nil {
		t.Fatalf("Accounts failed: %v", err)
	}
	if got := atomic.LoadInt32(&requests); got != 2 {
		t.Fatalf("expected cached read after skipCache, got %d requests", got)
	}
}

func TestAssignableResolvesEitherBranch(t *testing.T) {
	responses := []string{
		`{"data":{"playlist":{"__typename":"Playlist","id":"pl-1","name":"Morning"},"schedule":null},
			"errors":[{"message":"not a schedule","path":["schedule"]}]}`,
		`{"data":{"playlist":null,"schedule":{"__typename":"Schedule","id":"sch-1","name":"Weekly"}},
			"errors":[{"message":"not a playlist","path":["playlist"]}]}`,
		`{"data":{"playlist":null,"schedule":null},
			"errors":[{"message":"not found","path":["playlist"]},{"message":"not found","path":["schedule"]}]}`,
	}
	var call int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := atomic.AddInt32(&call, 1) - 1
		fmt.Fprint(w, responses[i])
	}))
	defer server.Close()

	api := newTestApi(server.URL, nil)
	ctx := context.Background()

	playlist, err := api.Assignable(ctx, "pl-1")
	if err != nil {
		t.Fatalf("Assignable failed: %v", err)
	}
	if playlist == nil || playlist.Kind != "Playlist" || playlist.ID != "pl-1" {
		t.Fatalf("unexpected assignable: %+v", playlist)
	}

	schedule, err := api.Assignable(ctx, "sch-1")
	if err != nil {
		t.Fatalf("Assignable failed: %v", err)
	}
	if schedule == nil || schedule.Kind != "Schedule" {
		t.Fatalf("unexpected assignable: %+v", schedule)
	}

	missing, err := api.Assignable(ctx, "nope")
	if err != nil {
		t.Fatalf("Assignable failed: %v", err)
	}
	if missing != nil {
		t.Fatalf("expected nil for unknown id, got %+v", missing)
	}
}

func TestAssignMusicSendsVariables(t *testing.T) {
	var gotVars map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req := decodeRequest(t, r)
		gotVars = req.Variables
		fmt.Fprint(w, `{"data":{"setPlayFrom":{"__typename":"SetPlayFromPayload"}}}`)
	}))
	defer server.Close()

	api := newTestApi(server.URL, nil)

	if err := api.AssignMusic(context.Background(), "zone-9", "playlist-7"); err != nil {
		t.Fatalf("AssignMusic failed: %v", err)
	}
	if gotVars["zoneId"] != "zone-9" || gotVars["playFromId"] != "playlist-7" {
		t.Fatalf("unexpected variables: %+v", gotVars)
	}
}
