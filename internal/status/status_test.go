package status

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xonecas/pnw-recruiter/internal/recruit"
	"github.com/xonecas/pnw-recruiter/internal/store"
)

type fakeEngine struct {
	state recruit.RoundState
	last  *recruit.RoundSummary
}

func (f fakeEngine) State() recruit.RoundState { return f.state }

func (f fakeEngine) LastRound() (recruit.RoundSummary, bool) {
	if f.last == nil {
		return recruit.RoundSummary{}, false
	}
	return *f.last, true
}

func setupStatusTest(t *testing.T, engine Engine) (*gin.Engine, *store.Store) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	s, err := store.OpenMemory(store.WithClock(func() time.Time {
		return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	}))
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	return New(s, engine), s
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	last := &recruit.RoundSummary{ID: "r9", Sent: 4, Failed: 1, Err: errors.New("record contact 3: disk full")}
	h, s := setupStatusTest(t, fakeEngine{state: recruit.StateSending, last: last})

	if err := s.RecordContact(context.Background(), 3); err != nil {
		t.Fatalf("RecordContact() error: %v", err)
	}

	rec := get(t, h, "/healthz")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status    string `json:"status"`
		State     string `json:"state"`
		Contacts  int    `json:"contacts"`
		LastRound struct {
			ID    string `json:"id"`
			Sent  int    `json:"sent"`
			Error string `json:"error"`
		} `json:"last_round"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.State != "sending" || body.Contacts != 1 {
		t.Errorf("unexpected health %+v", body)
	}
	if body.LastRound.ID != "r9" || body.LastRound.Sent != 4 || body.LastRound.Error == "" {
		t.Errorf("unexpected last round %+v", body.LastRound)
	}
}

func TestContactLookup(t *testing.T) {
	h, s := setupStatusTest(t, fakeEngine{state: recruit.StateIdle})
	if err := s.RecordContact(context.Background(), 77); err != nil {
		t.Fatalf("RecordContact() error: %v", err)
	}

	rec := get(t, h, "/contacts/77")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var c store.Contact
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if c.NationID != 77 || !c.TimeSent.Equal(time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected contact %+v", c)
	}

	if rec := get(t, h, "/contacts/78"); rec.Code != http.StatusNotFound {
		t.Errorf("expected 404 for unknown nation, got %d", rec.Code)
	}
	if rec := get(t, h, "/contacts/abc"); rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 for bad id, got %d", rec.Code)
	}
}

func TestListEndpoints(t *testing.T) {
	h, s := setupStatusTest(t, fakeEngine{state: recruit.StateIdle})
	ctx := context.Background()

	for _, id := range []int64{1, 2, 3} {
		if err := s.RecordContact(ctx, id); err != nil {
			t.Fatalf("RecordContact() error: %v", err)
		}
	}
	if err := s.RecordRound(ctx, store.Round{ID: "r1", StartedAt: time.Now(), FinishedAt: time.Now(), Sent: 3}); err != nil {
		t.Fatalf("RecordRound() error: %v", err)
	}

	rec := get(t, h, "/contacts?limit=2")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var contacts struct {
		Contacts []store.Contact `json:"contacts"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &contacts); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(contacts.Contacts) != 2 {
		t.Errorf("expected 2 contacts, got %d", len(contacts.Contacts))
	}

	rec = get(t, h, "/rounds")
	var rounds struct {
		Rounds []store.Round `json:"rounds"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &rounds); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(rounds.Rounds) != 1 || rounds.Rounds[0].Sent != 3 {
		t.Errorf("unexpected rounds %+v", rounds.Rounds)
	}

	for _, bad := range []string{"/rounds?limit=0", "/rounds?limit=x", "/contacts?limit=100000"} {
		if rec := get(t, h, bad); rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d", bad, rec.Code)
		}
	}
}

func TestServeStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Serve(ctx, "127.0.0.1:0", http.NotFoundHandler()) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Serve() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Serve() did not stop")
	}
}
