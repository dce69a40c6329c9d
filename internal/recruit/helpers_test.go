package recruit

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/xonecas/pnw-recruiter/internal/config"
	"github.com/xonecas/pnw-recruiter/internal/pnw"
	"github.com/xonecas/pnw-recruiter/internal/store"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// sentMessage is one form post received by the fake game.
type sentMessage struct {
	Receiver string
	Subject  string
	Body     string
}

// fakeGame serves a nation listing and accepts login and message posts.
type fakeGame struct {
	mu        sync.Mutex
	nations   []map[string]any
	rawBody   string
	logins    int
	sent      []sentMessage
	failFor   map[string]bool
	noCookie  bool
	fetchHits int
}

func (g *fakeGame) setNations(ns ...map[string]any) {
	g.mu.Lock()
	g.nations = ns
	g.rawBody = ""
	g.mu.Unlock()
}

func (g *fakeGame) setRawBody(body string) {
	g.mu.Lock()
	g.rawBody = body
	g.mu.Unlock()
}

func (g *fakeGame) messages() []sentMessage {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]sentMessage(nil), g.sent...)
}

func (g *fakeGame) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/nations/", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.fetchHits++
		if g.rawBody != "" {
			w.Write([]byte(g.rawBody))
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"success": true, "nations": g.nations})
	})
	mux.HandleFunc("/login/", func(w http.ResponseWriter, r *http.Request) {
		g.mu.Lock()
		defer g.mu.Unlock()
		g.logins++
		if !g.noCookie {
			http.SetCookie(w, &http.Cookie{Name: "session", Value: "ok", Path: "/"})
		}
	})
	mux.HandleFunc("/inbox/message/", func(w http.ResponseWriter, r *http.Request) {
		r.ParseForm()
		g.mu.Lock()
		defer g.mu.Unlock()
		receiver := r.PostForm.Get("receiver")
		if g.failFor[receiver] {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		g.sent = append(g.sent, sentMessage{
			Receiver: receiver,
			Subject:  r.PostForm.Get("subject"),
			Body:     r.PostForm.Get("body"),
		})
	})
	return mux
}

func nation(id int64, leader string) map[string]any {
	return map[string]any{
		"nationid":           id,
		"nation":             leader + "land",
		"leader":             leader,
		"alliance":           "None",
		"cities":             10,
		"minutessinceactive": 5,
		"score":              100.5,
		"infrastructure":     2000,
		"color":              "beige",
	}
}

// testSettings returns valid settings pointing at srv.
func testSettings(srv *httptest.Server) *config.Settings {
	s := config.DefaultSettings()
	s.Sec.User = "me@example.com"
	s.Sec.Pass = "hunter2"
	s.Sec.APIKey = "key"
	s.ReadOnly.Nations = srv.URL + "/api/nations/?key="
	s.ReadOnly.Login = srv.URL + "/login/"
	s.ReadOnly.Msg = srv.URL + "/inbox/message/"
	s.ReadOnly.Delay = 3
	s.ReadOnly.RequestRate = 0
	s.Info.TargetAlliance = config.AllianceList{"None"}
	s.Info.MinCities = 5
	s.Info.MaxInactive = 60
	s.Info.ContactAgain = 7
	s.Info.Frequency = 600
	s.Msg.Subject = "Hello ${leader}"
	s.Msg.Content = "Welcome ${nation} (${cities} cities)"
	return s
}

type engineFixture struct {
	engine *Engine
	game   *fakeGame
	store  *store.Store
	clock  *fakeClock
	sleeps []time.Duration
	bus    *EventBus
}

// setupEngine builds an engine on an in-memory ledger and a fake game.
// mutate may adjust settings before the engine is created.
func setupEngine(t *testing.T, mutate func(*config.Settings)) *engineFixture {
	t.Helper()

	game := &fakeGame{failFor: map[string]bool{}}
	srv := httptest.NewServer(game.handler())
	t.Cleanup(srv.Close)

	clock := &fakeClock{t: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
	s, err := store.OpenMemory(store.WithClock(clock.Now))
	if err != nil {
		t.Fatalf("OpenMemory() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	settings := testSettings(srv)
	if mutate != nil {
		mutate(settings)
	}

	f := &engineFixture{game: game, store: s, clock: clock, bus: NewEventBus(0)}
	client := pnw.NewClient(settings, pnw.WithHTTPClient(srv.Client()))
	f.engine = NewEngine(settings, client, s,
		WithClock(clock.Now),
		WithEventBus(f.bus),
		WithSleep(func(ctx context.Context, d time.Duration) error {
			f.sleeps = append(f.sleeps, d)
			return ctx.Err()
		}),
	)
	return f
}
