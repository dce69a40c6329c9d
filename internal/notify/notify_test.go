package notify

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/xonecas/pnw-recruiter/internal/recruit"
)

type fakeSender struct {
	mu    sync.Mutex
	posts []string
	err   error
}

func (f *fakeSender) ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.posts = append(f.posts, channelID+"|"+content)
	return &discordgo.Message{Content: content}, f.err
}

func (f *fakeSender) all() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.posts...)
}

func TestFormat(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	summary := recruit.RoundSummary{
		ID:         "r1",
		StartedAt:  start,
		FinishedAt: start.Add(90 * time.Second),
		Fetched:    50,
		Eligible:   4,
		Sent:       3,
		Failed:     1,
	}

	msg, ok := Format(recruit.Event{Type: recruit.EventRoundFinished, Data: summary})
	if !ok {
		t.Fatal("expected finished round to be posted")
	}
	if !strings.Contains(msg, "50 fetched, 4 eligible, 3 sent, 1 failed (1m30s)") {
		t.Errorf("unexpected message %q", msg)
	}

	summary.Err = errors.New("fetch nations: timeout")
	msg, ok = Format(recruit.Event{Type: recruit.EventRoundFailed, Data: summary})
	if !ok || !strings.Contains(msg, "fetch nations: timeout") {
		t.Errorf("unexpected failure message %q", msg)
	}

	if _, ok := Format(recruit.Event{Type: recruit.EventMessageSent}); ok {
		t.Error("expected per-message events to be skipped")
	}
}

func TestNotifierRun(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, "chan-1")

	bus := recruit.NewEventBus(0)
	events := bus.Subscribe()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		n.Run(ctx, events)
		close(done)
	}()

	bus.Publish(recruit.Event{Type: recruit.EventRoundStarted, RoundID: "r1"})
	bus.Publish(recruit.Event{Type: recruit.EventRoundFinished, RoundID: "r1", Data: recruit.RoundSummary{ID: "r1", Sent: 2}})

	deadline := time.After(2 * time.Second)
	for len(sender.all()) < 1 {
		select {
		case <-deadline:
			t.Fatal("timeout waiting for discord post")
		case <-time.After(5 * time.Millisecond):
		}
	}

	cancel()
	<-done

	posts := sender.all()
	if len(posts) != 1 || !strings.HasPrefix(posts[0], "chan-1|") {
		t.Errorf("expected one post to chan-1, got %v", posts)
	}
}

func TestNotifierStopsWhenEventsClose(t *testing.T) {
	sender := &fakeSender{err: errors.New("rate limited")}
	n := New(sender, "chan-1")

	events := make(chan recruit.Event, 1)
	events <- recruit.Event{Type: recruit.EventRoundFailed, Data: recruit.RoundSummary{}}
	close(events)

	done := make(chan struct{})
	go func() {
		n.Run(context.Background(), events)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after events closed")
	}
	if len(sender.all()) != 1 {
		t.Error("expected the failed round to be posted despite the send error")
	}
}

func TestNewDiscord(t *testing.T) {
	n, err := NewDiscord("token", "chan")
	if err != nil {
		t.Fatalf("NewDiscord() error: %v", err)
	}
	if n.channelID != "chan" {
		t.Errorf("expected channel chan, got %s", n.channelID)
	}
}
