package recruit

import (
	"context"
	"testing"
	"time"

	"github.com/xonecas/pnw-recruiter/internal/config"
	"github.com/xonecas/pnw-recruiter/internal/pnw"
)

func eligibleNation() pnw.Nation {
	return pnw.Nation{
		ID:                 100,
		Name:               "Landia",
		Leader:             "Bob",
		Alliance:           "None",
		Cities:             10,
		MinutesSinceActive: 5,
	}
}

func TestShouldContactRules(t *testing.T) {
	f := setupEngine(t, func(s *config.Settings) {
		s.Info.Exclude = config.IDList{666}
	})
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(n *pnw.Nation)
		want   bool
		reason Reason
	}{
		{"eligible", func(n *pnw.Nation) {}, true, ReasonNeverContacted},
		{"alliance not targeted", func(n *pnw.Nation) { n.Alliance = "1234" }, false, ReasonAlliance},
		{"alliance wins over everything", func(n *pnw.Nation) {
			n.Alliance = "Rose"
			n.Cities = 0
			n.ID = 666
		}, false, ReasonAlliance},
		{"too few cities", func(n *pnw.Nation) { n.Cities = 4 }, false, ReasonTooFewCities},
		{"cities at threshold", func(n *pnw.Nation) { n.Cities = 5 }, true, ReasonNeverContacted},
		{"too inactive", func(n *pnw.Nation) { n.MinutesSinceActive = 61 }, false, ReasonTooInactive},
		{"inactive at threshold", func(n *pnw.Nation) { n.MinutesSinceActive = 60 }, true, ReasonNeverContacted},
		{"excluded and never contacted", func(n *pnw.Nation) { n.ID = 666 }, false, ReasonExcluded},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := eligibleNation()
			tt.mutate(&n)

			ok, reason, err := f.engine.evaluate(ctx, n)
			if err != nil {
				t.Fatalf("evaluate() error: %v", err)
			}
			if ok != tt.want || reason != tt.reason {
				t.Errorf("expected (%v, %q), got (%v, %q)", tt.want, tt.reason, ok, reason)
			}

			got, err := f.engine.ShouldContact(ctx, n)
			if err != nil {
				t.Fatalf("ShouldContact() error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ShouldContact() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestShouldContactMultipleTargetAlliances(t *testing.T) {
	f := setupEngine(t, func(s *config.Settings) {
		s.Info.TargetAlliance = config.AllianceList{"None", "42"}
	})

	n := eligibleNation()
	n.Alliance = "42"
	if ok, _ := f.engine.ShouldContact(context.Background(), n); !ok {
		t.Error("expected nation in a targeted alliance to be eligible")
	}
}

func TestShouldContactExcludedEvenWhenStale(t *testing.T) {
	f := setupEngine(t, func(s *config.Settings) {
		s.Info.Exclude = config.IDList{100}
	})
	ctx := context.Background()

	if err := f.store.RecordContact(ctx, 100); err != nil {
		t.Fatalf("RecordContact() error: %v", err)
	}
	f.clock.Advance(365 * 24 * time.Hour)

	if ok, _ := f.engine.ShouldContact(ctx, eligibleNation()); ok {
		t.Error("expected excluded nation never to be eligible")
	}
}

func TestShouldContactRecency(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()
	n := eligibleNation()

	if err := f.store.RecordContact(ctx, n.ID); err != nil {
		t.Fatalf("RecordContact() error: %v", err)
	}

	window := 7 * 24 * time.Hour

	f.clock.Advance(window - time.Second)
	ok, reason, err := f.engine.evaluate(ctx, n)
	if err != nil {
		t.Fatalf("evaluate() error: %v", err)
	}
	if ok || reason != ReasonRecentlyContacted {
		t.Errorf("expected contact_again-ε to be ineligible, got (%v, %q)", ok, reason)
	}

	f.clock.Advance(2 * time.Second)
	ok, reason, err = f.engine.evaluate(ctx, n)
	if err != nil {
		t.Fatalf("evaluate() error: %v", err)
	}
	if !ok || reason != ReasonEligible {
		t.Errorf("expected contact_again+ε to be eligible, got (%v, %q)", ok, reason)
	}
}

func TestShouldContactDoesNotWriteLedger(t *testing.T) {
	f := setupEngine(t, nil)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := f.engine.ShouldContact(ctx, eligibleNation()); err != nil {
			t.Fatalf("ShouldContact() error: %v", err)
		}
	}

	count, err := f.store.CountContacts(ctx)
	if err != nil {
		t.Fatalf("CountContacts() error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected ledger untouched, got %d records", count)
	}
}

func TestFilterPreservesOrder(t *testing.T) {
	f := setupEngine(t, nil)

	var nations []pnw.Nation
	for _, id := range []int64{5, 3, 9, 1} {
		n := eligibleNation()
		n.ID = id
		if id == 9 {
			n.Cities = 0
		}
		nations = append(nations, n)
	}

	targets, err := f.engine.Filter(context.Background(), nations)
	if err != nil {
		t.Fatalf("Filter() error: %v", err)
	}

	var ids []int64
	for _, n := range targets {
		ids = append(ids, n.ID)
	}
	if len(ids) != 3 || ids[0] != 5 || ids[1] != 3 || ids[2] != 1 {
		t.Errorf("expected [5 3 1], got %v", ids)
	}
}
