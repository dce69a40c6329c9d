package recruit

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/xonecas/pnw-recruiter/internal/pnw"
)

// Reason explains an eligibility verdict.
type Reason string

const (
	ReasonEligible          Reason = "eligible"
	ReasonNeverContacted    Reason = "never contacted"
	ReasonAlliance          Reason = "alliance not targeted"
	ReasonTooFewCities      Reason = "too few cities"
	ReasonTooInactive       Reason = "inactive too long"
	ReasonExcluded          Reason = "excluded"
	ReasonRecentlyContacted Reason = "contacted recently"
)

// ShouldContact reports whether n may be messaged now. It reads the ledger but never writes it.
func (e *Engine) ShouldContact(ctx context.Context, n pnw.Nation) (bool, error) {
	ok, _, err := e.evaluate(ctx, n)
	return ok, err
}

// evaluate applies the rules in order; the first rule that rejects wins.
func (e *Engine) evaluate(ctx context.Context, n pnw.Nation) (bool, Reason, error) {
	info := e.settings.Info

	if !info.TargetAlliance.Contains(n.Alliance) {
		return false, ReasonAlliance, nil
	}
	if n.Cities < info.MinCities {
		return false, ReasonTooFewCities, nil
	}
	if n.MinutesSinceActive > info.MaxInactive {
		return false, ReasonTooInactive, nil
	}
	// Manual do-not-contact list: nothing in the ledger can override it.
	if info.Exclude.Contains(n.ID) {
		return false, ReasonExcluded, nil
	}

	last, contacted, err := e.ledger.LastContactTime(ctx, n.ID)
	if err != nil {
		return false, "", err
	}
	if !contacted {
		return true, ReasonNeverContacted, nil
	}
	if e.now().Sub(last) < e.settings.ContactAgain() {
		return false, ReasonRecentlyContacted, nil
	}
	return true, ReasonEligible, nil
}

// Filter returns the nations that should be contacted, in their original order.
func (e *Engine) Filter(ctx context.Context, nations []pnw.Nation) ([]pnw.Nation, error) {
	var targets []pnw.Nation
	for _, n := range nations {
		ok, reason, err := e.evaluate(ctx, n)
		if err != nil {
			return nil, err
		}
		log.Debug().Int64("nation_id", n.ID).Bool("eligible", ok).Str("reason", string(reason)).Msg("Evaluated nation")
		if ok {
			targets = append(targets, n)
		}
	}
	return targets, nil
}
