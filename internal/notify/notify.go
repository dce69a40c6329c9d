// Package notify posts round summaries to a Discord channel.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/xonecas/pnw-recruiter/internal/recruit"
)

// ChannelSender is the part of a Discord session the notifier needs.
type ChannelSender interface {
	ChannelMessageSend(channelID string, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// Notifier forwards round outcomes from the event bus to Discord.
type Notifier struct {
	sender    ChannelSender
	channelID string
}

// New creates a notifier that posts through sender.
func New(sender ChannelSender, channelID string) *Notifier {
	return &Notifier{sender: sender, channelID: channelID}
}

// NewDiscord creates a notifier backed by a bot-token REST session.
// No gateway connection is opened; only channel messages are sent.
func NewDiscord(token, channelID string) (*Notifier, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("create discord session: %w", err)
	}
	return New(session, channelID), nil
}

// Run posts one message per finished or failed round until ctx is done or events closes.
func (n *Notifier) Run(ctx context.Context, events <-chan recruit.Event) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			content, ok := Format(ev)
			if !ok {
				continue
			}
			if _, err := n.sender.ChannelMessageSend(n.channelID, content); err != nil {
				log.Warn().Err(err).Str("round", ev.RoundID).Msg("Failed to post round summary to Discord")
			}
		}
	}
}

// Format renders the Discord message for ev. Only round outcomes are posted.
func Format(ev recruit.Event) (string, bool) {
	summary, ok := ev.Data.(recruit.RoundSummary)
	if !ok {
		return "", false
	}

	switch ev.Type {
	case recruit.EventRoundFinished:
		return fmt.Sprintf("**Recruitment round finished**: %d fetched, %d eligible, %d sent, %d failed (%s)",
			summary.Fetched, summary.Eligible, summary.Sent, summary.Failed, summary.Duration().Round(time.Second)), true
	case recruit.EventRoundFailed:
		reason := "unknown error"
		if summary.Err != nil {
			reason = summary.Err.Error()
		}
		return fmt.Sprintf("**Recruitment round aborted** after %d sent, %d failed: %s",
			summary.Sent, summary.Failed, reason), true
	default:
		return "", false
	}
}
