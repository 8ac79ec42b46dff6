// Giorgio - Jellyfin Watch Tracking and Discord Rating Bot
// Copyright 2026 Giorgio contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/giorgiobot/giorgio

// Package bot runs Giorgio's Discord side: the gateway session, the
// 1-10 rating prompts with buttons, and the mailbox that hands
// playback events over from the webhook pipeline.
package bot

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/giorgiobot/giorgio/internal/database"
	"github.com/giorgiobot/giorgio/internal/logging"
	"github.com/giorgiobot/giorgio/internal/metrics"
)

// promptTTL is how long a rating prompt stays clickable.
const promptTTL = 24 * time.Hour

// customIDPrefix namespaces Giorgio's button interactions.
const customIDPrefix = "rating"

// RatingStore is the slice of the persistence layer the bot writes
// ratings to.
type RatingStore interface {
	UpdateRating(ctx context.Context, watchEventID uint, rating int) error
}

// pendingPrompt tracks a sent prompt until it is answered or expires.
type pendingPrompt struct {
	req    RatingRequest
	expire *time.Timer
}

// Bot is Giorgio's Discord presence. It posts rating prompts into the
// configured channel and persists the first button press on each.
type Bot struct {
	session   *discordgo.Session
	channelID string
	store     RatingStore

	ready     chan struct{}
	readyOnce sync.Once

	mu      sync.Mutex
	pending map[string]*pendingPrompt // message ID -> prompt

	// ttl is promptTTL in production, shortened in tests.
	ttl time.Duration
}

var _ PromptSender = (*Bot)(nil)

// New creates the Discord bot. The session is not opened until Serve
// runs.
func New(token, channelID string, store RatingStore) (*Bot, error) {
	session, err := discordgo.New("Bot " + token)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	// Message content is needed to read mentions.
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	b := &Bot{
		session:   session,
		channelID: channelID,
		store:     store,
		ready:     make(chan struct{}),
		pending:   make(map[string]*pendingPrompt),
		ttl:       promptTTL,
	}

	session.AddHandler(b.handleReady)
	session.AddHandler(b.handleInteraction)
	session.AddHandler(b.handleMessage)

	return b, nil
}

// Ready returns a channel closed once the gateway session is up.
func (b *Bot) Ready() <-chan struct{} { return b.ready }

// IsReady reports whether the gateway session is established.
func (b *Bot) IsReady() bool {
	select {
	case <-b.ready:
		return true
	default:
		return false
	}
}

// Serve implements suture.Service: it opens the gateway session and
// holds it until the context is cancelled.
func (b *Bot) Serve(ctx context.Context) error {
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	defer func() { _ = b.session.Close() }()

	<-ctx.Done()
	return ctx.Err()
}

// String names the service in supervisor logs.
func (b *Bot) String() string { return "discord-bot" }

func (b *Bot) handleReady(s *discordgo.Session, r *discordgo.Ready) {
	b.readyOnce.Do(func() { close(b.ready) })
	logging.Info().
		Str("username", r.User.Username).
		Msg("Mamma mia! Giorgio è arrivato")
}

// mentionsUser reports whether the message mentions the given user.
func mentionsUser(m *discordgo.MessageCreate, userID string) bool {
	for _, u := range m.Mentions {
		if u.ID == userID {
			return true
		}
	}
	return false
}

// handleMessage answers messages that mention Giorgio. Everything else
// in the channel is none of his business.
func (b *Bot) handleMessage(s *discordgo.Session, m *discordgo.MessageCreate) {
	if s.State.User == nil || m.Author == nil || m.Author.ID == s.State.User.ID {
		return
	}
	if !mentionsUser(m, s.State.User.ID) {
		return
	}

	_, err := s.ChannelMessageSendReply(m.ChannelID, mentionReply(m.Content), m.Reference())
	if err != nil {
		logging.Error().Err(err).
			Str("channel_id", m.ChannelID).
			Msg("Failed to reply to mention")
	}
}

// SendRatingPrompt posts the rating message with two rows of buttons
// and arms the expiry timer.
func (b *Bot) SendRatingPrompt(ctx context.Context, req RatingRequest) error {
	var intro string
	if strings.EqualFold(req.ContentType, "Episode") {
		intro = fmt.Sprintf("📺 *Ecco!* **%s** just finished an episode of **%s**!", req.Username, req.ContentName)
	} else {
		intro = fmt.Sprintf("🎬 *Bellissimo!* **%s** just finished **%s**!", req.Username, req.ContentName)
	}

	content := fmt.Sprintf(
		"%s\n\nSo, *caro mio*, how was it? Rate this work from 1 to 10!\n"+
			"*(1 = mamma mia what a horror, 10 = absolute masterpiece)*",
		intro,
	)

	msg, err := b.session.ChannelMessageSendComplex(b.channelID, &discordgo.MessageSend{
		Content:    content,
		Components: ratingButtonRows(req.WatchEventID),
	}, discordgo.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("failed to send rating prompt: %w", err)
	}

	prompt := &pendingPrompt{req: req}
	prompt.expire = time.AfterFunc(b.ttl, func() { b.expirePrompt(msg.ID) })

	b.mu.Lock()
	b.pending[msg.ID] = prompt
	b.mu.Unlock()

	metrics.RatingPromptsTotal.Inc()
	logging.Info().
		Str("content", req.ContentName).
		Str("username", req.Username).
		Msg("Rating prompt sent")
	return nil
}

// ratingButtonRows builds the 1-10 buttons, five per row, colored by
// band: 1-3 red, 4-6 grey, 7-8 blurple, 9-10 green.
func ratingButtonRows(watchEventID uint) []discordgo.MessageComponent {
	rows := make([]discordgo.MessageComponent, 0, 2)
	for row := 0; row < 2; row++ {
		buttons := make([]discordgo.MessageComponent, 0, 5)
		for i := 1; i <= 5; i++ {
			value := row*5 + i
			buttons = append(buttons, discordgo.Button{
				Label:    strconv.Itoa(value),
				Style:    buttonStyle(value),
				CustomID: ratingCustomID(watchEventID, value),
			})
		}
		rows = append(rows, discordgo.ActionsRow{Components: buttons})
	}
	return rows
}

func buttonStyle(rating int) discordgo.ButtonStyle {
	switch {
	case rating <= 3:
		return discordgo.DangerButton
	case rating <= 6:
		return discordgo.SecondaryButton
	case rating <= 8:
		return discordgo.PrimaryButton
	default:
		return discordgo.SuccessButton
	}
}

// ratingCustomID encodes the watch event and value into a button's
// custom ID, e.g. "rating:42:8".
func ratingCustomID(watchEventID uint, value int) string {
	return fmt.Sprintf("%s:%d:%d", customIDPrefix, watchEventID, value)
}

// parseRatingCustomID is the inverse of ratingCustomID.
func parseRatingCustomID(customID string) (watchEventID uint, value int, ok bool) {
	parts := strings.Split(customID, ":")
	if len(parts) != 3 || parts[0] != customIDPrefix {
		return 0, 0, false
	}
	id, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, false
	}
	v, err := strconv.Atoi(parts[2])
	if err != nil || v < 1 || v > 10 {
		return 0, 0, false
	}
	return uint(id), v, true
}

// takePending removes and returns the prompt for a message, if any.
// Only the first caller for a given message wins.
func (b *Bot) takePending(messageID string) (*pendingPrompt, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	prompt, ok := b.pending[messageID]
	if ok {
		delete(b.pending, messageID)
	}
	return prompt, ok
}

func (b *Bot) handleInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionMessageComponent {
		return
	}

	watchEventID, rating, ok := parseRatingCustomID(i.MessageComponentData().CustomID)
	if !ok {
		return
	}

	prompt, ok := b.takePending(i.Message.ID)
	if !ok {
		// Stale or already-answered prompt: acknowledge so the client
		// does not show an error, change nothing.
		_ = s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredMessageUpdate,
		})
		return
	}
	prompt.expire.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := b.store.UpdateRating(ctx, watchEventID, rating); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			logging.Warn().
				Uint("watch_event_id", watchEventID).
				Msg("Rating for unknown watch event ignored")
		} else {
			logging.Error().Err(err).
				Uint("watch_event_id", watchEventID).
				Msg("Failed to persist rating")
		}
	} else {
		metrics.RatingsTotal.WithLabelValues(strconv.Itoa(rating)).Inc()
		logging.Info().
			Str("content", prompt.req.ContentName).
			Int("rating", rating).
			Msg("Rating saved")
	}

	// Replace the prompt with the confirmation and drop the buttons so
	// the message becomes inert.
	content := fmt.Sprintf("✅ You rated **%s**: **%d/10**\n\n%s",
		prompt.req.ContentName, rating, giorgioReaction(rating))
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: &discordgo.InteractionResponseData{
			Content:    content,
			Components: []discordgo.MessageComponent{},
		},
	})
	if err != nil {
		logging.Error().Err(err).Msg("Failed to update rating message")
	}
}

// expirePrompt fires when a prompt's TTL elapses unanswered: the
// buttons are removed and the message marked as expired.
func (b *Bot) expirePrompt(messageID string) {
	prompt, ok := b.takePending(messageID)
	if !ok {
		return
	}

	content := fmt.Sprintf("⌛ The rating window for **%s** has closed. *Peccato...*",
		prompt.req.ContentName)
	components := []discordgo.MessageComponent{}
	_, err := b.session.ChannelMessageEditComplex(&discordgo.MessageEdit{
		ID:         messageID,
		Channel:    b.channelID,
		Content:    &content,
		Components: &components,
	})
	if err != nil {
		logging.Error().Err(err).
			Str("message_id", messageID).
			Msg("Failed to expire rating prompt")
	}

	metrics.RatingPromptsExpired.Inc()
	logging.Info().
		Str("content", prompt.req.ContentName).
		Msg("Rating prompt expired unanswered")
}
