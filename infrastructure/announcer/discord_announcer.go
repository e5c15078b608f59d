package announcer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"celestia/domain/entities"
	"celestia/events"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

const colorSuccess = 0x57F287

// DefaultPostTimeout bounds a single webhook call
const DefaultPostTimeout = 10 * time.Second

// WebhookExecutor is the subset of *discordgo.Session used to post announcements
type WebhookExecutor interface {
	WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// DiscordAnnouncer posts big game wins to a Discord webhook
type DiscordAnnouncer struct {
	executor     WebhookExecutor
	webhookID    string
	webhookToken string
	minStake     decimal.Decimal
	postTimeout  time.Duration

	inflight sync.WaitGroup
}

// NewDiscordAnnouncer creates an announcer posting through a tokenless discordgo session
func NewDiscordAnnouncer(webhookID, webhookToken string, minStake decimal.Decimal) (*DiscordAnnouncer, error) {
	session, err := discordgo.New("")
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	return NewDiscordAnnouncerWithExecutor(session, webhookID, webhookToken, minStake), nil
}

// NewDiscordAnnouncerWithExecutor creates an announcer around an existing executor
func NewDiscordAnnouncerWithExecutor(executor WebhookExecutor, webhookID, webhookToken string, minStake decimal.Decimal) *DiscordAnnouncer {
	return &DiscordAnnouncer{
		executor:     executor,
		webhookID:    webhookID,
		webhookToken: webhookToken,
		minStake:     minStake,
		postTimeout:  DefaultPostTimeout,
	}
}

// HandleGamePlayed is registered as a local handler for game_played events.
// It runs during commit, so the webhook call happens in the background.
func (a *DiscordAnnouncer) HandleGamePlayed(ctx context.Context, event events.Event) error {
	played, ok := event.(events.GamePlayedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	if played.Result != entities.GameResultWon || played.StakeAmount.LessThan(a.minStake) {
		return nil
	}

	a.inflight.Add(1)
	go func() {
		defer a.inflight.Done()

		postCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), a.postTimeout)
		defer cancel()

		if err := a.post(postCtx, played); err != nil {
			log.WithFields(log.Fields{
				"game_id": played.GameID,
				"error":   err,
			}).Warn("Failed to announce big win")
		}
	}()
	return nil
}

// Wait blocks until in-flight announcements finish
func (a *DiscordAnnouncer) Wait() {
	a.inflight.Wait()
}

func (a *DiscordAnnouncer) post(ctx context.Context, played events.GamePlayedEvent) error {
	params := &discordgo.WebhookParams{
		Username: "Celestia",
		Embeds:   []*discordgo.MessageEmbed{buildWinEmbed(played)},
	}
	if _, err := a.executor.WebhookExecute(a.webhookID, a.webhookToken, false, params, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("failed to post announcement: %w", err)
	}

	log.WithFields(log.Fields{
		"user_id":   played.UserID,
		"game_type": played.GameType,
		"stake":     played.StakeAmount.String(),
	}).Info("Announced big win")
	return nil
}

func buildWinEmbed(played events.GamePlayedEvent) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title:       "Big win!",
		Description: fmt.Sprintf("A student from **%s** just won a %s game.", played.InstitutionCode, gameLabel(played.GameType)),
		Color:       colorSuccess,
		Timestamp:   time.Now().Format(time.RFC3339),
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Stake", Value: fmt.Sprintf("**%s tokens**", played.StakeAmount.StringFixed(2)), Inline: true},
			{Name: "New balance", Value: played.NewBalance.StringFixed(2), Inline: true},
		},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Game ID: %d", played.GameID),
		},
	}
}

func gameLabel(gameType entities.GameType) string {
	switch gameType {
	case entities.GameTypeCoinFlip:
		return "coin flip"
	case entities.GameTypeDiceRoll:
		return "dice roll"
	case entities.GameTypeNumberGuess:
		return "number guess"
	default:
		return string(gameType)
	}
}
