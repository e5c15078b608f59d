package announcer

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"celestia/domain/entities"
	"celestia/events"

	"github.com/bwmarrin/discordgo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	args := m.Called(webhookID, token, data)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*discordgo.Message), args.Error(1)
}

func played(result entities.GameResult, stake int64) events.GamePlayedEvent {
	return events.GamePlayedEvent{
		GameID:          3,
		UserID:          9,
		InstitutionCode: "UNN01",
		GameType:        entities.GameTypeDiceRoll,
		StakeAmount:     decimal.NewFromInt(stake),
		Result:          result,
		NewBalance:      decimal.NewFromInt(1000),
	}
}

func TestDiscordAnnouncer_PostsBigWins(t *testing.T) {
	executor := &mockExecutor{}
	executor.On("WebhookExecute", "hook-id", "hook-token", mock.MatchedBy(func(p *discordgo.WebhookParams) bool {
		return len(p.Embeds) == 1 && p.Embeds[0].Footer.Text == "Game ID: 3"
	})).Return(&discordgo.Message{}, nil).Once()

	announcer := NewDiscordAnnouncerWithExecutor(executor, "hook-id", "hook-token", decimal.NewFromInt(100))
	require.NoError(t, announcer.HandleGamePlayed(context.Background(), played(entities.GameResultWon, 100)))
	announcer.Wait()

	executor.AssertExpectations(t)
}

func TestDiscordAnnouncer_SkipsSmallOrLostGames(t *testing.T) {
	executor := &mockExecutor{}
	announcer := NewDiscordAnnouncerWithExecutor(executor, "hook-id", "hook-token", decimal.NewFromInt(100))

	require.NoError(t, announcer.HandleGamePlayed(context.Background(), played(entities.GameResultWon, 99)))
	require.NoError(t, announcer.HandleGamePlayed(context.Background(), played(entities.GameResultLost, 500)))
	announcer.Wait()

	executor.AssertNotCalled(t, "WebhookExecute", mock.Anything, mock.Anything, mock.Anything)
}

func TestDiscordAnnouncer_Errors(t *testing.T) {
	executor := &mockExecutor{}
	executor.On("WebhookExecute", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("rate limited")).Once()
	announcer := NewDiscordAnnouncerWithExecutor(executor, "hook-id", "hook-token", decimal.Zero)

	// webhook failures are logged, never returned into the commit path
	require.NoError(t, announcer.HandleGamePlayed(context.Background(), played(entities.GameResultWon, 1)))
	announcer.Wait()
	executor.AssertExpectations(t)

	err := announcer.HandleGamePlayed(context.Background(), events.UserRegisteredEvent{})
	require.Error(t, err)
}

type blockingExecutor struct {
	release chan struct{}
	calls   atomic.Int32
}

func (b *blockingExecutor) WebhookExecute(webhookID, token string, wait bool, data *discordgo.WebhookParams, options ...discordgo.RequestOption) (*discordgo.Message, error) {
	<-b.release
	b.calls.Add(1)
	return &discordgo.Message{}, nil
}

func TestDiscordAnnouncer_SlowWebhookDoesNotBlockCaller(t *testing.T) {
	executor := &blockingExecutor{release: make(chan struct{})}
	announcer := NewDiscordAnnouncerWithExecutor(executor, "hook-id", "hook-token", decimal.Zero)

	// the caller's context is cancelled right after commit; the post must outlive it
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- announcer.HandleGamePlayed(ctx, played(entities.GameResultWon, 500))
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("HandleGamePlayed waited for the webhook")
	}
	cancel()

	assert.Equal(t, int32(0), executor.calls.Load())
	close(executor.release)
	announcer.Wait()
	assert.Equal(t, int32(1), executor.calls.Load())
}
