package requestpasswordreset

import (
	"context"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	"passreset/internal/core/domain/logging"
	"passreset/internal/core/services"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

const EMAIL = c.Email("a@x.com")

var NOW = time.Date(2020, 6, 6, 15, 30, 30, 0, time.UTC)

type suite struct {
	log       *logging.FakeLogger
	repo      *account.FakeRepository
	generator *account.FakeResetTokenGenerator
	hasher    *account.FakeResetTokenHasher
	notifier  *account.FakeResetNotifier
	now       time.Time
}

func setupSuite() *suite {
	repo := account.NewFakeRepository()
	repo.Accounts = []account.Account{{ID: 1, Email: EMAIL, PasswordHash: "old", CreatedAt: NOW}}
	return &suite{
		log:       logging.NewFakeLogger(),
		repo:      repo,
		generator: account.NewFakeResetTokenGenerator(),
		hasher:    account.NewFakeResetTokenHasher(),
		notifier:  account.NewFakeResetNotifier(),
		now:       NOW,
	}
}

func (s *suite) createService() services.Service[Input, Result] {
	return New(
		s.log,
		s.repo,
		s.generator,
		s.hasher,
		s.notifier,
		func() time.Time { return s.now },
		account.DefaultResetTokenValidity,
	)
}

func TestResetTokenIssued(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	service := suite.createService()

	// Exercise ---
	result, err := service.Run(context.Background(), Input{Email: EMAIL})

	// Verify ---
	require.NoError(t, err)
	token := suite.generator.Last()
	require.Equal(t, token, result.Token)

	a := suite.repo.Get(EMAIL)
	require.True(t, a.ResetTokenHash.IsPresent)
	require.True(t, a.ResetTokenExpiresAt.IsPresent)
	require.Equal(t, suite.hasher.HashResetToken(token), a.ResetTokenHash.Value)
	require.NotEqual(t, account.ResetTokenHash(token.String()), a.ResetTokenHash.Value)
	require.WithinDuration(t, NOW.Add(3_600_000*time.Millisecond), a.ResetTokenExpiresAt.Value, time.Second)
	require.Equal(t, account.PasswordHash("old"), a.PasswordHash)

	require.Equal(t, 1, suite.notifier.SentCount())
	sent := suite.notifier.LastSent()
	require.Equal(t, EMAIL, sent.Email)
	require.Equal(t, token, sent.Token)
	require.True(t, sent.ExpiresAt.Equal(a.ResetTokenExpiresAt.Value))
}

func TestUnknownAccount(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	service := suite.createService()
	before := suite.repo.Get(EMAIL)

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Email: c.Email("nobody@x.com")})

	// Verify ---
	require.ErrorIs(t, err, account.ErrAccountDoesNotExist)
	require.Equal(t, 0, suite.notifier.SentCount())
	require.Len(t, suite.generator.Generated, 0)
	require.Equal(t, before, suite.repo.Get(EMAIL))
}

func TestSecondRequestReplacesToken(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	service := suite.createService()

	// Exercise ---
	first, err := service.Run(context.Background(), Input{Email: EMAIL})
	require.NoError(t, err)
	suite.now = NOW.Add(time.Minute)
	second, err := service.Run(context.Background(), Input{Email: EMAIL})
	require.NoError(t, err)

	// Verify ---
	require.NotEqual(t, first.Token, second.Token)
	a := suite.repo.Get(EMAIL)
	require.Equal(t, suite.hasher.HashResetToken(second.Token), a.ResetTokenHash.Value)
	require.WithinDuration(t, NOW.Add(time.Minute+time.Hour), a.ResetTokenExpiresAt.Value, time.Second)
	require.Equal(t, 2, suite.notifier.SentCount())
}

func TestStoreFailureSkipsNotification(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	suite.repo.ReturnError = true
	service := suite.createService()

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Email: EMAIL})

	// Verify ---
	require.Error(t, err)
	require.NotErrorIs(t, err, account.ErrAccountDoesNotExist)
	require.Equal(t, 0, suite.notifier.SentCount())
	require.Equal(t, 1, suite.log.CountLevel(logging.ERROR))
}

func TestTokenGenerationFailure(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	suite.generator.ReturnError = true
	service := suite.createService()

	// Exercise ---
	_, err := service.Run(context.Background(), Input{Email: EMAIL})

	// Verify ---
	require.Error(t, err)
	require.False(t, suite.repo.Get(EMAIL).ResetTokenHash.IsPresent)
	require.Equal(t, 0, suite.notifier.SentCount())
}

func TestNotifierFailureDoesNotFailRequest(t *testing.T) {
	// Setup ---
	suite := setupSuite()
	suite.notifier.ReturnError = true
	service := suite.createService()

	// Exercise ---
	result, err := service.Run(context.Background(), Input{Email: EMAIL})

	// Verify ---
	require.NoError(t, err)
	a := suite.repo.Get(EMAIL)
	require.Equal(t, suite.hasher.HashResetToken(result.Token), a.ResetTokenHash.Value)
	require.Equal(t, 1, suite.log.CountLevel(logging.ERROR))
}

func TestNilArgumentsPanic(t *testing.T) {
	suite := setupSuite()
	now := func() time.Time { return NOW }
	require.Panics(t, func() {
		New(nil, suite.repo, suite.generator, suite.hasher, suite.notifier, now, 1)
	})
	require.Panics(t, func() {
		New(suite.log, suite.repo, suite.generator, suite.hasher, nil, now, 1)
	})
	require.Panics(t, func() {
		New(suite.log, suite.repo, suite.generator, suite.hasher, suite.notifier, now, 0)
	})
}
