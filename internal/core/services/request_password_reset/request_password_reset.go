package requestpasswordreset

import (
	"context"
	"errors"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	e "passreset/internal/core/domain/errors"
	"passreset/internal/core/domain/logging"
	"passreset/internal/core/services"
)

type Input struct {
	Email c.Email
}

type Result struct {
	// Token must only leave the process through the notifier,
	// it is exposed here for test mode.
	Token account.ResetToken
}

type service struct {
	log            logging.Logger
	repository     account.Repository
	tokenGenerator account.ResetTokenGenerator
	tokenHasher    account.ResetTokenHasher
	notifier       account.ResetNotifier
	now            c.NowFunc
	validHours     int
}

func New(
	log logging.Logger,
	repository account.Repository,
	tokenGenerator account.ResetTokenGenerator,
	tokenHasher account.ResetTokenHasher,
	notifier account.ResetNotifier,
	now c.NowFunc,
	validHours int,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if repository == nil {
		panic(e.NewNilArgumentError("repository"))
	}
	if tokenGenerator == nil {
		panic(e.NewNilArgumentError("tokenGenerator"))
	}
	if tokenHasher == nil {
		panic(e.NewNilArgumentError("tokenHasher"))
	}
	if notifier == nil {
		panic(e.NewNilArgumentError("notifier"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	if validHours <= 0 {
		panic("validHours must be positive")
	}
	return &service{
		log:            log,
		repository:     repository,
		tokenGenerator: tokenGenerator,
		tokenHasher:    tokenHasher,
		notifier:       notifier,
		now:            now,
		validHours:     validHours,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	_, err = s.repository.GetByEmail(ctx, input.Email)
	if errors.Is(err, account.ErrAccountDoesNotExist) {
		s.log.Info(ctx, "Password reset requested for unknown account.", logging.Entry("email", input.Email))
		return result, err
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("email", input.Email))
		return result, err
	}

	token, err := s.tokenGenerator.GenerateResetToken()
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("email", input.Email))
		return result, err
	}
	expiresAt := account.ResetTokenExpiresAt(s.now(), s.validHours)

	_, err = s.repository.SetResetToken(ctx, account.SetResetTokenInput{
		Email:     input.Email,
		TokenHash: s.tokenHasher.HashResetToken(token),
		ExpiresAt: expiresAt,
	})
	if errors.Is(err, account.ErrAccountDoesNotExist) {
		s.log.Info(ctx, "Account disappeared before reset token was set.", logging.Entry("email", input.Email))
		return result, err
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("email", input.Email))
		return result, err
	}

	err = s.notifier.NotifyPasswordReset(ctx, account.ResetNotification{
		Email:     input.Email,
		Token:     token,
		ExpiresAt: expiresAt,
	})
	if err != nil {
		s.log.Error(
			ctx,
			"Could not hand password reset token to notifier.",
			logging.Entry("email", input.Email),
			logging.Entry("err", err),
		)
	} else {
		s.log.Info(
			ctx,
			"Password reset token has been issued.",
			logging.Entry("email", input.Email),
			logging.Entry("expiresAt", expiresAt),
		)
	}

	result.Token = token
	return result, nil
}
