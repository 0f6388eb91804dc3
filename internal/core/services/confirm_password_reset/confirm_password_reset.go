package confirmpasswordreset

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
	Email       c.Email
	Token       string
	NewPassword account.RawPassword
}

type Result struct{}

type service struct {
	log            logging.Logger
	repository     account.Repository
	tokenHasher    account.ResetTokenHasher
	passwordHasher account.PasswordHasher
	now            c.NowFunc
}

func New(
	log logging.Logger,
	repository account.Repository,
	tokenHasher account.ResetTokenHasher,
	passwordHasher account.PasswordHasher,
	now c.NowFunc,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if repository == nil {
		panic(e.NewNilArgumentError("repository"))
	}
	if tokenHasher == nil {
		panic(e.NewNilArgumentError("tokenHasher"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{
		log:            log,
		repository:     repository,
		tokenHasher:    tokenHasher,
		passwordHasher: passwordHasher,
		now:            now,
	}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	token, err := account.ParseResetToken(input.Token)
	if err != nil {
		s.log.Info(ctx, "Malformed password reset token.", logging.Entry("email", input.Email))
		return result, err
	}

	newPasswordHash, err := s.passwordHasher.HashPassword(input.NewPassword)
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("email", input.Email))
		return result, err
	}

	_, err = s.repository.RedeemResetToken(ctx, account.RedeemResetTokenInput{
		ResetTokenQuery: account.ResetTokenQuery{
			Email:     input.Email,
			TokenHash: s.tokenHasher.HashResetToken(token),
			Now:       s.now(),
		},
		PasswordHash: newPasswordHash,
	})
	if errors.Is(err, account.ErrInvalidOrExpiredResetToken) {
		s.log.Info(ctx, "Password reset token rejected.", logging.Entry("email", input.Email))
		return result, err
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("email", input.Email))
		return result, err
	}

	s.log.Info(ctx, "New password has been successfully set.", logging.Entry("email", input.Email))
	return result, nil
}
