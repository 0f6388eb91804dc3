package checkpasswordresettoken

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
	Token string
}

type Result struct{}

type service struct {
	log         logging.Logger
	repository  account.Repository
	tokenHasher account.ResetTokenHasher
	now         c.NowFunc
}

// New creates a service reporting whether a token would be accepted
// right now. The token is left untouched.
func New(
	log logging.Logger,
	repository account.Repository,
	tokenHasher account.ResetTokenHasher,
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
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{log: log, repository: repository, tokenHasher: tokenHasher, now: now}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	token, err := account.ParseResetToken(input.Token)
	if err != nil {
		return result, err
	}

	_, err = s.repository.GetByResetToken(ctx, account.ResetTokenQuery{
		Email:     input.Email,
		TokenHash: s.tokenHasher.HashResetToken(token),
		Now:       s.now(),
	})
	if errors.Is(err, account.ErrInvalidOrExpiredResetToken) {
		return result, err
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("email", input.Email))
		return result, err
	}
	return result, nil
}
