package createaccount

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
	Email    c.Email
	Password account.RawPassword
}

type Result struct {
	Account account.Account
}

type service struct {
	log            logging.Logger
	repository     account.Repository
	passwordHasher account.PasswordHasher
	now            c.NowFunc
}

func New(
	log logging.Logger,
	repository account.Repository,
	passwordHasher account.PasswordHasher,
	now c.NowFunc,
) services.Service[Input, Result] {
	if log == nil {
		panic(e.NewNilArgumentError("log"))
	}
	if repository == nil {
		panic(e.NewNilArgumentError("repository"))
	}
	if passwordHasher == nil {
		panic(e.NewNilArgumentError("passwordHasher"))
	}
	if now == nil {
		panic(e.NewNilArgumentError("now"))
	}
	return &service{log: log, repository: repository, passwordHasher: passwordHasher, now: now}
}

func (s *service) Run(ctx context.Context, input Input) (result Result, err error) {
	passwordHash, err := s.passwordHasher.HashPassword(input.Password)
	if err != nil {
		return result, err
	}

	a, err := s.repository.Create(ctx, account.CreateInput{
		Email:        input.Email,
		PasswordHash: passwordHash,
		CreatedAt:    s.now(),
	})
	if errors.Is(err, account.ErrAccountAlreadyExists) {
		s.log.Info(ctx, "Account already exists.", logging.Entry("email", input.Email))
		return result, err
	}
	if err != nil {
		logging.Error(ctx, s.log, err, logging.Entry("email", input.Email))
		return result, err
	}

	s.log.Info(ctx, "Account has been created.", logging.Entry("email", a.Email), logging.Entry("accountID", a.ID))
	result.Account = a
	return result, nil
}
