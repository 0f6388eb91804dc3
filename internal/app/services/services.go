package services

import (
	"passreset/internal/app/deps"
	"passreset/internal/core/services"
	checkpasswordresettoken "passreset/internal/core/services/check_password_reset_token"
	confirmpasswordreset "passreset/internal/core/services/confirm_password_reset"
	createaccount "passreset/internal/core/services/create_account"
	requestpasswordreset "passreset/internal/core/services/request_password_reset"
)

type Services struct {
	RequestPasswordReset    services.Service[requestpasswordreset.Input, requestpasswordreset.Result]
	ConfirmPasswordReset    services.Service[confirmpasswordreset.Input, confirmpasswordreset.Result]
	CheckPasswordResetToken services.Service[checkpasswordresettoken.Input, checkpasswordresettoken.Result]
	CreateAccount           services.Service[createaccount.Input, createaccount.Result]
}

func InitServices(deps *deps.Deps) *Services {
	s := &Services{}

	s.RequestPasswordReset = requestpasswordreset.New(
		deps.Logger,
		deps.AccountRepository,
		deps.ResetTokenGenerator,
		deps.ResetTokenHasher,
		deps.ResetNotifier,
		deps.Now,
		deps.Config.ResetTokenValidHours,
	)
	s.ConfirmPasswordReset = confirmpasswordreset.New(
		deps.Logger,
		deps.AccountRepository,
		deps.ResetTokenHasher,
		deps.PasswordHasher,
		deps.Now,
	)
	s.CheckPasswordResetToken = checkpasswordresettoken.New(
		deps.Logger,
		deps.AccountRepository,
		deps.ResetTokenHasher,
		deps.Now,
	)
	s.CreateAccount = createaccount.New(
		deps.Logger,
		deps.AccountRepository,
		deps.PasswordHasher,
		deps.Now,
	)

	return s
}
