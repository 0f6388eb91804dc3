package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"passreset/internal/app/deps"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	createaccount "passreset/internal/core/services/create_account"
)

func main() {
	email := flag.String("email", "", "account email")
	password := flag.String("password", "", "account password")
	flag.Parse()

	if *email == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	deps, shutdownDeps := deps.InitStoreDeps()
	defer shutdownDeps()

	service := createaccount.New(deps.Logger, deps.AccountRepository, deps.PasswordHasher, deps.Now)
	result, err := service.Run(
		context.Background(),
		createaccount.Input{Email: c.NewEmail(*email), Password: account.RawPassword(*password)},
	)
	if errors.Is(err, account.ErrAccountAlreadyExists) {
		fmt.Fprintf(os.Stderr, "account %s already exists\n", c.NewEmail(*email))
		shutdownDeps()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not create account: %v\n", err)
		shutdownDeps()
		os.Exit(1)
	}
	fmt.Printf("account %s created (id %d)\n", result.Account.Email, result.Account.ID)
}
