package account

import (
	"context"
	"errors"
	"fmt"
	"passreset/internal/core/domain/account"
	c "passreset/internal/core/domain/common"
	e "passreset/internal/core/domain/errors"
	"time"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
)

const PG_UNIQUE_CONSTRAINT_ERR_CODE = "23505"
const EMAIL_CONSTRAINT_NAME = "account_email_idx"

const accountColumns = "id, email, password_hash, reset_token_hash, reset_token_expires_at, created_at"

const createAccount = `
INSERT INTO account (email, password_hash, created_at)
VALUES ($1, $2, $3)
RETURNING ` + accountColumns

const getAccountByEmail = `
SELECT ` + accountColumns + `
FROM account
WHERE email = $1`

const setResetToken = `
UPDATE account
SET reset_token_hash = $2, reset_token_expires_at = $3
WHERE email = $1
RETURNING ` + accountColumns

const getAccountByResetToken = `
SELECT ` + accountColumns + `
FROM account
WHERE email = $1 AND reset_token_hash = $2 AND reset_token_expires_at > $3`

// The WHERE clause is re-evaluated after the row lock is taken,
// so only one of concurrent redemptions can match.
const redeemResetToken = `
UPDATE account
SET password_hash = $4, reset_token_hash = NULL, reset_token_expires_at = NULL
WHERE email = $1 AND reset_token_hash = $2 AND reset_token_expires_at > $3
RETURNING ` + accountColumns

type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

type PgxAccountRepository struct {
	db DBTX
}

func NewPgxRepository(db DBTX) *PgxAccountRepository {
	if db == nil {
		panic(e.NewNilArgumentError("db"))
	}
	return &PgxAccountRepository{db: db}
}

func (r *PgxAccountRepository) Create(ctx context.Context, input account.CreateInput) (a account.Account, err error) {
	row := r.db.QueryRow(ctx, createAccount, string(input.Email), string(input.PasswordHash), input.CreatedAt)
	a, err = scanAccount(row)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == PG_UNIQUE_CONSTRAINT_ERR_CODE && pgErr.ConstraintName == EMAIL_CONSTRAINT_NAME {
			return a, account.ErrAccountAlreadyExists
		}
	}
	if err != nil {
		return a, fmt.Errorf("could not create account: %w", err)
	}
	return a, a.Validate()
}

func (r *PgxAccountRepository) GetByEmail(ctx context.Context, email c.Email) (a account.Account, err error) {
	a, err = scanAccount(r.db.QueryRow(ctx, getAccountByEmail, string(email)))
	if errors.Is(err, pgx.ErrNoRows) {
		return a, account.ErrAccountDoesNotExist
	}
	if err != nil {
		return a, fmt.Errorf("could not get account: %w", err)
	}
	return a, a.Validate()
}

func (r *PgxAccountRepository) SetResetToken(
	ctx context.Context,
	input account.SetResetTokenInput,
) (a account.Account, err error) {
	row := r.db.QueryRow(ctx, setResetToken, string(input.Email), string(input.TokenHash), input.ExpiresAt)
	a, err = scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, account.ErrAccountDoesNotExist
	}
	if err != nil {
		return a, fmt.Errorf("could not set reset token: %w", err)
	}
	return a, a.Validate()
}

func (r *PgxAccountRepository) GetByResetToken(
	ctx context.Context,
	input account.ResetTokenQuery,
) (a account.Account, err error) {
	row := r.db.QueryRow(ctx, getAccountByResetToken, string(input.Email), string(input.TokenHash), input.Now)
	a, err = scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, account.ErrInvalidOrExpiredResetToken
	}
	if err != nil {
		return a, fmt.Errorf("could not get account by reset token: %w", err)
	}
	return a, a.Validate()
}

func (r *PgxAccountRepository) RedeemResetToken(
	ctx context.Context,
	input account.RedeemResetTokenInput,
) (a account.Account, err error) {
	row := r.db.QueryRow(
		ctx,
		redeemResetToken,
		string(input.Email),
		string(input.TokenHash),
		input.Now,
		string(input.PasswordHash),
	)
	a, err = scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, account.ErrInvalidOrExpiredResetToken
	}
	if err != nil {
		return a, fmt.Errorf("could not redeem reset token: %w", err)
	}
	return a, a.Validate()
}

func scanAccount(row pgx.Row) (a account.Account, err error) {
	var (
		id                  int64
		email               string
		passwordHash        string
		resetTokenHash      pgtype.Text
		resetTokenExpiresAt pgtype.Timestamptz
		createdAt           time.Time
	)
	err = row.Scan(&id, &email, &passwordHash, &resetTokenHash, &resetTokenExpiresAt, &createdAt)
	if err != nil {
		return a, err
	}
	return account.Account{
		ID:                  account.ID(id),
		Email:               c.Email(email),
		PasswordHash:        account.PasswordHash(passwordHash),
		ResetTokenHash:      decodeResetTokenHash(resetTokenHash),
		ResetTokenExpiresAt: decodeOptionalTime(resetTokenExpiresAt),
		CreatedAt:           createdAt.UTC(),
	}, nil
}

func decodeResetTokenHash(v pgtype.Text) c.Optional[account.ResetTokenHash] {
	return c.NewOptional(account.ResetTokenHash(v.String), v.Status == pgtype.Present)
}

func decodeOptionalTime(v pgtype.Timestamptz) c.Optional[time.Time] {
	if v.Status != pgtype.Present {
		return c.None[time.Time]()
	}
	return c.Some(v.Time.UTC())
}
