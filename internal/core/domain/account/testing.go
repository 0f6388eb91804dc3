package account

import (
	"context"
	"crypto/md5"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	c "passreset/internal/core/domain/common"
	"sync"
	"time"
)

type FakeRepository struct {
	Accounts    []Account
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeRepository() *FakeRepository {
	return &FakeRepository{Accounts: make([]Account, 0, 10)}
}

func (r *FakeRepository) Create(ctx context.Context, input CreateInput) (a Account, err error) {
	if r.ReturnError {
		return a, fmt.Errorf("could not create account %s", input.Email)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	maxID := ID(0)
	for _, a := range r.Accounts {
		if a.Email == input.Email {
			return a, ErrAccountAlreadyExists
		}
		if a.ID > maxID {
			maxID = a.ID
		}
	}
	a = Account{
		ID:           maxID + 1,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    input.CreatedAt,
	}
	r.Accounts = append(r.Accounts, a)
	return a, nil
}

func (r *FakeRepository) GetByEmail(ctx context.Context, email c.Email) (a Account, err error) {
	if r.ReturnError {
		return a, fmt.Errorf("could not get account %s", email)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for _, a := range r.Accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return a, ErrAccountDoesNotExist
}

func (r *FakeRepository) SetResetToken(ctx context.Context, input SetResetTokenInput) (a Account, err error) {
	if r.ReturnError {
		return a, fmt.Errorf("could not set reset token for %s", input.Email)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	for ix, a := range r.Accounts {
		if a.Email == input.Email {
			r.Accounts[ix].ResetTokenHash = c.Some(input.TokenHash)
			r.Accounts[ix].ResetTokenExpiresAt = c.Some(input.ExpiresAt)
			return r.Accounts[ix], nil
		}
	}
	return a, ErrAccountDoesNotExist
}

func (r *FakeRepository) GetByResetToken(ctx context.Context, input ResetTokenQuery) (a Account, err error) {
	if r.ReturnError {
		return a, fmt.Errorf("could not get account %s by reset token", input.Email)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	ix := r.findByResetToken(input)
	if ix < 0 {
		return a, ErrInvalidOrExpiredResetToken
	}
	return r.Accounts[ix], nil
}

func (r *FakeRepository) RedeemResetToken(ctx context.Context, input RedeemResetTokenInput) (a Account, err error) {
	if r.ReturnError {
		return a, fmt.Errorf("could not redeem reset token for %s", input.Email)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	ix := r.findByResetToken(input.ResetTokenQuery)
	if ix < 0 {
		return a, ErrInvalidOrExpiredResetToken
	}
	r.Accounts[ix].PasswordHash = input.PasswordHash
	r.Accounts[ix].ResetTokenHash = c.None[ResetTokenHash]()
	r.Accounts[ix].ResetTokenExpiresAt = c.None[time.Time]()
	return r.Accounts[ix], nil
}

func (r *FakeRepository) findByResetToken(input ResetTokenQuery) int {
	for ix, a := range r.Accounts {
		if a.Email == input.Email &&
			a.ResetTokenHash.IsPresent &&
			a.ResetTokenHash.Value == input.TokenHash &&
			a.ResetTokenExpiresAt.IsPresent &&
			a.ResetTokenExpiresAt.Value.After(input.Now) {
			return ix
		}
	}
	return -1
}

func (r *FakeRepository) Get(email c.Email) Account {
	a, err := r.GetByEmail(context.Background(), email)
	if err != nil {
		panic(err)
	}
	return a
}

type FakePasswordHasher struct{}

func NewFakePasswordHasher() *FakePasswordHasher {
	return &FakePasswordHasher{}
}

func (h *FakePasswordHasher) HashPassword(password RawPassword) (PasswordHash, error) {
	hash := md5.New()
	io.WriteString(hash, string(password))
	return PasswordHash(fmt.Sprintf("%x", hash.Sum(nil))), nil
}

func (h *FakePasswordHasher) ValidatePassword(password RawPassword, hash PasswordHash) bool {
	actualHash, err := h.HashPassword(password)
	if err != nil {
		return false
	}
	return actualHash == hash
}

// FakeResetTokenGenerator hands out tokens filled with an increasing byte,
// so consecutive tokens always differ.
type FakeResetTokenGenerator struct {
	Generated   []ResetToken
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeResetTokenGenerator() *FakeResetTokenGenerator {
	return &FakeResetTokenGenerator{}
}

func (g *FakeResetTokenGenerator) GenerateResetToken() (t ResetToken, err error) {
	if g.ReturnError {
		return t, fmt.Errorf("could not generate reset token")
	}
	g.lock.Lock()
	defer g.lock.Unlock()
	fill := byte(len(g.Generated) + 1)
	for i := range t {
		t[i] = fill
	}
	g.Generated = append(g.Generated, t)
	return t, nil
}

func (g *FakeResetTokenGenerator) Last() ResetToken {
	g.lock.Lock()
	defer g.lock.Unlock()
	l := len(g.Generated)
	if l == 0 {
		panic("Generated count is 0.")
	}
	return g.Generated[l-1]
}

type FakeResetTokenHasher struct{}

func NewFakeResetTokenHasher() *FakeResetTokenHasher {
	return &FakeResetTokenHasher{}
}

func (h *FakeResetTokenHasher) HashResetToken(token ResetToken) ResetTokenHash {
	sum := sha256.Sum256(token[:])
	return ResetTokenHash(hex.EncodeToString(sum[:]))
}

type FakeResetNotifier struct {
	Sent        []ResetNotification
	ReturnError bool
	lock        sync.Mutex
}

func NewFakeResetNotifier() *FakeResetNotifier {
	return &FakeResetNotifier{}
}

func (n *FakeResetNotifier) NotifyPasswordReset(ctx context.Context, notification ResetNotification) error {
	if n.ReturnError {
		return fmt.Errorf("could not notify %s", notification.Email)
	}
	n.lock.Lock()
	defer n.lock.Unlock()
	n.Sent = append(n.Sent, notification)
	return nil
}

func (n *FakeResetNotifier) SentCount() int {
	n.lock.Lock()
	defer n.lock.Unlock()
	return len(n.Sent)
}

func (n *FakeResetNotifier) LastSent() ResetNotification {
	n.lock.Lock()
	defer n.lock.Unlock()
	l := len(n.Sent)
	if l == 0 {
		panic("Sent count is 0.")
	}
	return n.Sent[l-1]
}
