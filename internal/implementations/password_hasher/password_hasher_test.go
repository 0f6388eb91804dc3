package passwordhasher

import (
	"fmt"
	"passreset/internal/core/domain/account"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordValid(t *testing.T) {
	type testcase struct {
		ix       int
		secret   string
		cost     int
		password string
	}
	cases := []testcase{
		{ix: 1, secret: "test", cost: 5, password: "test"},
		{ix: 2, secret: "", cost: 5, password: ""},
		{ix: 3, secret: "a", cost: 7, password: "password password"},
		{ix: 4, secret: "   b   ", cost: 10, password: "   test   "},
		{ix: 5, secret: "s", cost: 4, password: strings.Repeat("x", 200)},
	}
	for _, c := range cases {
		t.Run(fmt.Sprint(c.ix), func(t *testing.T) {
			h := NewBcrypt(c.secret, c.cost)
			hash, err := h.HashPassword(account.RawPassword(c.password))
			require.NoError(t, err, c.password)
			require.NotEmpty(t, hash)
			require.True(t, h.ValidatePassword(account.RawPassword(c.password), hash), c.password)
		})
	}
}

func TestPasswordInvalid(t *testing.T) {
	type testcase struct {
		ix              int
		secretToHash    string
		secretToCheck   string
		cost            int
		passwordToHash  string
		passwordToCheck string
	}
	cases := []testcase{
		{
			ix:              1,
			secretToHash:    "test",
			secretToCheck:   "test",
			cost:            5,
			passwordToHash:  "test",
			passwordToCheck: "test ",
		},
		{
			ix:              2,
			secretToHash:    "test",
			secretToCheck:   "test ",
			cost:            5,
			passwordToHash:  "test",
			passwordToCheck: "test",
		},
		{
			ix:              3,
			secretToHash:    "",
			secretToCheck:   "",
			cost:            5,
			passwordToHash:  "",
			passwordToCheck: " ",
		},
		{
			ix:              4,
			secretToHash:    "a",
			secretToCheck:   "a",
			cost:            6,
			passwordToHash:  "password password",
			passwordToCheck: " password password",
		},
		{
			ix:              5,
			secretToHash:    "s",
			secretToCheck:   "s",
			cost:            4,
			passwordToHash:  strings.Repeat("x", 100) + "a",
			passwordToCheck: strings.Repeat("x", 100) + "b",
		},
	}
	for _, c := range cases {
		t.Run(fmt.Sprint(c.ix), func(t *testing.T) {
			h := NewBcrypt(c.secretToHash, c.cost)
			hash, err := h.HashPassword(account.RawPassword(c.passwordToHash))
			require.NoError(t, err)
			require.NotEmpty(t, hash)

			h = NewBcrypt(c.secretToCheck, c.cost)
			require.False(t, h.ValidatePassword(account.RawPassword(c.passwordToCheck), hash))
		})
	}
}

func TestHashesAreSalted(t *testing.T) {
	h := NewBcrypt("secret", bcrypt.MinCost)

	first, err := h.HashPassword("new1")
	require.NoError(t, err)
	second, err := h.HashPassword("new1")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
	cost, err := bcrypt.Cost([]byte(first))
	require.NoError(t, err)
	require.Equal(t, bcrypt.MinCost, cost)
}
