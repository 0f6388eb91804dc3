package passwordhasher

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"passreset/internal/core/domain/account"

	"golang.org/x/crypto/bcrypt"
)

// Bcrypt peppers the password with an HMAC of the secret before hashing.
// The base64 HMAC is 44 bytes, so bcrypt never truncates long passwords.
type Bcrypt struct {
	secret []byte
	cost   int
}

func NewBcrypt(secret string, cost int) *Bcrypt {
	return &Bcrypt{secret: []byte(secret), cost: cost}
}

func (h *Bcrypt) HashPassword(password account.RawPassword) (hash account.PasswordHash, err error) {
	bcryptHash, err := bcrypt.GenerateFromPassword(h.pepper(password), h.cost)
	if err != nil {
		return hash, err
	}
	return account.PasswordHash(bcryptHash), nil
}

func (h *Bcrypt) ValidatePassword(password account.RawPassword, hash account.PasswordHash) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), h.pepper(password))
	return err == nil
}

func (h *Bcrypt) pepper(password account.RawPassword) []byte {
	mac := hmac.New(sha256.New, h.secret)
	mac.Write([]byte(password))
	sum := mac.Sum(nil)
	encoded := make([]byte, base64.StdEncoding.EncodedLen(len(sum)))
	base64.StdEncoding.Encode(encoded, sum)
	return encoded
}
