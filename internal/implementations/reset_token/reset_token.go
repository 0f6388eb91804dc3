package resettoken

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"passreset/internal/core/domain/account"
)

type Generator struct {
	source io.Reader
}

func NewGenerator() *Generator {
	return &Generator{source: rand.Reader}
}

func (g *Generator) GenerateResetToken() (token account.ResetToken, err error) {
	_, err = io.ReadFull(g.source, token[:])
	return token, err
}

// HMAC keys token hashes with the service secret. The hash is
// deterministic so stores can look a token up by it.
type HMAC struct {
	secretKey []byte
}

func NewHMAC(secretKey string) *HMAC {
	return &HMAC{secretKey: []byte(secretKey)}
}

func (h *HMAC) HashResetToken(token account.ResetToken) account.ResetTokenHash {
	mac := hmac.New(sha256.New, h.secretKey)
	mac.Write(token[:])
	return account.ResetTokenHash(hex.EncodeToString(mac.Sum(nil)))
}
