package common

import (
	"fmt"
	"strings"
	"time"
)

type Optional[T any] struct {
	Value     T
	IsPresent bool
}

func (p *Optional[T]) String() string {
	if !p.IsPresent {
		return "[-]"
	}
	return fmt.Sprintf("[%v]", p.Value)
}

func NewOptional[T any](value T, isPresent bool) Optional[T] {
	return Optional[T]{Value: value, IsPresent: isPresent}
}

func Some[T any](value T) Optional[T] {
	return Optional[T]{Value: value, IsPresent: true}
}

func None[T any]() Optional[T] {
	return Optional[T]{}
}

// Email is always stored lower-cased, two addresses differing only
// in case belong to the same account.
type Email string

func NewEmail(rawEmail string) Email {
	return Email(strings.ToLower(strings.TrimSpace(rawEmail)))
}

type NowFunc func() time.Time

func UTCNow() time.Time {
	return time.Now().UTC()
}
