package logging

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorHelper(t *testing.T) {
	log := NewFakeLogger()

	Error(context.Background(), log, errors.New("boom"), Entry("email", "a@x.com"))
	Error(context.Background(), log, context.Canceled)

	records := log.Records()
	require.Len(t, records, 2)
	require.Equal(t, ERROR, records[0].Level)
	require.Equal(t, []LogEntry{Entry("email", "a@x.com"), Entry("err", errors.New("boom"))}, records[0].Entries)
	require.Equal(t, INFO, records[1].Level)
}
