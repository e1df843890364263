package logging

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockLoggerCapturesEntries(t *testing.T) {
	mock := NewMockLogger()

	mock.Info("starting", F("ledger", "L1"))
	mock.WithError(errors.New("boom")).Error("failed")

	require.Len(t, mock.Entries, 2)
	assert.Equal(t, "INFO", mock.Entries[0].Level)
	assert.Equal(t, "starting", mock.Entries[0].Message)
	assert.Equal(t, "ledger", mock.Entries[0].Fields[0].Key)
	assert.EqualError(t, mock.Entries[1].Error, "boom")
	assert.True(t, mock.HasMessage("failed"))
	assert.False(t, mock.HasMessage("never logged"))
}

func TestMockLoggerDerivationDoesNotLeak(t *testing.T) {
	mock := NewMockLogger()

	mock.WithError(errors.New("boom")).Error("failed")
	mock.Info("clean")
	mock.WithField("k", "v").Warn("tagged")
	mock.Info("clean again")

	require.Len(t, mock.Entries, 4)
	assert.EqualError(t, mock.Entries[0].Error, "boom")
	assert.NoError(t, mock.Entries[1].Error, "error must not survive the derivation")
	assert.Empty(t, mock.Entries[1].Fields)
	assert.Len(t, mock.Entries[2].Fields, 1)
	assert.Empty(t, mock.Entries[3].Fields, "fields must not accumulate on the parent")
	assert.NoError(t, mock.Entries[3].Error)
}

func TestMockLoggerDerivedEntriesVisibleOnParent(t *testing.T) {
	mock := NewMockLogger()

	derived := mock.WithField("ledger", "L1").WithError(errors.New("x"))
	derived.Error("deep failure")

	require.Len(t, mock.Entries, 1)
	assert.Len(t, mock.Entries[0].Fields, 1)
	assert.EqualError(t, mock.Entries[0].Error, "x")
	assert.True(t, mock.HasMessage("deep failure"))
}

func TestLogrusAdapterImplementsLogger(t *testing.T) {
	logger := NewLogrusAdapter("debug", "json")
	require.NotNil(t, logger)

	// Chained derivation returns independent loggers.
	derived := logger.WithField("k", "v").WithError(errors.New("x"))
	assert.NotNil(t, derived)

	// Invalid level falls back rather than failing.
	assert.NotNil(t, NewLogrusAdapter("bogus", "text"))
}
