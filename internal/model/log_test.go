package model

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLogRecordValidate_DefaultsLevel(t *testing.T) {
	r := &LogRecord{Message: "boot", Service: "api"}
	require.NoError(t, r.Validate())
	require.Equal(t, LogLevelInfo, r.Level)
}

func TestLogRecordValidate_RejectsEmptyMessage(t *testing.T) {
	r := &LogRecord{Service: "api"}
	err := r.Validate()
	require.Error(t, err)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	require.Equal(t, "message", ve.Field)
}

func TestLogRecordValidate_RejectsUnknownLevel(t *testing.T) {
	r := &LogRecord{Message: "x", Service: "api", Level: LogLevel("verbose")}
	require.Error(t, r.Validate())
}

func TestLogLevelOrder(t *testing.T) {
	require.True(t, LogLevelDebug.Order() < LogLevelError.Order())
	require.Equal(t, -1, LogLevel("bogus").Order())
}
