package logging

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHasComponent(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelDebug, "text", &buf)

	New("classify").Info("hello")

	assert.Contains(t, buf.String(), "component=classify")
	assert.Contains(t, buf.String(), "hello")
}

func TestInitJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelInfo, "json", &buf)

	New("json-test").Info("json check")

	assert.Contains(t, buf.String(), `"level":"INFO"`)
	assert.Contains(t, buf.String(), `"component":"json-test"`)
}

func TestInitLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	Init(slog.LevelWarn, "text", &buf)

	New("filter").Info("hidden")
	New("filter").Warn("shown")

	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		"debug":      {in: "debug", want: slog.LevelDebug},
		"upper warn": {in: "WARN", want: slog.LevelWarn},
		"padded":     {in: " error ", want: slog.LevelError},
		"invalid":    {in: "loud", want: slog.LevelInfo, wantErr: true},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseLevel(tc.in)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestNopDiscards(t *testing.T) {
	t.Parallel()

	l := Nop()
	assert.False(t, l.Enabled(t.Context(), slog.LevelError))
	assert.NotNil(t, OrNop(nil))
	assert.Same(t, l, OrNop(l))
}
