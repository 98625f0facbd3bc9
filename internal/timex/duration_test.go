package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"string", `"15m"`, 15 * time.Minute, false},
		{"nanoseconds", `3000000000`, 3 * time.Second, false},
		{"bad string", `"soon"`, 0, true},
		{"bool", `true`, 0, true},
		{"malformed", `{`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Duration)
		})
	}
}

func TestDuration_JSONRoundTrip(t *testing.T) {
	in := struct {
		Interval Duration `json:"interval"`
	}{Duration{90 * time.Minute}}

	b, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"interval":"1h30m0s"}`, string(b))

	var out struct {
		Interval Duration `json:"interval"`
	}
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)
}

func TestDuration_UnmarshalYAML(t *testing.T) {
	var cfg struct {
		A Duration `yaml:"a"`
		B Duration `yaml:"b"`
	}
	require.NoError(t, yaml.Unmarshal([]byte("a: 30s\nb: 1000\n"), &cfg))
	assert.Equal(t, 30*time.Second, cfg.A.Duration)
	assert.Equal(t, time.Microsecond, cfg.B.Duration)

	err := yaml.Unmarshal([]byte("a: later\n"), &cfg)
	assert.Error(t, err)
}

func TestMillis(t *testing.T) {
	assert.Equal(t, int64(0), ToMillis(time.Time{}))
	assert.True(t, FromMillis(0).IsZero())

	ts := time.Date(2025, 3, 1, 12, 30, 0, 123_000_000, time.UTC)
	assert.Equal(t, ts, FromMillis(ToMillis(ts)))

	now := Now()
	assert.Equal(t, now, now.Truncate(time.Millisecond))
	assert.Equal(t, time.UTC, now.Location())
}
