package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	cfgFlags := []string{"-c", "--config", "-config"}

	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{"separate value", []string{"-c", "menuroll.yaml", "-d", "menu.db"}, cfgFlags, []string{"-c", "menuroll.yaml"}},
		{"equals form", []string{"--config=menuroll.json", "-log-level", "debug"}, cfgFlags, []string{"--config=menuroll.json"}},
		{"order and repeats kept", []string{"--config=a.yaml", "-x", "1", "-c", "b.yaml"}, cfgFlags, []string{"--config=a.yaml", "-c", "b.yaml"}},
		{"nothing allowed present", []string{"-timeout", "5s", "positional"}, cfgFlags, []string{}},
		{"dangling flag kept alone", []string{"-d", "menu.db", "-c"}, cfgFlags, []string{"-c"}},
		{"next flag is not a value", []string{"-c", "-log-level", "warn"}, cfgFlags, []string{"-c"}},
		{"value starting with dash in equals form", []string{"--config=-odd.yaml"}, cfgFlags, []string{"--config=-odd.yaml"}},
		{"several allowed names", []string{"-e", ".env", "-c", "m.yaml", "-device", "tablet"}, []string{"-c", "-e"}, []string{"-e", ".env", "-c", "m.yaml"}},
		{"empty", nil, cfgFlags, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"short -c with value", []string{"-c", "/path/short.yaml"}, "/path/short.yaml"},
		{"long -config with value", []string{"-config", "/path/long.json"}, "/path/long.json"},
		{"double dash with equals", []string{"--config=/path/eq.json"}, "/path/eq.json"},
		{"unknown flags are ignored", []string{"-x", "1", "-y", "2"}, ""},
		{"mixed with other flags", []string{"-d", "menu.db", "-c", "cfg.yaml", "-log-level", "debug"}, "cfg.yaml"},
		{"multiple flags, last wins", []string{"-c", "/path/1.json", "-config", "/path/2.json"}, "/path/2.json"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ConfigFileFlag(tt.args))
		})
	}
}

func TestEnvFileFlag(t *testing.T) {
	assert.Equal(t, ".env.local", EnvFileFlag([]string{"-e", ".env.local"}))
	assert.Equal(t, "prod.env", EnvFileFlag([]string{"-c", "x.json", "-env-file=prod.env"}))
	assert.Empty(t, EnvFileFlag([]string{"-c", "x.json"}))
}
