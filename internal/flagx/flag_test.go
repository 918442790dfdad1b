package flagx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		allowed []string
		want    []string
	}{
		{
			name:    "separate value",
			args:    []string{"-c", "conf.json", "-a", "http://api"},
			allowed: []string{"-c"},
			want:    []string{"-c", "conf.json"},
		},
		{
			name:    "equals form",
			args:    []string{"--config=alt.json", "-a", "http://api"},
			allowed: []string{"--config"},
			want:    []string{"--config=alt.json"},
		},
		{
			name:    "unknown flags dropped",
			args:    []string{"-x", "1", "--y=2", "positional"},
			allowed: []string{"-c"},
			want:    []string{},
		},
		{
			name:    "flag at end without value",
			args:    []string{"-c"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "next dash token is not a value",
			args:    []string{"-c", "-t", "cofitpro"},
			allowed: []string{"-c"},
			want:    []string{"-c"},
		},
		{
			name:    "several allowed flags keep order",
			args:    []string{"-a", "http://api", "-t", "cofitpro", "-z"},
			allowed: []string{"-t", "-a"},
			want:    []string{"-a", "http://api", "-t", "cofitpro"},
		},
		{
			name:    "empty",
			args:    []string{},
			allowed: []string{"-c"},
			want:    []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.allowed))
		})
	}
}

func TestConfigFileFlag(t *testing.T) {
	assert.Equal(t, "a.json", ConfigFileFlag([]string{"-c", "a.json"}))
	assert.Equal(t, "b.json", ConfigFileFlag([]string{"-a", "x", "-config=b.json"}))
	assert.Equal(t, "c.json", ConfigFileFlag([]string{"--config", "c.json"}))
	assert.Equal(t, "", ConfigFileFlag([]string{"-a", "x"}))
}

func TestEnvFileFlag(t *testing.T) {
	assert.Equal(t, ".env.staging", EnvFileFlag([]string{"-e", ".env.staging", "-c", "a.json"}))
	assert.Equal(t, "prod.env", EnvFileFlag([]string{"-env=prod.env"}))
	assert.Equal(t, "", EnvFileFlag(nil))
}
