package flagx

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterArgs(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		names []string
		want  []string
	}{
		{
			name:  "short flag with separate value",
			args:  []string{"-c", "conf.json", "-a", "localhost"},
			names: []string{"-c", "--config"},
			want:  []string{"-c", "conf.json"},
		},
		{
			name:  "long flag with equals",
			args:  []string{"--config=alt.json", "-a", "localhost"},
			names: []string{"-c", "--config"},
			want:  []string{"--config=alt.json"},
		},
		{
			name:  "order preserved when both forms present",
			args:  []string{"--config=first.json", "-c", "second.json", "-x", "1"},
			names: []string{"-c", "--config"},
			want:  []string{"--config=first.json", "-c", "second.json"},
		},
		{
			name:  "unknown flags ignored",
			args:  []string{"-x", "1", "--y=2", "positional"},
			names: []string{"-c", "--config"},
			want:  []string{},
		},
		{
			name:  "flag without value at end",
			args:  []string{"-c"},
			names: []string{"-c"},
			want:  []string{"-c"},
		},
		{
			name:  "flag followed by another flag keeps no value",
			args:  []string{"-c", "-notvalue"},
			names: []string{"-c"},
			want:  []string{"-c"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FilterArgs(tt.args, tt.names))
		})
	}
}

func TestJSONConfigPath(t *testing.T) {
	orig := os.Args
	defer func() { os.Args = orig }()

	os.Args = []string{"inkpad", "-a", "http://api", "-c", "cfg.json"}
	require.Equal(t, "cfg.json", JSONConfigPath())

	os.Args = []string{"inkpad", "--config=other.json"}
	require.Equal(t, "other.json", JSONConfigPath())

	os.Args = []string{"inkpad", "-a", "http://api"}
	require.Equal(t, "", JSONConfigPath())
}
