package ssh

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTarget(t *testing.T) {
	tests := []struct {
		target   string
		user     string
		hostname string
	}{
		{"rig-controller", "root", "rig-controller:22"},
		{"ci@rig-controller", "ci", "rig-controller:22"},
		{"ci@rig-controller:2222", "ci", "rig-controller:2222"},
		{"10.0.7.40", "root", "10.0.7.40:22"},
		{"ci@10.0.7.40:830", "ci", "10.0.7.40:830"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			var o Options
			require.NoError(t, ParseTarget(tt.target, &o))
			require.Equal(t, tt.user, o.User)
			require.Equal(t, tt.hostname, o.Hostname)
		})
	}
}

func TestParseTarget_Invalid(t *testing.T) {
	var o Options
	require.Error(t, ParseTarget("a@b@c", &o))
}
