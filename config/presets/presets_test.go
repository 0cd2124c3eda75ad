package presets

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPresetsValid(t *testing.T) {
	require.Equal(t, []string{"fastnet", "standalone"}, Options())
	for _, name := range Options() {
		t.Run(name, func(t *testing.T) {
			cfg, err := Get(name)
			require.NoError(t, err)
			require.Equal(t, name, cfg.Preset)
			require.NoError(t, cfg.Validate())
		})
	}
}

func TestPresetUnknown(t *testing.T) {
	_, err := Get("mainnet")
	require.ErrorContains(t, err, "not registered")
}
