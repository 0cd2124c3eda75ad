// Package presets holds named configurations that replace the defaults
// before the config file and flags are applied.
package presets

import (
	"fmt"
	"maps"
	"slices"

	"github.com/timotree3/holochain/config"
)

var presets = map[string]config.Config{}

func register(name string, cfg config.Config) {
	if _, exists := presets[name]; exists {
		panic(fmt.Sprintf("BUG: preset %s registered twice", name))
	}
	presets[name] = cfg
}

// Options returns the names of all registered presets.
func Options() []string {
	return slices.Sorted(maps.Keys(presets))
}

// Get returns the preset with the name.
func Get(name string) (config.Config, error) {
	cfg, ok := presets[name]
	if !ok {
		return config.Config{}, fmt.Errorf("preset %s is not registered. select one of %v", name, Options())
	}
	return cfg, nil
}
