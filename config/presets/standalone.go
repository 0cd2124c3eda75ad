package presets

import (
	"os"
	"path/filepath"

	"github.com/timotree3/holochain/config"
)

func init() {
	register("standalone", standalone())
}

// standalone runs a single node without bootnodes, keeping its data in the
// temp dir.
func standalone() config.Config {
	conf := fastnet()
	conf.Preset = "standalone"
	conf.DataDir = filepath.Join(os.TempDir(), "kitsune")
	conf.P2P.Bootnodes = nil
	conf.CollectMetrics = true
	return conf
}
