// node runs a kitsune gossip node.
package main

import (
	"os"

	"github.com/timotree3/holochain/cmd"
	"github.com/timotree3/holochain/node"
)

var (
	version string
	commit  string
	branch  string
)

func main() {
	cmd.Version = version
	cmd.Commit = commit
	cmd.Branch = branch
	if err := node.GetCommand().Execute(); err != nil {
		// the error was already printed by cobra
		os.Exit(1)
	}
}
