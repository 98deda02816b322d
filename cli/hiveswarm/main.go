package main

import (
	"os"

	hiveswarmcmder "github.com/IraBond/ClaudeCodeV2-HiveSwarm/cmd/hiveswarm"
)

func main() {
	cmd := hiveswarmcmder.NewHiveSwarmCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
