package main

import (
	"os"

	"github.com/nexus-project/scheduler/cmd/scheduler/cmd"
	"github.com/nexus-project/scheduler/internal/scheduler"
)

func main() {
	scheduler.ConfigureLogging()
	if err := cmd.RootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
