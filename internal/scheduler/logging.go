package scheduler

import (
	"os"

	log "github.com/sirupsen/logrus"
)

// ConfigureLogging sets the process-wide logrus formatter and output stream.
func ConfigureLogging() {
	log.SetFormatter(&log.TextFormatter{ForceColors: true, FullTimestamp: true})
	log.SetOutput(os.Stdout)
}
