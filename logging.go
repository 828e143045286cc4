package bustracker

import (
	"log"
	"os"
)

// InitLogging routes all tracker output to stdout under a common
// prefix, with microsecond timestamps to match the resolution of
// incoming location reports.
func InitLogging() {
	log.SetOutput(os.Stdout)
	log.SetPrefix("bus-tracker ")
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
}
