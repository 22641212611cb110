package logger

import (
	"os"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Setup configures the global logrus logger. Production gets JSON lines,
// everything else the human readable text formatter.
func Setup(level, env string) {
	if strings.EqualFold(env, "production") {
		log.SetFormatter(&log.JSONFormatter{})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}
	log.SetOutput(os.Stdout)

	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	log.SetLevel(lvl)
}
