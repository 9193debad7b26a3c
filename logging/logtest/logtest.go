// Package logtest configures logging for package tests.
package logtest

import (
	"testing"

	"github.com/rs/zerolog/log"

	"github.com/moffa90/go-model2450/logging"
)

// Start installs the test logging profile once per test binary and marks
// the start of t in the log.
func Start(t *testing.T) {
	t.Helper()
	logging.ConfigureTests()
	log.Debug().Str("test", t.Name()).Msg("start")
}
