// Copyright (c) Microsoft Corporation. All rights reserved.

package testutil

import (
	"flag"
	"os"
	"testing"

	"github.com/go-logr/logr"
	"go.uber.org/zap/zapcore"

	"github.com/iradul/vscode-phantomjs-debug/pkg/logger"
)

// PJSDAP_TEST_LOG_LEVEL overrides the console log level used by tests (same values as the --verbosity flag).
const PJSDAP_TEST_LOG_LEVEL = "PJSDAP_TEST_LOG_LEVEL"

// Creates a logger for tests. Output is limited to errors unless tests run with -v
// or PJSDAP_TEST_LOG_LEVEL is set.
func NewLogForTesting(name string) logr.Logger {
	log := logger.New(name)
	log.SetLevel(testLogLevel())
	return log.Logger.WithValues("test", true)
}

func testLogLevel() zapcore.Level {
	if value, found := os.LookupEnv(PJSDAP_TEST_LOG_LEVEL); found {
		if level, err := logger.StringToLevel(value, zapcore.ErrorLevel); err == nil {
			return level
		}
	}

	if !flag.Parsed() {
		flag.Parse() // Needed to test if verbose flag was present.
	}
	if testing.Verbose() {
		return zapcore.DebugLevel
	}
	return zapcore.ErrorLevel
}
