// Copyright 2025 StreamNative, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package process holds the lifecycle helpers shared by the long-running
// commands.
package process

import (
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

// RunProcess starts a process and blocks until it is stopped by a signal.
// The profiling server, when enabled, shares the process lifecycle.
func RunProcess(startProcess func() (io.Closer, error)) {
	profiler := RunProfiling()
	process, err := startProcess()
	if err != nil {
		slog.Error(
			"Failed to start the process",
			slog.Any("error", err),
		)
		os.Exit(1)
	}

	WaitUntilSignal(
		process,
		profiler,
	)
}

// WaitUntilSignal blocks until SIGINT or SIGTERM, then closes the given
// closers in order and exits.
func WaitUntilSignal(closers ...io.Closer) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	sig := <-c
	slog.Info(
		"Received signal, exiting",
		slog.String("signal", sig.String()),
	)

	code := 0
	for _, closer := range closers {
		if err := closer.Close(); err != nil {
			slog.Error(
				"Failed when shutting down",
				slog.Any("error", err),
			)
			code = 1
		}
	}
	if code == 0 {
		slog.Info("Shutdown completed")
	}
	os.Exit(code)
}
