package command

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/core/service"
	"github.com/yndnr/respkv/internal/server/redisserver"
	"github.com/yndnr/respkv/internal/storage/memory"
)

// startServer runs a RESP server on a random loopback port.
func startServer(t *testing.T) string {
	t.Helper()
	cfg := redisserver.DefaultConfig()
	cfg.Address = "127.0.0.1:0"
	srv := redisserver.New(cfg, service.NewExecutor(memory.New()), nil)
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return srv.Addr().String()
}

// runResult captures one CLI invocation.
type runResult struct {
	stdout string
	err    error
}

// runApp runs the CLI against addr with stdin as input. Exit codes are
// returned as errors instead of terminating the test binary.
func runApp(t *testing.T, addr, stdin string, args ...string) runResult {
	t.Helper()

	var out, errOut bytes.Buffer
	app := App()
	app.Reader = strings.NewReader(stdin)
	app.Writer = &out
	app.ErrWriter = &errOut
	app.ExitErrHandler = func(*cli.Context, error) {}

	full := append([]string{"respkv-cli", "--server", addr, "--no-color", "--timeout", "2s"}, args...)
	err := app.Run(full)
	return runResult{stdout: out.String(), err: err}
}

// exitCode returns the status carried by err, 0 for nil and 1 otherwise.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if ec, ok := err.(cli.ExitCoder); ok {
		return ec.ExitCode()
	}
	return 1
}
