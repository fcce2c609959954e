package command

import (
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/respkv/internal/core/domain"
)

func TestCommands_AgainstServer(t *testing.T) {
	addr := startServer(t)

	tests := []struct {
		name     string
		args     []string
		want     string
		wantCode int
	}{
		{"ping", []string{"ping"}, "PONG\n", 0},
		{"echo", []string{"echo", "hello"}, "hello\n", 0},
		{"get missing", []string{"get", "k"}, "(nil)\n", 0},
		{"set", []string{"set", "k", "v1"}, "OK\n", 0},
		{"get", []string{"get", "k"}, "v1\n", 0},
		{"set nx on present key", []string{"set", "--nx", "k", "v2"}, "(nil)\n", 0},
		{"set xx on present key", []string{"set", "--xx", "--ex", "100", "k", "v3"}, "OK\n", 0},
		{"get after xx", []string{"get", "k"}, "v3\n", 0},
		{"set xx on missing key", []string{"set", "--xx", "other", "v"}, "(nil)\n", 0},
		{"raw tokens", []string{"GET", "k"}, "v3\n", 0},
		{"raw unknown command", []string{"flush"}, "(error) Unknown command: flush\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := runApp(t, addr, "", tt.args...)
			if code := exitCode(res.err); code != tt.wantCode {
				t.Fatalf("exit code = %d (err %v), want %d", code, res.err, tt.wantCode)
			}
			if res.stdout != tt.want {
				t.Errorf("stdout = %q, want %q", res.stdout, tt.want)
			}
		})
	}
}

func TestCommands_JSONOutput(t *testing.T) {
	addr := startServer(t)

	res := runApp(t, addr, "", "-o", "json", "get", "missing")
	if res.err != nil {
		t.Fatalf("get failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, `"type":"nil"`) && !strings.Contains(res.stdout, `"type": "nil"`) {
		t.Errorf("stdout = %q, want nil JSON reply", res.stdout)
	}
}

func TestCommands_ArgCount(t *testing.T) {
	tests := [][]string{
		{"echo"},
		{"echo", "a", "b"},
		{"get"},
		{"set", "k"},
	}

	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			res := runApp(t, "127.0.0.1:1", "", args...)
			if res.err == nil || !strings.Contains(res.err.Error(), "usage:") {
				t.Errorf("err = %v, want usage error", res.err)
			}
		})
	}
}

func setContext(t *testing.T, args ...string) *cli.Context {
	t.Helper()
	cmd := SetCommand()
	set := flag.NewFlagSet("set", flag.ContinueOnError)
	for _, f := range cmd.Flags {
		if err := f.Apply(set); err != nil {
			t.Fatalf("Apply() error = %v", err)
		}
	}
	if err := set.Parse(args); err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	return cli.NewContext(&cli.App{}, set, nil)
}

func TestBuildSet(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    []string
		wantErr string
	}{
		{"plain", []string{"k", "v"}, []string{"set", "k", "v"}, ""},
		{"ex", []string{"--ex", "10", "k", "v"}, []string{"set", "k", "v", "ex", "10"}, ""},
		{"px nx", []string{"--px", "1500", "--nx", "k", "v"}, []string{"set", "k", "v", "px", "1500", "nx"}, ""},
		{"xx", []string{"--xx", "k", "v"}, []string{"set", "k", "v", "xx"}, ""},
		{"ex and px", []string{"--ex", "1", "--px", "1", "k", "v"}, nil, "mutually exclusive"},
		{"nx and xx", []string{"--nx", "--xx", "k", "v"}, nil, "mutually exclusive"},
		{"ex out of range", []string{"--ex", "4294967296", "k", "v"}, nil, "out of range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, err := buildSet(setContext(t, tt.args...))
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("buildSet() error = %v, want %q", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("buildSet() error = %v", err)
			}
			if got := strings.Join(cmd.Args(), " "); got != strings.Join(tt.want, " ") {
				t.Errorf("Args() = %q, want %q", got, strings.Join(tt.want, " "))
			}
		})
	}
}

func TestBuildSet_Condition(t *testing.T) {
	cmd, err := buildSet(setContext(t, "--nx", "k", "v"))
	if err != nil {
		t.Fatalf("buildSet() error = %v", err)
	}
	if cmd.Condition != domain.OnlyIfAbsent {
		t.Errorf("Condition = %v, want OnlyIfAbsent", cmd.Condition)
	}
	if cmd.Expiry != nil {
		t.Errorf("Expiry = %+v, want nil", cmd.Expiry)
	}
}

func TestREPL_AgainstServer(t *testing.T) {
	addr := startServer(t)
	history := filepath.Join(t.TempDir(), "history")

	res := runApp(t, addr, "set k 'two words'\nget k\nexit\n", "repl", "--history", history)
	if res.err != nil {
		t.Fatalf("repl failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "OK\n") || !strings.Contains(res.stdout, "two words\n") {
		t.Errorf("stdout = %q, want OK and value", res.stdout)
	}

	data, err := os.ReadFile(history)
	if err != nil {
		t.Fatalf("history not written: %v", err)
	}
	if !strings.Contains(string(data), "get k") {
		t.Errorf("history = %q, want get k", data)
	}
}

func TestRootAction_StartsREPL(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	addr := startServer(t)

	res := runApp(t, addr, "ping\n")
	if res.err != nil {
		t.Fatalf("root action failed: %v", res.err)
	}
	if !strings.Contains(res.stdout, "respkv> ") || !strings.Contains(res.stdout, "PONG") {
		t.Errorf("stdout = %q, want prompt and PONG", res.stdout)
	}
}
