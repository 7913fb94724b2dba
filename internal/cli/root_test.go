package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/pflag"

	"github.com/epistemicgo/episteme/internal/search"
)

const coinTossDomain = `
fluents: [heads]
agents: [a]
actions:
  - name: look
    type: sensing
    fully_observant:
      - agent: a
    effects:
      - postcondition: [[heads]]
goal:
  - or:
      - b: {agent: a, phi: {fluent: [[heads]]}}
      - b: {agent: a, phi: {fluent: [["!heads"]]}}
`

func writeDomainFile(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "coin_toss.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

// resetFlags restores every rootCmd flag to its registered default,
// since rootCmd is a package-level singleton shared across tests (the
// same idiom the teacher's sequence_test.go relies on for rootCmd.Execute).
func resetFlags(t *testing.T) {
	t.Helper()
	rootCmd.Flags().VisitAll(func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
	})
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(t)

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(os.Stdout)
		rootCmd.SetErr(os.Stderr)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestRootCommandFindsPlan(t *testing.T) {
	path := writeDomainFile(t, coinTossDomain)
	out, err := runCLI(t, path)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !strings.HasPrefix(out, "look") {
		t.Fatalf("expected plan containing action %q, got %q", "look", out)
	}
}

func TestRootCommandRejectsAlreadySatisfiedGoal(t *testing.T) {
	const trivial = `
fluents: [p]
agents: [a]
goal:
  - fluent: [["!p"]]
`
	path := writeDomainFile(t, trivial)
	_, err := runCLI(t, path)
	if err == nil {
		t.Fatalf("expected an error when the initial state already satisfies the goal")
	}
}

func TestRootCommandExecuteActions(t *testing.T) {
	path := writeDomainFile(t, coinTossDomain)
	out, err := runCLI(t, path, "--execute-actions=look")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if !bytes.Contains([]byte(out), []byte("digraph")) {
		t.Fatalf("expected DOT output from plan validation, got %q", out)
	}
}

func TestOracleFromFlagsNilWithoutScript(t *testing.T) {
	resetFlags(t)
	if got := oracleFromFlags(rootCmd); got != nil {
		t.Fatalf("expected nil oracle when --gnn-script unset, got %+v", got)
	}
}

func TestWriteResultsFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "results.txt")
	result := &search.Result{Found: true, PlanLength: 3, Expanded: 10}
	if err := writeResultsFile(path, result, 2500*time.Millisecond); err != nil {
		t.Fatalf("writeResultsFile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	want := "plan_length=3\nexpanded=10\nelapsed_ms=2500\n"
	if string(raw) != want {
		t.Fatalf("got %q, want %q", raw, want)
	}
}
