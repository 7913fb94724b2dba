// Package gnnclient adapts the GNN heuristic oracle (§6): an external
// script invoked once per evaluated state, communicating over a
// canonical graph file and a small result file rather than a long-lived
// RPC channel, so the oracle can be any process the user points at.
package gnnclient

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/epistemicgo/episteme/internal/domain"
	"github.com/epistemicgo/episteme/internal/ground"
	"github.com/epistemicgo/episteme/internal/kripke"
)

// Client invokes ScriptPath with the canonical-graph-file path and the
// current plan length as arguments, reading the oracle's verdict back
// from a result file it is expected to write.
type Client struct {
	ScriptPath string
	WorkDir    string
}

// New returns a Client. workDir holds scratch graph/result files; it is
// created if it does not already exist.
func New(scriptPath, workDir string) *Client {
	return &Client{ScriptPath: scriptPath, WorkDir: workDir}
}

// Evaluate writes state's canonical JSON graph to a scratch file, runs
// the oracle script with (graphPath, planLength, resultPath), and
// parses the `VALUE:<int>` line the oracle is required to write. A
// non-zero oracle exit is fatal (§6).
func (c *Client) Evaluate(state *kripke.State, planLength int, g *ground.Grounder) (int, error) {
	if err := os.MkdirAll(c.WorkDir, 0o755); err != nil {
		return 0, fmt.Errorf("gnnclient: creating scratch dir: %w", err)
	}
	runID := uuid.NewString()
	graphPath := filepath.Join(c.WorkDir, "gnn_"+runID+".json")
	resultPath := filepath.Join(c.WorkDir, "gnn_"+runID+".result")
	defer os.Remove(graphPath)
	defer os.Remove(resultPath)

	gf, err := os.Create(graphPath)
	if err != nil {
		return 0, fmt.Errorf("gnnclient: creating graph scratch file: %w", err)
	}
	writeErr := state.WriteAsJSON(gf, g)
	closeErr := gf.Close()
	if writeErr != nil {
		return 0, fmt.Errorf("gnnclient: writing canonical graph: %w", writeErr)
	}
	if closeErr != nil {
		return 0, fmt.Errorf("gnnclient: closing graph scratch file: %w", closeErr)
	}

	cmd := exec.Command(c.ScriptPath, graphPath, strconv.Itoa(planLength), resultPath)
	out, runErr := cmd.CombinedOutput()
	if runErr != nil {
		return 0, &domain.CoreError{
			Code:    domain.ExitGNNOracleFailure,
			Message: fmt.Sprintf("gnnclient: oracle %q failed: %v: %s", c.ScriptPath, runErr, strings.TrimSpace(string(out))),
		}
	}

	return readValue(resultPath)
}

func readValue(resultPath string) (int, error) {
	f, err := os.Open(resultPath)
	if err != nil {
		return 0, &domain.CoreError{
			Code:    domain.ExitGNNOracleFailure,
			Message: fmt.Sprintf("gnnclient: oracle produced no result file: %v", err),
		}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if v, ok := strings.CutPrefix(line, "VALUE:"); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return 0, &domain.CoreError{
					Code:    domain.ExitGNNOracleFailure,
					Message: fmt.Sprintf("gnnclient: malformed VALUE line %q: %v", line, err),
				}
			}
			return n, nil
		}
	}
	return 0, &domain.CoreError{
		Code:    domain.ExitGNNOracleFailure,
		Message: "gnnclient: result file had no VALUE: line",
	}
}
