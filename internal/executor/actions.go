package executor

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/pmorel/tasker/internal/queue"
)

// interpreters maps code-block language tags to the binary that runs them.
var interpreters = map[string]string{
	"python":     "python3",
	"python3":    "python3",
	"js":         "node",
	"javascript": "node",
	"node":       "node",
	"ruby":       "ruby",
	"perl":       "perl",
}

// ActionRunner executes parsed actions inside a working directory. Action
// failures are recorded per action, never returned as an error: one bad
// command must not discard the rest of the plan.
type ActionRunner struct {
	workDir string
}

func NewActionRunner(workDir string) *ActionRunner {
	if workDir == "" {
		workDir, _ = os.Getwd()
	}
	return &ActionRunner{workDir: workDir}
}

func (r *ActionRunner) Run(ctx context.Context, actions []Action) []queue.ActionResult {
	results := make([]queue.ActionResult, 0, len(actions))
	for _, a := range actions {
		var res queue.ActionResult
		switch a.Kind {
		case ActionShell:
			res = r.runShell(ctx, a)
		case ActionFile:
			res = r.writeFile(a)
		case ActionCode:
			res = r.runCode(ctx, a)
		default:
			res = queue.ActionResult{Kind: string(a.Kind), Error: "unknown action kind"}
		}
		if res.Error != "" {
			slog.Warn("action failed", "kind", res.Kind, "detail", res.Detail, "error", res.Error)
		}
		results = append(results, res)
	}
	return results
}

func (r *ActionRunner) runShell(ctx context.Context, a Action) queue.ActionResult {
	res := queue.ActionResult{Kind: string(ActionShell), Detail: firstLine(a.Source)}

	prog, err := syntax.NewParser().Parse(strings.NewReader(a.Source), "")
	if err != nil {
		res.Error = fmt.Sprintf("parse shell block: %v", err)
		return res
	}

	var out bytes.Buffer
	runner, err := interp.New(
		interp.Dir(r.workDir),
		interp.Env(expand.ListEnviron(os.Environ()...)),
		interp.StdIO(nil, &out, &out),
	)
	if err != nil {
		res.Error = fmt.Sprintf("init shell: %v", err)
		return res
	}

	if err := runner.Run(ctx, prog); err != nil {
		res.Error = err.Error()
	}
	res.Output = out.String()
	return res
}

// writeFile resolves relative paths against the working directory and writes
// atomically via temp file + rename.
func (r *ActionRunner) writeFile(a Action) queue.ActionResult {
	res := queue.ActionResult{Kind: string(ActionFile), Detail: a.Path}

	path := a.Path
	if !filepath.IsAbs(path) {
		path = filepath.Join(r.workDir, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		res.Error = fmt.Sprintf("create dir: %v", err)
		return res
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(a.Source), 0o644); err != nil {
		res.Error = fmt.Sprintf("write file: %v", err)
		return res
	}
	if err := os.Rename(tmp, path); err != nil {
		res.Error = fmt.Sprintf("rename file: %v", err)
		return res
	}
	res.Output = fmt.Sprintf("wrote %d bytes", len(a.Source))
	return res
}

func (r *ActionRunner) runCode(ctx context.Context, a Action) queue.ActionResult {
	res := queue.ActionResult{Kind: string(ActionCode), Detail: a.Lang}

	bin, ok := interpreters[strings.ToLower(a.Lang)]
	if !ok {
		res.Error = fmt.Sprintf("no interpreter for %q", a.Lang)
		return res
	}
	if _, err := exec.LookPath(bin); err != nil {
		res.Error = fmt.Sprintf("interpreter %s not installed", bin)
		return res
	}

	tmp, err := os.CreateTemp("", "tasker-*."+strings.ToLower(a.Lang))
	if err != nil {
		res.Error = fmt.Sprintf("create temp source: %v", err)
		return res
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.WriteString(a.Source); err != nil {
		tmp.Close()
		res.Error = fmt.Sprintf("write temp source: %v", err)
		return res
	}
	tmp.Close()

	cmd := exec.CommandContext(ctx, bin, tmp.Name())
	cmd.Dir = r.workDir
	out, err := cmd.CombinedOutput()
	res.Output = string(out)
	if err != nil {
		res.Error = err.Error()
	}
	return res
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
