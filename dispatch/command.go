package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/datakeeper/scanrelay/scan"
)

// ActionMediaScannerScanFile is the Android intent action the system
// media scanner listens for.
const ActionMediaScannerScanFile = "android.intent.action.MEDIA_SCANNER_SCAN_FILE"

// Runner executes a command and returns its combined output.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &out
	cmd.Stderr = &out
	err := cmd.Run()
	return out.Bytes(), err
}

// CommandDispatcher runs an external command per request. Argument
// templates may contain {path} and {uri} placeholders.
type CommandDispatcher struct {
	name    string
	argv    []string
	runner  Runner
	checkFn func(output []byte) error
}

// NewCommandDispatcher builds a dispatcher from an argv template such as
// ["tracker3", "index", "--file", "{path}"].
func NewCommandDispatcher(argv []string, runner Runner) (*CommandDispatcher, error) {
	if len(argv) == 0 || argv[0] == "" {
		return nil, errors.New("dispatch command is empty")
	}
	if runner == nil {
		runner = execRunner{}
	}
	return &CommandDispatcher{
		name:   "command",
		argv:   argv,
		runner: runner,
	}, nil
}

// NewBroadcastDispatcher sends the Android media scanner intent through
// the activity manager shell tool, the same broadcast an activity sends
// with Intent.ACTION_MEDIA_SCANNER_SCAN_FILE.
func NewBroadcastDispatcher(runner Runner) *CommandDispatcher {
	d, _ := NewCommandDispatcher([]string{
		"am", "broadcast",
		"-a", ActionMediaScannerScanFile,
		"-d", "{uri}",
	}, runner)
	d.name = "broadcast"
	d.checkFn = checkBroadcastOutput
	return d
}

func (d *CommandDispatcher) Dispatch(ctx context.Context, req scan.Request) error {
	args := expandArgs(d.argv[1:], req)

	out, err := d.runner.Run(ctx, d.argv[0], args...)
	if err != nil {
		return submissionFailed(d.name, fmt.Errorf("%s: %w: %s", d.argv[0], err, strings.TrimSpace(string(out))))
	}
	if d.checkFn != nil {
		if err := d.checkFn(out); err != nil {
			return submissionFailed(d.name, err)
		}
	}

	slog.Debug("command dispatched", "backend", d.name, "requestId", req.ID, "path", req.Path.Path)
	return nil
}

func expandArgs(tmpl []string, req scan.Request) []string {
	r := strings.NewReplacer("{path}", req.Path.Path, "{uri}", req.Path.URI)
	args := make([]string, len(tmpl))
	for i, a := range tmpl {
		args[i] = r.Replace(a)
	}
	return args
}

// am exits 0 even when the broadcast could not be delivered, so the
// completion line is the only reliable acceptance signal.
func checkBroadcastOutput(out []byte) error {
	if bytes.Contains(out, []byte("Broadcast completed")) {
		return nil
	}
	msg := strings.TrimSpace(string(out))
	if msg == "" {
		msg = "no output"
	}
	return fmt.Errorf("broadcast not completed: %s", msg)
}
