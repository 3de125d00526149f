package hook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxParallel bounds how many hooks run at once for one event.
const maxParallel = 4

// Executor runs hooks with a per-call timeout.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor with the given timeout.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{timeout: timeout}
}

// Execute sends req to the hook on stdin and parses its stdout as a Response.
// The hook's manifest config is attached to the request.
func (e *Executor) Execute(ctx context.Context, h *Hook, req Request) (*Response, error) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, h.Executable)
	cmd.Dir = h.Path

	req.Config = h.Manifest.Config
	reqJSON, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}
	cmd.Stdin = bytes.NewReader(reqJSON)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err = cmd.Run()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("hook %s timed out after %v", h.Manifest.Name, e.timeout)
	}
	if err != nil {
		if s := stderr.String(); s != "" {
			return nil, fmt.Errorf("hook %s failed: %w, stderr: %s", h.Manifest.Name, err, s)
		}
		return nil, fmt.Errorf("hook %s failed: %w", h.Manifest.Name, err)
	}

	var resp Response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("failed to parse hook %s response: %w, stdout: %s", h.Manifest.Name, err, stdout.String())
	}
	return &resp, nil
}

// Result is the outcome of one hook run.
type Result struct {
	Hook     string
	Response *Response
	Err      error
}

// Runner fans an event out to every subscribed hook.
type Runner struct {
	mgr  *Manager
	exec *Executor
	log  *zap.Logger
}

// NewRunner creates a Runner. A nil logger discards output.
func NewRunner(mgr *Manager, exec *Executor, log *zap.Logger) *Runner {
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{mgr: mgr, exec: exec, log: log}
}

// Run executes every hook subscribed to req.Event and waits for all of them.
// Failures are logged and reported per hook; one failing hook does not stop
// the others.
func (r *Runner) Run(ctx context.Context, req Request) []Result {
	hooks := r.mgr.ForEvent(req.Event)
	results := make([]Result, len(hooks))

	var g errgroup.Group
	g.SetLimit(maxParallel)
	for i, h := range hooks {
		g.Go(func() error {
			resp, err := r.exec.Execute(ctx, h, req)
			if err == nil && !resp.Success {
				err = fmt.Errorf("hook %s reported failure: %s", h.Manifest.Name, resp.Error)
			}
			results[i] = Result{Hook: h.Manifest.Name, Response: resp, Err: err}

			if err != nil {
				r.log.Warn("hook failed", zap.String("hook", h.Manifest.Name), zap.String("event", req.Event), zap.Error(err))
			} else {
				r.log.Debug("hook ran", zap.String("hook", h.Manifest.Name), zap.String("event", req.Event))
			}
			return nil
		})
	}
	g.Wait()
	return results
}
