// Command notify is a completion hook that shows a desktop notification.
// Build it next to its hook.json:
//
//	go build -o hooks/notify/notify ./hooks/notify
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// Request mirrors what the hook runner writes to stdin.
type Request struct {
	Event    string          `json:"event"`
	Session  string          `json:"session"`
	Body     string          `json:"body"`
	Zone     string          `json:"zone"`
	Policy   string          `json:"policy"`
	Progress float64         `json:"progress"`
	Config   json.RawMessage `json:"config"`
}

// Response is written back on stdout.
type Response struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

type settings struct {
	Title string `json:"title"`
}

func main() {
	var req Request
	if err := json.NewDecoder(os.Stdin).Decode(&req); err != nil {
		respond(fmt.Errorf("failed to decode request: %w", err))
		return
	}
	if req.Event != "completion" {
		respond(fmt.Errorf("unsupported event: %s", req.Event))
		return
	}

	s := settings{Title: "Guinea Day"}
	if len(req.Config) > 0 {
		json.Unmarshal(req.Config, &s)
	}

	respond(notify(s.Title, message(req)))
}

func message(req Request) string {
	if req.Zone != "" {
		return fmt.Sprintf("%s found the %s!", req.Body, req.Zone)
	}
	return fmt.Sprintf("%s made it across (%.0f%%)", req.Body, req.Progress)
}

func notify(title, msg string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		script := fmt.Sprintf("display notification %q with title %q", msg, title)
		cmd = exec.Command("osascript", "-e", script)
	case "linux":
		cmd = exec.Command("notify-send", title, msg)
	default:
		return fmt.Errorf("notifications not supported on %s", runtime.GOOS)
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func respond(err error) {
	resp := Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}
