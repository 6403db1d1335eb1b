// Package doctor runs readiness diagnostics for config, record layout, and the Traymond endpoint.
package doctor

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rbright/traymondctl/internal/config"
	"github.com/rbright/traymondctl/internal/ipc"
)

// Check is one doctor assertion result.
type Check struct {
	Name    string
	Pass    bool
	Message string
}

// Report is the full doctor output contract.
type Report struct {
	Checks []Check
}

// OK returns true when all checks pass.
func (r Report) OK() bool {
	for _, check := range r.Checks {
		if !check.Pass {
			return false
		}
	}
	return true
}

// String renders the report as user-facing text output.
func (r Report) String() string {
	var b strings.Builder
	for _, check := range r.Checks {
		status := "OK"
		if !check.Pass {
			status = "FAIL"
		}
		b.WriteString(fmt.Sprintf("[%s] %s: %s\n", status, check.Name, check.Message))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

// Run executes config, layout, and endpoint checks.
func Run(ctx context.Context, cfg config.Loaded, client ipc.Client) Report {
	checks := []Check{checkConfig(cfg)}
	checks = append(checks, checkLayout(cfg.Config.Server.WordSize))
	checks = append(checks, checkEndpoint(ctx, client))
	return Report{Checks: checks}
}

func checkConfig(cfg config.Loaded) Check {
	if !cfg.Exists {
		return Check{Name: "config", Pass: true, Message: fmt.Sprintf("%q not found; using defaults", cfg.Path)}
	}
	return Check{Name: "config", Pass: true, Message: fmt.Sprintf("loaded %q", cfg.Path)}
}

// checkLayout reports the record size for the configured server word size.
func checkLayout(wordSize int) Check {
	layout, err := ipc.LayoutForWordSize(wordSize)
	if err != nil {
		return Check{Name: "record.layout", Pass: false, Message: err.Error()}
	}

	message := fmt.Sprintf("%d-bit server: %d-byte records with a %d-byte window handle",
		layout.WordSize(), layout.Size(), layout.HandleWidth())
	if layout.WordSize() != strconv.IntSize {
		message += fmt.Sprintf(" (client is a %d-bit build)", strconv.IntSize)
	}
	return Check{Name: "record.layout", Pass: true, Message: message}
}

// checkEndpoint opens and releases the endpoint without sending anything.
func checkEndpoint(ctx context.Context, client ipc.Client) Check {
	path := client.Endpoint()
	if err := client.Probe(ctx); err != nil {
		return Check{Name: "endpoint", Pass: false, Message: fmt.Sprintf("%s: %s", path, ipc.UnavailableReason(err))}
	}
	return Check{Name: "endpoint", Pass: true, Message: fmt.Sprintf("%s is accepting connections", path)}
}
