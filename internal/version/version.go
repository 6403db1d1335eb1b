// Package version exposes build metadata injected via -ldflags.
package version

import (
	"fmt"
	"runtime"

	"github.com/rbright/traymondctl/internal/ipc"
)

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// String reports build metadata and the record sizes this build can emit.
// The protocol carries no version field, so the sizes are the only
// compatibility hint a user can compare against the server.
func String() string {
	return fmt.Sprintf("traymondctl %s (commit=%s, date=%s, go=%s, %s/%s, records=%dB/64-bit %dB/32-bit)",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH,
		ipc.Layout64.Size(), ipc.Layout32.Size())
}
