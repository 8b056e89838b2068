// Package preflight runs the checks behind `argus doctor`: API-key
// presence, write access to .argus/, and disk space, before an index
// run — a direct, concrete answer to the Config error kind's "check
// API key" suggestion.
package preflight

import (
	"fmt"
	"os"
	"path/filepath"
	"syscall"

	"github.com/argus-dev/argus/internal/config"
)

// Status classifies the outcome of a single check.
type Status int

const (
	StatusPass Status = iota
	StatusWarn
	StatusFail
)

func (s Status) String() string {
	switch s {
	case StatusPass:
		return "PASS"
	case StatusWarn:
		return "WARN"
	case StatusFail:
		return "FAIL"
	default:
		return "UNKNOWN"
	}
}

// Result is the outcome of one named check.
type Result struct {
	Name     string
	Status   Status
	Message  string
	Required bool
}

// Failed reports whether this is a required check that did not pass.
func (r Result) Failed() bool {
	return r.Required && r.Status == StatusFail
}

// minFreeBytes is the minimum free disk space preflight requires before
// warning that an index run may not have room to complete.
const minFreeBytes = 100 * 1024 * 1024 // 100 MiB

// Run executes every check against the repository rooted at dir using
// cfg, and returns their results in a fixed order.
func Run(dir string, cfg *config.Config) []Result {
	return []Result{
		checkAPIKey(cfg),
		checkWriteAccess(dir),
		checkDiskSpace(dir),
	}
}

func checkAPIKey(cfg *config.Config) Result {
	if _, err := cfg.ResolveAPIKey(); err != nil {
		return Result{
			Name:     "embedding API key",
			Status:   StatusFail,
			Message:  err.Error(),
			Required: true,
		}
	}
	return Result{Name: "embedding API key", Status: StatusPass, Message: "resolved", Required: true}
}

func checkWriteAccess(dir string) Result {
	argusDir := filepath.Join(dir, ".argus")
	if err := os.MkdirAll(argusDir, 0o755); err != nil {
		return Result{
			Name:     "write access to .argus/",
			Status:   StatusFail,
			Message:  fmt.Sprintf("cannot create %s: %v", argusDir, err),
			Required: true,
		}
	}
	probe := filepath.Join(argusDir, ".write-probe")
	if err := os.WriteFile(probe, []byte("ok"), 0o644); err != nil {
		return Result{
			Name:     "write access to .argus/",
			Status:   StatusFail,
			Message:  fmt.Sprintf("cannot write to %s: %v", argusDir, err),
			Required: true,
		}
	}
	_ = os.Remove(probe)
	return Result{Name: "write access to .argus/", Status: StatusPass, Message: argusDir, Required: true}
}

func checkDiskSpace(dir string) Result {
	var stat syscall.Statfs_t
	if err := syscall.Statfs(dir, &stat); err != nil {
		return Result{
			Name:     "disk space",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("could not determine free space: %v", err),
			Required: false,
		}
	}
	free := stat.Bavail * uint64(stat.Bsize)
	if free < minFreeBytes {
		return Result{
			Name:     "disk space",
			Status:   StatusWarn,
			Message:  fmt.Sprintf("only %d bytes free, recommend at least %d", free, minFreeBytes),
			Required: false,
		}
	}
	return Result{Name: "disk space", Status: StatusPass, Message: fmt.Sprintf("%d bytes free", free), Required: false}
}

// AnyCritical reports whether any result represents a failed required
// check.
func AnyCritical(results []Result) bool {
	for _, r := range results {
		if r.Failed() {
			return true
		}
	}
	return false
}
