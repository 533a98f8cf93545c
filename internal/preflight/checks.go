package preflight

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sys/unix"

	"tagflow/internal/archive"
	"tagflow/internal/config"
	"tagflow/internal/logging"
	"tagflow/internal/store"
)

const archiveCheckTimeout = 5 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckDirectoryReadable verifies that the directory exists and can be listed.
func CheckDirectoryReadable(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckDatabase verifies the store answers queries.
func CheckDatabase(ctx context.Context, st *store.Store) Result {
	const name = "Database"
	if st == nil {
		return Result{Name: name, Detail: "not opened"}
	}
	if err := st.Ping(ctx); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", st.Path(), err)}
	}
	info, err := st.Schema(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", st.Path(), err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (schema v%d, %d migration(s))", st.Path(), info.Version, len(info.Migrations))}
}

// CheckFFprobe verifies the configured ffprobe executable resolves. An empty
// binary means duration probing is off.
func CheckFFprobe(binary string) Result {
	const name = "FFprobe"
	if binary == "" {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found", binary)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckArchive verifies the export archive bucket is reachable. A missing
// bucket passes because the daemon creates it on start.
func CheckArchive(ctx context.Context, cfg config.Archive) Result {
	const name = "Export archive"
	if !cfg.Enabled {
		return Result{Name: name, Passed: true, Detail: "Disabled"}
	}
	archiver, err := archive.New(cfg, logging.NewNop())
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, archiveCheckTimeout)
	defer cancel()

	exists, err := archiver.Check(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeArchiveError(err)}
	}
	if !exists {
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s at %s (bucket will be created)", archiver.Bucket(), cfg.Endpoint)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s at %s", archiver.Bucket(), cfg.Endpoint)}
}

func summarizeArchiveError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "bucket check timed out (object storage unresponsive)"
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "bucket check timed out (object storage unreachable)"
	}
	return err.Error()
}
