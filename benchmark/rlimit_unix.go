//go:build linux

package benchmark

import (
	"fmt"
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// SetMaxResources raises the open file limit to its hard maximum and lets
// the Go runtime use most of the kernel thread limit, so large worker pools
// do not run out of sockets.
func SetMaxResources(log *zap.Logger) error {
	const threadLimit = 10000
	rLimit := unix.Rlimit{}

	if err := unix.Getrlimit(unix.RLIMIT_NOFILE, &rLimit); err != nil {
		return fmt.Errorf("unable to get rlimit: %w", err)
	}

	rLimit.Cur = rLimit.Max
	if err := unix.Setrlimit(unix.RLIMIT_NOFILE, &rLimit); err != nil {
		return fmt.Errorf("unable to set open file limit: %w", err)
	}

	threads, err := readLinuxMaxThreads("/proc/sys/kernel/threads-max")
	if err != nil {
		return fmt.Errorf("unable to read max threads: %w", err)
	}

	// 90% of the system's max thread limit
	maxThreads := (int(threads) * 90) / 100
	if maxThreads > threadLimit {
		debug.SetMaxThreads(maxThreads)
	}

	log.Debug("system resources adjusted",
		zap.Uint64("nofile", rLimit.Cur),
		zap.Int("max_threads", maxThreads))
	return nil
}

// readLinuxMaxThreads parses the kernel thread limit file.
func readLinuxMaxThreads(path string) (uint32, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("unable to read %s: %w", path, err)
	}
	trimmed := strings.TrimSpace(string(data))
	threads, err := strconv.ParseUint(trimmed, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("unable to parse max threads value: %w", err)
	}
	return uint32(threads), nil
}
