package mcp

import (
	"context"
	"os"
	"time"

	"mlem2/internal/logging"
)

// WatchParent calls cancel when the parent process goes away (the MCP client
// exited without closing stdin). It polls the parent pid and never reads
// stdin, which belongs to the stdio transport.
//
// The goroutine exits when ctx is canceled or parent death is detected.
func WatchParent(ctx context.Context, interval time.Duration, cancel context.CancelFunc) {
	ppid := os.Getppid()
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if os.Getppid() != ppid {
					logging.New("mcp").Warn("parent process died, shutting down", "ppid", ppid)
					cancel()
					return
				}
			}
		}
	}()
}
