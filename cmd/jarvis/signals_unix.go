//go:build !windows

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// notifySignals calls foreground whenever the process is continued after a
// stop, e.g. fg after ctrl-z in a shell, and start on SIGUSR1 so a hotkey
// daemon can request listening with `pkill -USR1 jarvis`.
func notifySignals(ctx context.Context, foreground, start func()) func() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGCONT, syscall.SIGUSR1)

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case sig := <-sigCh:
				if sig == syscall.SIGUSR1 {
					start()
				} else {
					foreground()
				}
			}
		}
	}()

	return func() { signal.Stop(sigCh) }
}
