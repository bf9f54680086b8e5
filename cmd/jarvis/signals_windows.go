//go:build windows

package main

import "context"

func notifySignals(ctx context.Context, foreground, start func()) func() {
	return func() {}
}
