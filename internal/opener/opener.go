// Package opener hands URLs and app URIs to the desktop environment
package opener

import (
	"context"
	"fmt"
	"log"
	"os/exec"
	"runtime"
	"strings"
)

// System opens targets with the platform launcher. Open returns once the
// launcher has started; it does not wait for it.
type System struct {
	goos    string
	command func(name string, args ...string) *exec.Cmd
}

func NewSystem() *System {
	return &System{goos: runtime.GOOS, command: exec.Command}
}

// Command returns the launcher invocation for target on goos
func Command(goos, target string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{"--", target}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{target}, nil
	case "windows":
		return "cmd", []string{"/c", "start", "", target}, nil
	default:
		return "", nil, fmt.Errorf("open not supported on %s", goos)
	}
}

func (s *System) Open(ctx context.Context, target string) error {
	target = strings.TrimSpace(target)
	if target == "" {
		return fmt.Errorf("empty target")
	}
	// launchers treat a leading dash as a flag
	if strings.HasPrefix(target, "-") {
		return fmt.Errorf("invalid target %q", target)
	}

	name, args, err := Command(s.goos, target)
	if err != nil {
		return err
	}

	cmd := s.command(name, args...)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open failed: %w", err)
	}
	log.Printf("Opened %s", target)

	go func() {
		if err := cmd.Wait(); err != nil {
			log.Printf("Launcher for %s exited: %v", target, err)
		}
	}()
	return nil
}

// Recorder collects targets instead of opening them
type Recorder struct {
	Targets []string
}

func (r *Recorder) Open(ctx context.Context, target string) error {
	log.Printf("Would open %s", target)
	r.Targets = append(r.Targets, target)
	return nil
}
