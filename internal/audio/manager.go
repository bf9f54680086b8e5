package audio

import (
	"errors"
	"fmt"
	"sync"

	"github.com/gordonklaus/portaudio"
)

// pa keeps PortAudio initialized while any stream or device query holds a
// reference, so capture and playback can open and close independently.
var pa = &refCount{init: portaudio.Initialize, term: portaudio.Terminate}

type refCount struct {
	mu   sync.Mutex
	n    int
	init func() error
	term func() error
}

func (r *refCount) acquire() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.n == 0 {
		if err := r.init(); err != nil {
			return fmt.Errorf("failed to initialize PortAudio: %w", err)
		}
	}
	r.n++
	return nil
}

func (r *refCount) release() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.n == 0 {
		return nil
	}
	r.n--
	if r.n > 0 {
		return nil
	}
	if err := r.term(); err != nil {
		return fmt.Errorf("failed to terminate PortAudio: %w", err)
	}
	return nil
}

// with runs fn holding a reference
func (r *refCount) with(fn func() error) error {
	if err := r.acquire(); err != nil {
		return err
	}
	defer r.release()
	return fn()
}

// InputAvailable reports an error if there is no default capture device
func InputAvailable() error {
	return pa.with(func() error {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return fmt.Errorf("no default input device: %w", err)
		}
		if dev == nil || dev.MaxInputChannels < channels {
			return errors.New("default input device has no input channels")
		}
		return nil
	})
}
