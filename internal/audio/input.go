package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

const (
	// SampleRate is the capture rate expected by the transcription backends
	SampleRate      = 16000
	channels        = 1
	FramesPerBuffer = 1024
)

// Input is a blocking mono microphone stream
type Input struct {
	stream *portaudio.Stream
	buffer []float32
}

func NewInput() (*Input, error) {
	if err := pa.acquire(); err != nil {
		return nil, err
	}

	input := &Input{
		buffer: make([]float32, FramesPerBuffer),
	}

	stream, err := portaudio.OpenDefaultStream(channels, 0, float64(SampleRate), FramesPerBuffer, input.buffer)
	if err != nil {
		pa.release()
		return nil, fmt.Errorf("failed to open input stream: %w", err)
	}

	input.stream = stream
	return input, nil
}

func (i *Input) Start() error {
	return i.stream.Start()
}

// Read blocks until the next frame is captured and returns a copy of it
func (i *Input) Read() ([]float32, error) {
	if err := i.stream.Read(); err != nil {
		return nil, err
	}

	data := make([]float32, len(i.buffer))
	copy(data, i.buffer)
	return data, nil
}

func (i *Input) Close() error {
	if i.stream != nil {
		i.stream.Stop()
		i.stream.Close()
	}
	return pa.release()
}
