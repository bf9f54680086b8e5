package audio

import (
	"bytes"
	"fmt"
	"io"

	"github.com/tosone/minimp3"
	"github.com/youpy/go-wav"
)

// AudioDecoder turns WAV or MP3 payloads into mono float32 samples
type AudioDecoder struct{}

func NewAudioDecoder() *AudioDecoder {
	return &AudioDecoder{}
}

// DecodeAudioData detects the container and returns mono samples with their rate
func (d *AudioDecoder) DecodeAudioData(audioData []byte) ([]float32, int, error) {
	switch detectFormat(audioData) {
	case "wav":
		return d.decodeWAV(audioData)
	case "mp3":
		return d.decodeMP3(audioData)
	default:
		samples, rate, err := d.decodeWAV(audioData)
		if err != nil {
			return d.decodeMP3(audioData)
		}
		return samples, rate, nil
	}
}

func detectFormat(data []byte) string {
	if len(data) >= 4 {
		if bytes.Equal(data[:4], []byte("RIFF")) {
			return "wav"
		}
		if data[0] == 0xFF && (data[1]&0xE0) == 0xE0 {
			return "mp3"
		}
		if bytes.Equal(data[:3], []byte("ID3")) {
			return "mp3"
		}
	}
	return "unknown"
}

func (d *AudioDecoder) decodeWAV(audioData []byte) ([]float32, int, error) {
	wavReader := wav.NewReader(bytes.NewReader(audioData))

	format, err := wavReader.Format()
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read WAV format: %w", err)
	}

	scale := float32(int64(1) << (format.BitsPerSample - 1))
	if format.BitsPerSample == 0 {
		scale = 32768.0
	}

	var samples []float32
	for {
		sampleData, err := wavReader.ReadSamples()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("failed to read WAV samples: %w", err)
		}

		for _, sample := range sampleData {
			value := float32(wavReader.IntValue(sample, 0)) / scale
			if format.NumChannels == 2 {
				right := float32(wavReader.IntValue(sample, 1)) / scale
				value = (value + right) / 2.0
			}
			samples = append(samples, clamp(value))
		}
	}

	return samples, int(format.SampleRate), nil
}

func (d *AudioDecoder) decodeMP3(audioData []byte) ([]float32, int, error) {
	decoder, pcmData, err := minimp3.DecodeFull(audioData)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to decode MP3: %w", err)
	}
	defer decoder.Close()

	if decoder.Channels < 1 {
		return nil, 0, fmt.Errorf("failed to decode MP3: no channels")
	}

	pcmSamples := len(pcmData) / 2
	samples := make([]float32, 0, pcmSamples/decoder.Channels)

	for i := 0; i+decoder.Channels <= pcmSamples; i += decoder.Channels {
		var sum float32
		for c := 0; c < decoder.Channels; c++ {
			j := (i + c) * 2
			raw := int16(pcmData[j]) | int16(pcmData[j+1])<<8
			sum += float32(raw) / 32768.0
		}
		samples = append(samples, clamp(sum/float32(decoder.Channels)))
	}

	return samples, decoder.SampleRate, nil
}

// Resample converts samples between rates with linear interpolation
func Resample(inputSamples []float32, inputRate, outputRate int) []float32 {
	if inputRate == outputRate || inputRate <= 0 || outputRate <= 0 {
		result := make([]float32, len(inputSamples))
		copy(result, inputSamples)
		return result
	}
	if len(inputSamples) == 0 {
		return []float32{}
	}

	ratio := float64(inputRate) / float64(outputRate)
	outputLength := int(float64(len(inputSamples)) / ratio)
	if outputLength <= 0 {
		return []float32{}
	}

	outputSamples := make([]float32, outputLength)
	for i := 0; i < outputLength; i++ {
		srcIndex := float64(i) * ratio
		srcIndexInt := int(srcIndex)
		fraction := srcIndex - float64(srcIndexInt)

		if srcIndexInt >= len(inputSamples)-1 {
			outputSamples[i] = inputSamples[len(inputSamples)-1]
		} else {
			sample1 := inputSamples[srcIndexInt]
			sample2 := inputSamples[srcIndexInt+1]
			outputSamples[i] = sample1 + float32(fraction)*(sample2-sample1)
		}
	}

	return outputSamples
}

func clamp(v float32) float32 {
	if v > 1.0 {
		return 1.0
	}
	if v < -1.0 {
		return -1.0
	}
	return v
}
