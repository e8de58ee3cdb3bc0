package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/hajimehoshi/go-mp3"
)

const (
	// DefaultBlockSize matches the capture tap size of the mobile client.
	DefaultBlockSize = 1024
	// DefaultSampleRate is assumed when a source reports no rate.
	DefaultSampleRate = 44100

	// go-mp3 always decodes to 16-bit little-endian stereo.
	mp3BytesPerFrame = 4
)

// MP3Source decodes an mp3 stream into mono float32 blocks in [-1,1]. It
// stands in for a microphone when analysing recorded clips.
type MP3Source struct {
	decoder   *mp3.Decoder
	blockSize int

	mu  sync.Mutex
	err error
}

// NewMP3Source prepares a decoder for r. blockSize <= 0 selects DefaultBlockSize.
func NewMP3Source(r io.Reader, blockSize int) (*MP3Source, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, fmt.Errorf("audio: mp3 decode failed: %w", err)
	}
	if blockSize <= 0 {
		blockSize = DefaultBlockSize
	}
	return &MP3Source{decoder: dec, blockSize: blockSize}, nil
}

// SampleRate returns the decoded sample rate.
func (s *MP3Source) SampleRate() int {
	return s.decoder.SampleRate()
}

// Blocks streams decoded blocks until the stream ends or ctx is cancelled.
// The final block may be shorter than the block size.
func (s *MP3Source) Blocks(ctx context.Context) (<-chan []float32, error) {
	out := make(chan []float32)
	go func() {
		defer close(out)
		raw := make([]byte, s.blockSize*mp3BytesPerFrame)
		for {
			n, err := io.ReadFull(s.decoder, raw)
			if frames := n / mp3BytesPerFrame; frames > 0 {
				select {
				case out <- downmix(raw[:frames*mp3BytesPerFrame]):
				case <-ctx.Done():
					return
				}
			}
			if err != nil {
				if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
					s.setErr(fmt.Errorf("audio: mp3 read failed: %w", err))
				}
				return
			}
		}
	}()
	return out, nil
}

// Err returns the decode error that ended the stream early, if any.
func (s *MP3Source) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

func (s *MP3Source) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

// downmix averages interleaved 16-bit stereo frames into mono floats.
func downmix(raw []byte) []float32 {
	out := make([]float32, len(raw)/mp3BytesPerFrame)
	for i := range out {
		off := i * mp3BytesPerFrame
		left := int16(raw[off]) | int16(raw[off+1])<<8
		right := int16(raw[off+2]) | int16(raw[off+3])<<8
		out[i] = float32((float64(left) + float64(right)) / 2 / 32768.0)
	}
	return out
}
