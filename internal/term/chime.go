package term

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const chimeRate = beep.SampleRate(44100)

// Chime plays the completion sound.
type Chime interface {
	Play()
}

// Speaker plays chimes through the default audio device.
type Speaker struct {
	mu     sync.Mutex
	closed bool
}

// NewSpeaker initializes the audio device.
func NewSpeaker() (*Speaker, error) {
	if err := speaker.Init(chimeRate, chimeRate.N(time.Second/10)); err != nil {
		return nil, err
	}
	return &Speaker{}, nil
}

// Play queues the chime without waiting for it to finish.
func (s *Speaker) Play() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	st, err := chimeStreamer(chimeRate)
	if err != nil {
		return
	}
	speaker.Play(st)
}

// Close releases the audio device.
func (s *Speaker) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	speaker.Close()
}

// chimeStreamer is two rising notes with a short gap.
func chimeStreamer(sr beep.SampleRate) (beep.Streamer, error) {
	low, err := generators.SineTone(sr, 660)
	if err != nil {
		return nil, err
	}
	high, err := generators.SineTone(sr, 990)
	if err != nil {
		return nil, err
	}
	notes := beep.Seq(
		beep.Take(sr.N(90*time.Millisecond), low),
		beep.Silence(sr.N(30*time.Millisecond)),
		beep.Take(sr.N(140*time.Millisecond), high),
	)
	return &effects.Volume{Streamer: notes, Base: 2, Volume: -2}, nil
}
