package main

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"
)

const clickSampleRate = beep.SampleRate(44100)

// clicker plays a short decaying sine burst for keystroke feedback.
type clicker struct {
	volume float64
}

// newClicker initializes the speaker once and returns the click source.
func newClicker(volume float64) (*clicker, error) {
	if err := speaker.Init(clickSampleRate, clickSampleRate.N(50*time.Millisecond)); err != nil {
		return nil, err
	}
	return &clicker{volume: volume}, nil
}

// Play queues one click. Non-blocking; the speaker mixes overlapping clicks.
func (c *clicker) Play() {
	const (
		freq     = 1660.0
		duration = 28 * time.Millisecond
	)
	total := clickSampleRate.N(duration)
	pos := 0
	stream := beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if pos >= total {
			return 0, false
		}
		n := len(samples)
		if n > total-pos {
			n = total - pos
		}
		for i := 0; i < n; i++ {
			t := float64(pos+i) / float64(clickSampleRate)
			decay := 1 - float64(pos+i)/float64(total)
			v := math.Sin(2*math.Pi*freq*t) * decay * c.volume * 0.4
			samples[i][0] = v
			samples[i][1] = v
		}
		pos += n
		return n, true
	})
	speaker.Play(stream)
}
