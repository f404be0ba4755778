package runtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMidiToFrequency(t *testing.T) {
	tests := []struct {
		name string
		note float64
		want float64
	}{
		{name: "A4 reference", note: 69, want: 440},
		{name: "A5 octave up", note: 81, want: 880},
		{name: "A3 octave down", note: 57, want: 220},
		{name: "middle C", note: 60, want: 261.6255653005986},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MidiToFrequency(tt.note), 1e-9)
		})
	}
}

func TestScaleDegreeToMidi(t *testing.T) {
	tests := []struct {
		name   string
		root   int
		mode   string
		degree int
		want   int
	}{
		{name: "major root", root: 60, mode: "major", degree: 0, want: 60},
		{name: "major third", root: 60, mode: "major", degree: 2, want: 64},
		{name: "major octave wrap", root: 60, mode: "major", degree: 7, want: 72},
		{name: "minor third", root: 60, mode: "minor", degree: 2, want: 63},
		{name: "negative degree descends", root: 60, mode: "major", degree: -1, want: 59},
		{name: "pentatonic wrap", root: 60, mode: "pentatonic", degree: 5, want: 72},
		{name: "unknown mode falls back to major", root: 60, mode: "klingon", degree: 2, want: 64},
		{name: "clamped high", root: 120, mode: "major", degree: 14, want: 127},
		{name: "clamped low", root: 5, mode: "major", degree: -7, want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScaleDegreeToMidi(tt.root, tt.mode, tt.degree))
		})
	}
}
