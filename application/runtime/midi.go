package runtime

import (
	"math"
)

// Equal-temperament reference: A4 = MIDI 69 = 440Hz exactly
const (
	referenceFrequency = 440.0
	referenceMidiNote  = 69.0
	semitonesPerOctave = 12.0
)

// scaleIntervals holds the fixed per-mode interval tables, in
// semitones from the root
var scaleIntervals = map[string][]int{
	"major":      {0, 2, 4, 5, 7, 9, 11},
	"minor":      {0, 2, 3, 5, 7, 8, 10},
	"dorian":     {0, 2, 3, 5, 7, 9, 10},
	"phrygian":   {0, 1, 3, 5, 7, 8, 10},
	"lydian":     {0, 2, 4, 6, 7, 9, 11},
	"mixolydian": {0, 2, 4, 5, 7, 9, 10},
	"pentatonic": {0, 2, 4, 7, 9},
}

// MidiToFrequency converts a MIDI note number to a frequency in Hz
// using 12-tone equal temperament
func MidiToFrequency(note float64) float64 {
	return midiToFrequencyFrom(referenceFrequency, referenceMidiNote, note)
}

func midiToFrequencyFrom(baseFreq, baseNote, note float64) float64 {
	return baseFreq * math.Pow(2, (note-baseNote)/semitonesPerOctave)
}

// ScaleDegreeToMidi maps a scale degree to a MIDI note for the given
// root note and mode, clamped to the valid MIDI range [0,127]
// Degrees beyond the scale length wrap into the next octave; negative
// degrees descend
func ScaleDegreeToMidi(rootNote int, mode string, degree int) int {
	intervals, ok := scaleIntervals[mode]
	if !ok {
		intervals = scaleIntervals["major"]
	}

	n := len(intervals)
	octave := degree / n
	step := degree % n
	if step < 0 {
		step += n
		octave--
	}

	note := rootNote + octave*12 + intervals[step]
	if note < 0 {
		return 0
	}
	if note > 127 {
		return 127
	}
	return note
}
