package runtime

import (
	"testing"

	"patchbay/domain/catalog"
	enginememory "patchbay/infrastructure/engine/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestRuntime(t *testing.T) (*Runtime, *enginememory.Engine) {
	t.Helper()
	eng := enginememory.New()
	return New(catalog.Builtin(), eng, nil, nil, zap.NewNop()), eng
}

func TestRuntime_AddNode_SeedsOutputs(t *testing.T) {
	rt, _ := newTestRuntime(t)

	require.NoError(t, rt.AddNode("slider", catalog.TypeSlider))

	// The slider's output starts at its value property, not zero
	v, ok := rt.Output("slider", "value")
	require.True(t, ok)
	assert.Equal(t, 0.5, v)
}

func TestRuntime_AddNode_UnknownType(t *testing.T) {
	rt, _ := newTestRuntime(t)

	err := rt.AddNode("x", "NoSuchNode")

	assert.Error(t, err)
	assert.False(t, rt.Has("x"))
}

func TestRuntime_Propagation_SliderToDisplay(t *testing.T) {
	// Arrange
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("slider", catalog.TypeSlider))
	require.NoError(t, rt.AddNode("display", catalog.TypeDisplay))
	rt.AddInputConnection("display", "slider", "value", "input")

	// Act: propagation is synchronous, no settling needed
	rt.SetOutput("slider", "value", 0.9)

	// Assert
	v, ok := rt.Property("display", "value")
	require.True(t, ok)
	assert.Equal(t, 0.9, v)
}

func TestRuntime_Subscribe_FiresImmediatelyWithCurrentValue(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("slider", catalog.TypeSlider))
	rt.SetOutput("slider", "value", 0.25)

	var got any
	rt.Subscribe("slider", "value", "observer", "input", func(value any) {
		got = value
	})

	assert.Equal(t, 0.25, got)
}

func TestRuntime_AddInputConnection_DuplicateIsNoOp(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("slider", catalog.TypeSlider))
	require.NoError(t, rt.AddNode("display", catalog.TypeDisplay))

	rt.AddInputConnection("display", "slider", "value", "input")
	rt.AddInputConnection("display", "slider", "value", "input")

	assert.Equal(t, 1, rt.SubscriptionCount())
}

func TestRuntime_RemoveNode_DropsSubscriptionsBothDirections(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("slider", catalog.TypeSlider))
	require.NoError(t, rt.AddNode("display", catalog.TypeDisplay))
	require.NoError(t, rt.AddNode("math", catalog.TypeMath))
	rt.AddInputConnection("display", "slider", "value", "input")
	rt.AddInputConnection("math", "slider", "value", "a")
	require.Equal(t, 2, rt.SubscriptionCount())

	// Removing the source drops subscriptions naming it on either side
	rt.RemoveNode("slider")

	assert.Equal(t, 0, rt.SubscriptionCount())
}

func TestRuntime_MidiToFrequency_Chain(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("slider", catalog.TypeSlider))
	require.NoError(t, rt.AddNode("m2f", catalog.TypeMidiToFrequency))
	rt.AddInputConnection("m2f", "slider", "value", "midiNote")

	rt.SetOutput("slider", "value", 69.0)
	v, ok := rt.Output("m2f", "frequency")
	require.True(t, ok)
	assert.InDelta(t, 440.0, v.(float64), 1e-9)

	rt.SetOutput("slider", "value", 81.0)
	v, _ = rt.Output("m2f", "frequency")
	assert.InDelta(t, 880.0, v.(float64), 1e-9)
}

func TestRuntime_ScaleDegree_ToMidi(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("slider", catalog.TypeSlider))
	require.NoError(t, rt.AddNode("scale", catalog.TypeScaleDegree))
	rt.AddInputConnection("scale", "slider", "value", "degree")

	// Third degree of C major is E (major third, 4 semitones)
	rt.SetOutput("slider", "value", 2.0)

	v, ok := rt.Output("scale", "midiNote")
	require.True(t, ok)
	assert.Equal(t, 64.0, v)
}

func TestRuntime_Math_Recomputes(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("a", catalog.TypeSlider))
	require.NoError(t, rt.AddNode("b", catalog.TypeSlider))
	require.NoError(t, rt.AddNode("math", catalog.TypeMath))
	rt.AddInputConnection("math", "a", "value", "a")
	rt.AddInputConnection("math", "b", "value", "b")

	rt.SetProperty("math", "operation", "multiply")
	rt.SetOutput("a", "value", 6.0)
	rt.SetOutput("b", "value", 7.0)

	v, ok := rt.Output("math", "result")
	require.True(t, ok)
	assert.Equal(t, 42.0, v)
}

func TestRuntime_Math_DivideByZeroKeepsLastResult(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("math", catalog.TypeMath))
	rt.SetProperty("math", "operation", "divide")
	rt.SetProperty("math", "a", 10.0)
	rt.SetProperty("math", "b", 2.0)

	v, _ := rt.Output("math", "result")
	require.Equal(t, 5.0, v)

	rt.SetProperty("math", "b", 0.0)

	v, _ = rt.Output("math", "result")
	assert.Equal(t, 5.0, v)
}

func TestRuntime_Reentrancy_ChainPropagates(t *testing.T) {
	// slider -> m2f -> display: a depth-first chain where a handler
	// triggers further propagation before the first call returns
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("slider", catalog.TypeSlider))
	require.NoError(t, rt.AddNode("m2f", catalog.TypeMidiToFrequency))
	require.NoError(t, rt.AddNode("display", catalog.TypeDisplay))
	rt.AddInputConnection("m2f", "slider", "value", "midiNote")
	rt.AddInputConnection("display", "m2f", "frequency", "input")

	rt.SetOutput("slider", "value", 57.0)

	v, ok := rt.Property("display", "value")
	require.True(t, ok)
	assert.InDelta(t, 220.0, v.(float64), 1e-9)
}

func TestRuntime_SafeInvoke_ContainsPanics(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("slider", catalog.TypeSlider))
	require.NoError(t, rt.AddNode("display", catalog.TypeDisplay))

	rt.Subscribe("slider", "value", "bad", "input", func(value any) {
		panic("handler bug")
	})
	rt.AddInputConnection("display", "slider", "value", "input")

	// The panicking handler must not break propagation to others
	assert.NotPanics(t, func() {
		rt.SetOutput("slider", "value", 0.8)
	})
	v, _ := rt.Property("display", "value")
	assert.Equal(t, 0.8, v)
}

func TestRuntime_Sampler_TriggerRequiresLoadedBuffer(t *testing.T) {
	rt, eng := newTestRuntime(t)
	require.NoError(t, rt.AddNode("sampler", catalog.TypeSampler))

	// Not loaded yet: a trigger is a no-op
	rt.handleInput("sampler", "trigger", 1.0)
	assert.Equal(t, 0, eng.PlayCount("kick.wav"))

	rt.SetProperty("sampler", "url", "kick.wav")
	loaded, _ := rt.Property("sampler", "loaded")
	require.Equal(t, true, loaded)

	rt.handleInput("sampler", "trigger", 1.0)
	assert.Equal(t, 1, eng.PlayCount("kick.wav"))

	// Non-positive trigger values do not fire
	rt.handleInput("sampler", "trigger", 0.0)
	assert.Equal(t, 1, eng.PlayCount("kick.wav"))
}

func TestRuntime_MidiInput_PropertyWritesDriveOutputs(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("midi", catalog.TypeMidiInput))

	rt.SetProperty("midi", "note", 60.0)
	rt.SetProperty("midi", "velocity", 100.0)
	rt.SetProperty("midi", "gate", 1.0)

	note, _ := rt.Output("midi", "note")
	assert.Equal(t, 60.0, note)
	velocity, _ := rt.Output("midi", "velocity")
	assert.Equal(t, 100.0, velocity)
	gate, _ := rt.Output("midi", "gate")
	assert.Equal(t, 1.0, gate)
}

func TestRuntime_MidiInput_DrivesFrequencyChain(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("midi", catalog.TypeMidiInput))
	require.NoError(t, rt.AddNode("m2f", catalog.TypeMidiToFrequency))
	rt.AddInputConnection("m2f", "midi", "note", "midiNote")

	// Concert A arriving on the MIDI input reaches the converter output
	rt.SetProperty("midi", "note", 69.0)

	freq, ok := rt.Output("m2f", "frequency")
	require.True(t, ok)
	assert.InDelta(t, 440.0, freq.(float64), 1e-9)
}

func TestRuntime_Sampler_DecodeFailureLeavesNotLoaded(t *testing.T) {
	rt, _ := newTestRuntime(t)
	require.NoError(t, rt.AddNode("sampler", catalog.TypeSampler))

	rt.SetProperty("sampler", "url", "notes.txt")

	loaded, _ := rt.Property("sampler", "loaded")
	assert.Equal(t, false, loaded)
}

func TestToFloat(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want float64
		ok   bool
	}{
		{name: "float64", in: 1.5, want: 1.5, ok: true},
		{name: "int", in: 3, want: 3, ok: true},
		{name: "bool true", in: true, want: 1, ok: true},
		{name: "bool false", in: false, want: 0, ok: true},
		{name: "string", in: "x", want: 0, ok: false},
		{name: "nil", in: nil, want: 0, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
