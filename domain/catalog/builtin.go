package catalog

// Node type names recognized by the editor
const (
	TypeOscillator      = "OscillatorNode"
	TypeGain            = "GainNode"
	TypeBiquadFilter    = "BiquadFilterNode"
	TypeDestination     = "AudioDestinationNode"
	TypeSlider          = "SliderNode"
	TypeDisplay         = "DisplayNode"
	TypeTimer           = "TimerNode"
	TypeMidiInput       = "MidiInputNode"
	TypeMidiToFrequency = "MidiToFrequencyNode"
	TypeScaleDegree     = "ScaleDegreeNode"
	TypeMath            = "MathNode"
	TypeSampler         = "SamplerNode"
	TypeEdgeConnector   = "EdgeConnectorNode"
)

// Builtin returns the catalog of node types the editor ships with
func Builtin() *Catalog {
	c, err := New(builtinTypes())
	if err != nil {
		// The builtin table is a compile-time constant, a failure here is a bug
		panic(err)
	}
	return c
}

func builtinTypes() []NodeType {
	return []NodeType{
		{
			Name:     TypeOscillator,
			Category: CategorySource,
			Native:   true,
			Inputs: []Port{
				{Name: "frequency", Type: PortAudio, Param: true},
				{Name: "detune", Type: PortAudio, Param: true},
			},
			Outputs: []Port{
				{Name: "output", Type: PortAudio},
			},
			Properties: []Property{
				{Name: "frequency", Type: "float", Default: 440.0, Min: floatPtr(0), Max: floatPtr(20000)},
				{Name: "detune", Type: "float", Default: 0.0, Min: floatPtr(-1200), Max: floatPtr(1200)},
				{Name: "type", Type: "string", Default: "sine"},
			},
		},
		{
			Name:     TypeGain,
			Category: CategoryEffect,
			Native:   true,
			Inputs: []Port{
				{Name: "input", Type: PortAudio},
				{Name: "gain", Type: PortAudio, Param: true},
			},
			Outputs: []Port{
				{Name: "output", Type: PortAudio},
			},
			Properties: []Property{
				{Name: "gain", Type: "float", Default: 1.0, Min: floatPtr(0), Max: floatPtr(10)},
			},
		},
		{
			Name:     TypeBiquadFilter,
			Category: CategoryEffect,
			Native:   true,
			Inputs: []Port{
				{Name: "input", Type: PortAudio},
				{Name: "frequency", Type: PortAudio, Param: true},
				{Name: "Q", Type: PortAudio, Param: true},
			},
			Outputs: []Port{
				{Name: "output", Type: PortAudio},
			},
			Properties: []Property{
				{Name: "frequency", Type: "float", Default: 350.0, Min: floatPtr(10), Max: floatPtr(20000)},
				{Name: "Q", Type: "float", Default: 1.0, Min: floatPtr(0.0001), Max: floatPtr(1000)},
				{Name: "type", Type: "string", Default: "lowpass"},
			},
		},
		{
			Name:     TypeDestination,
			Category: CategoryOutput,
			Native:   true,
			Inputs: []Port{
				{Name: "input", Type: PortAudio},
			},
		},
		{
			Name:     TypeSlider,
			Category: CategoryControl,
			Outputs: []Port{
				{Name: "value", Type: PortControl},
			},
			Properties: []Property{
				{Name: "value", Type: "float", Default: 0.5, Min: floatPtr(0), Max: floatPtr(1)},
				{Name: "min", Type: "float", Default: 0.0},
				{Name: "max", Type: "float", Default: 1.0},
				{Name: "label", Type: "string", Default: ""},
			},
		},
		{
			Name:     TypeDisplay,
			Category: CategoryUtility,
			Inputs: []Port{
				{Name: "input", Type: PortControl},
			},
			Properties: []Property{
				{Name: "value", Type: "float", Default: 0.0},
			},
		},
		{
			Name:     TypeTimer,
			Category: CategoryLogic,
			Outputs: []Port{
				{Name: "tick", Type: PortControl},
			},
			Properties: []Property{
				{Name: "interval", Type: "float", Default: 1000.0, Min: floatPtr(10), Max: floatPtr(60000)},
				{Name: "startMode", Type: "string", Default: "auto"},
			},
		},
		{
			Name:     TypeMidiInput,
			Category: CategoryControl,
			Outputs: []Port{
				{Name: "note", Type: PortControl},
				{Name: "velocity", Type: PortControl},
				{Name: "gate", Type: PortControl},
			},
			Properties: []Property{
				{Name: "channel", Type: "int", Default: 0, Min: floatPtr(0), Max: floatPtr(15)},
			},
		},
		{
			Name:     TypeMidiToFrequency,
			Category: CategoryLogic,
			Inputs: []Port{
				{Name: "midiNote", Type: PortControl},
			},
			Outputs: []Port{
				{Name: "frequency", Type: PortControl},
			},
			Properties: []Property{
				{Name: "baseFrequency", Type: "float", Default: 440.0},
				{Name: "baseMidiNote", Type: "int", Default: 69},
			},
		},
		{
			Name:     TypeScaleDegree,
			Category: CategoryLogic,
			Inputs: []Port{
				{Name: "degree", Type: PortControl},
			},
			Outputs: []Port{
				{Name: "midiNote", Type: PortControl},
			},
			Properties: []Property{
				{Name: "rootNote", Type: "int", Default: 60, Min: floatPtr(0), Max: floatPtr(127)},
				{Name: "mode", Type: "string", Default: "major"},
			},
		},
		{
			Name:     TypeMath,
			Category: CategoryLogic,
			Inputs: []Port{
				{Name: "a", Type: PortControl},
				{Name: "b", Type: PortControl},
			},
			Outputs: []Port{
				{Name: "result", Type: PortControl},
			},
			Properties: []Property{
				{Name: "operation", Type: "string", Default: "add"},
				{Name: "a", Type: "float", Default: 0.0},
				{Name: "b", Type: "float", Default: 0.0},
			},
		},
		{
			Name:     TypeSampler,
			Category: CategoryLogic,
			Inputs: []Port{
				{Name: "trigger", Type: PortControl},
			},
			Properties: []Property{
				{Name: "url", Type: "string", Default: ""},
				{Name: "loaded", Type: "bool", Default: false},
			},
		},
		{
			Name:     TypeEdgeConnector,
			Category: CategoryUtility,
			Inputs: []Port{
				{Name: "input", Type: PortAudio},
			},
			Outputs: []Port{
				{Name: "output", Type: PortAudio},
			},
			Properties: []Property{
				{Name: "portId", Type: "string", Default: ""},
				{Name: "direction", Type: "string", Default: "input"},
			},
		},
	}
}
