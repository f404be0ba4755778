package ports

// EngineParam is a named native-engine parameter exposing a settable value
type EngineParam interface {
	Value() float64
	SetValue(v float64)
}

// EngineNode is a live object inside the native audio engine
// The engine is external and treated as already correct; this is the
// boundary the editor core drives
type EngineNode interface {
	// Connect wires this node's named output into the target's named
	// input. When targetInput names a parameter, the signal drives that
	// parameter instead of a plain audio input.
	Connect(target EngineNode, sourceOutput, targetInput string) error

	// Disconnect removes a previously established connection
	Disconnect(target EngineNode, sourceOutput, targetInput string) error

	// Param returns the named parameter, if the node exposes one
	Param(name string) (EngineParam, bool)

	// SetProperty updates a non-parameter property such as an
	// oscillator waveform
	SetProperty(name string, value any) error

	// Start begins producing for source nodes. A stopped source cannot
	// be restarted; the engine returns an error and the caller must
	// create a fresh node instead.
	Start() error

	// Stop halts a source node permanently
	Stop() error
}

// AudioEngine is the factory and context surface of the native engine
type AudioEngine interface {
	// CreateNode instantiates a native node of the given type
	CreateNode(nodeType string) (EngineNode, error)

	// DestroyNode releases a node and all its connections
	DestroyNode(node EngineNode) error

	// StartContext resumes the audio context
	StartContext() error

	// StopContext suspends the audio context and stops every source node
	StopContext() error

	// Running reports whether the context is currently running
	Running() bool

	// LoadBuffer decodes an audio buffer so it can be played later
	LoadBuffer(url string) error

	// PlayBuffer plays a previously loaded buffer one-shot
	PlayBuffer(url string) error
}
