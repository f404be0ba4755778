package memory

import (
	"fmt"
	"strings"
	"sync"

	"patchbay/application/ports"
	pkgerrors "patchbay/pkg/errors"
)

// nodeSpec describes a native node type the engine can instantiate
type nodeSpec struct {
	params map[string]float64
	source bool
}

// nativeSpecs mirrors the factory surface of the real engine
var nativeSpecs = map[string]nodeSpec{
	"OscillatorNode": {
		params: map[string]float64{"frequency": 440, "detune": 0},
		source: true,
	},
	"GainNode": {
		params: map[string]float64{"gain": 1},
	},
	"BiquadFilterNode": {
		params: map[string]float64{"frequency": 350, "Q": 1},
	},
	"AudioDestinationNode": {
		params: map[string]float64{},
	},
}

// Engine is an in-memory implementation of the native audio engine
// boundary. It reproduces the behavioral constraints the editor core
// has to handle: stopped source nodes cannot be restarted, and
// suspending the context stops every source.
type Engine struct {
	mu      sync.Mutex
	running bool
	nodes   map[*Node]struct{}
	buffers map[string]bool
	plays   map[string]int
}

// New creates an engine with a suspended context
func New() *Engine {
	return &Engine{
		nodes:   make(map[*Node]struct{}),
		buffers: make(map[string]bool),
		plays:   make(map[string]int),
	}
}

// CreateNode instantiates a native node of the given type
func (e *Engine) CreateNode(nodeType string) (ports.EngineNode, error) {
	spec, ok := nativeSpecs[nodeType]
	if !ok {
		return nil, pkgerrors.NewValidation("unknown native node type: " + nodeType)
	}

	node := &Node{
		engine:   e,
		nodeType: nodeType,
		source:   spec.source,
		params:   make(map[string]*Param, len(spec.params)),
		props:    make(map[string]any),
		conns:    make(map[connKey]struct{}),
	}
	for name, def := range spec.params {
		node.params[name] = &Param{value: def}
	}

	e.mu.Lock()
	e.nodes[node] = struct{}{}
	e.mu.Unlock()

	return node, nil
}

// DestroyNode releases a node and severs every connection touching it
func (e *Engine) DestroyNode(n ports.EngineNode) error {
	node, ok := n.(*Node)
	if !ok {
		return pkgerrors.NewValidation("node does not belong to this engine")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.nodes[node]; !exists {
		return nil
	}
	delete(e.nodes, node)
	node.disposed = true
	node.conns = make(map[connKey]struct{})

	// Sever inbound connections from the remaining nodes
	for other := range e.nodes {
		for key := range other.conns {
			if key.target == node {
				delete(other.conns, key)
			}
		}
	}
	return nil
}

// StartContext resumes the audio context
func (e *Engine) StartContext() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = true
	return nil
}

// StopContext suspends the context and stops every source node
// Stopped sources are dead; a later start requires fresh nodes
func (e *Engine) StopContext() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.running = false
	for node := range e.nodes {
		if node.source && node.started {
			node.stopped = true
		}
	}
	return nil
}

// Running reports whether the context is running
func (e *Engine) Running() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.running
}

// LoadBuffer decodes an audio buffer. Decode fails for formats the
// engine does not understand, leaving the caller's node "not loaded".
func (e *Engine) LoadBuffer(url string) error {
	if url == "" {
		return pkgerrors.NewValidation("buffer url cannot be empty")
	}
	if !hasAudioExtension(url) {
		return fmt.Errorf("failed to decode audio buffer %q: unsupported format", url)
	}
	e.mu.Lock()
	e.buffers[url] = true
	e.mu.Unlock()
	return nil
}

// PlayBuffer plays a previously loaded buffer one-shot
func (e *Engine) PlayBuffer(url string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.buffers[url] {
		return pkgerrors.NewNotFound("buffer not loaded: " + url)
	}
	e.plays[url]++
	return nil
}

// PlayCount reports how many times a buffer was played; test helper
func (e *Engine) PlayCount(url string) int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.plays[url]
}

// NodeCount reports how many live nodes the engine holds; test helper
func (e *Engine) NodeCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.nodes)
}

// ConnectionCount reports the total realized connections; test helper
func (e *Engine) ConnectionCount() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	total := 0
	for node := range e.nodes {
		total += len(node.conns)
	}
	return total
}

func hasAudioExtension(url string) bool {
	for _, ext := range []string{".wav", ".mp3", ".ogg", ".flac"} {
		if strings.HasSuffix(strings.ToLower(url), ext) {
			return true
		}
	}
	return false
}

type connKey struct {
	target *Node
	output string
	input  string
}

// Node is a live in-memory engine node
type Node struct {
	engine   *Engine
	nodeType string
	source   bool
	params   map[string]*Param
	props    map[string]any
	conns    map[connKey]struct{}
	started  bool
	stopped  bool
	disposed bool
}

// Connect wires this node into the target
func (n *Node) Connect(target ports.EngineNode, sourceOutput, targetInput string) error {
	other, ok := target.(*Node)
	if !ok {
		return pkgerrors.NewValidation("target does not belong to this engine")
	}

	n.engine.mu.Lock()
	defer n.engine.mu.Unlock()

	if n.disposed || other.disposed {
		return pkgerrors.NewConflict("cannot connect a disposed node")
	}
	n.conns[connKey{target: other, output: sourceOutput, input: targetInput}] = struct{}{}
	return nil
}

// Disconnect removes a previously established connection
func (n *Node) Disconnect(target ports.EngineNode, sourceOutput, targetInput string) error {
	other, ok := target.(*Node)
	if !ok {
		return pkgerrors.NewValidation("target does not belong to this engine")
	}

	n.engine.mu.Lock()
	defer n.engine.mu.Unlock()

	if n.disposed {
		return nil
	}
	delete(n.conns, connKey{target: other, output: sourceOutput, input: targetInput})
	return nil
}

// Param returns the named parameter
func (n *Node) Param(name string) (ports.EngineParam, bool) {
	p, ok := n.params[name]
	return p, ok
}

// SetProperty updates a non-parameter property
func (n *Node) SetProperty(name string, value any) error {
	n.engine.mu.Lock()
	defer n.engine.mu.Unlock()
	if n.disposed {
		return pkgerrors.NewConflict("cannot update a disposed node")
	}
	n.props[name] = value
	return nil
}

// Start begins producing. Restarting a stopped source is impossible in
// the underlying engine model.
func (n *Node) Start() error {
	n.engine.mu.Lock()
	defer n.engine.mu.Unlock()
	if !n.source {
		return nil
	}
	if n.stopped {
		return pkgerrors.NewConflict("cannot restart a stopped source node")
	}
	n.started = true
	return nil
}

// Stop halts a source node permanently
func (n *Node) Stop() error {
	n.engine.mu.Lock()
	defer n.engine.mu.Unlock()
	if n.source && n.started {
		n.stopped = true
	}
	return nil
}

// Param is a settable engine parameter value
type Param struct {
	mu    sync.Mutex
	value float64
}

// Value returns the current parameter value
func (p *Param) Value() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.value
}

// SetValue updates the parameter value
func (p *Param) SetValue(v float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.value = v
}
