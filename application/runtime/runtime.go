package runtime

import (
	"fmt"
	"sync"
	"time"

	"patchbay/application/ports"
	"patchbay/domain/catalog"
	"patchbay/domain/config"
	pkgerrors "patchbay/pkg/errors"

	"go.uber.org/zap"
)

// InputConnection records a declared input wiring on a custom node
type InputConnection struct {
	SourceID     string
	SourceOutput string
	TargetInput  string
}

// subKey identifies a reactive subscription
// At most one live subscription may exist per key
type subKey struct {
	sourceID     string
	sourceOutput string
	subscriberID string
	targetInput  string
}

type subscription struct {
	key subKey
	fn  func(value any)
}

// Node holds the reactive state of a non-native logic node
type Node struct {
	ID               string
	NodeType         string
	Properties       map[string]any
	Outputs          map[string]any
	InputConnections []InputConnection

	meta  catalog.NodeType
	timer *nodeTimer
}

// Runtime is the reactive dependency mechanism for custom nodes
//
// Propagation is synchronous and depth-first: a source output change
// re-runs every dependent's handler before control returns to the
// caller. Handlers are wrapped so one misbehaving node cannot break
// the reactive graph for every other node.
type Runtime struct {
	mu         sync.Mutex
	catalog    *catalog.Catalog
	engine     ports.AudioEngine
	sink       ports.DiagnosticSink
	logger     *zap.Logger
	minTimerMs float64
	nodes      map[string]*Node
	subs       map[subKey]*subscription
}

// New creates a runtime. A nil cfg falls back to the domain defaults.
func New(cat *catalog.Catalog, engine ports.AudioEngine, cfg *config.DomainConfig, sink ports.DiagnosticSink, logger *zap.Logger) *Runtime {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}
	return &Runtime{
		catalog:    cat,
		engine:     engine,
		sink:       sink,
		logger:     logger,
		minTimerMs: cfg.MinTimerIntervalMs,
		nodes:      make(map[string]*Node),
		subs:       make(map[subKey]*subscription),
	}
}

// AddNode seeds a custom node's reactive state from metadata defaults
// and performs type-specific initialization for stateful types
func (r *Runtime) AddNode(id, nodeType string) error {
	meta, ok := r.catalog.Lookup(nodeType)
	if !ok {
		return pkgerrors.NewValidation("unknown node type: " + nodeType)
	}

	r.mu.Lock()
	if _, exists := r.nodes[id]; exists {
		r.mu.Unlock()
		return nil
	}

	node := &Node{
		ID:         id,
		NodeType:   nodeType,
		Properties: meta.DefaultProperties(),
		Outputs:    make(map[string]any, len(meta.Outputs)),
		meta:       meta,
	}
	for _, out := range meta.Outputs {
		node.Outputs[out.Name] = 0.0
	}
	r.nodes[id] = node
	r.mu.Unlock()

	r.initNode(node)
	return nil
}

// RemoveNode disposes a node and every subscription that touches it:
// its own inbound subscriptions and any other node's subscriptions
// naming it as source
func (r *Runtime) RemoveNode(id string) {
	r.mu.Lock()
	node, ok := r.nodes[id]
	if ok {
		if node.timer != nil {
			node.timer.stop()
			node.timer = nil
		}
		delete(r.nodes, id)
	}
	r.dropSubscriptionsLocked(id)
	r.mu.Unlock()
}

// DropSubscriptions removes every subscription touching the given id,
// without requiring a runtime node to exist. Native adapters use this
// to tear down their parameter-driving subscriptions.
func (r *Runtime) DropSubscriptions(id string) {
	r.mu.Lock()
	r.dropSubscriptionsLocked(id)
	r.mu.Unlock()
}

func (r *Runtime) dropSubscriptionsLocked(id string) {
	for key := range r.subs {
		if key.subscriberID == id || key.sourceID == id {
			delete(r.subs, key)
		}
	}
}

// Clear disposes every node and subscription
func (r *Runtime) Clear() {
	r.mu.Lock()
	for _, node := range r.nodes {
		if node.timer != nil {
			node.timer.stop()
			node.timer = nil
		}
	}
	r.nodes = make(map[string]*Node)
	r.subs = make(map[subKey]*subscription)
	r.mu.Unlock()
}

// Has reports whether a node is registered
func (r *Runtime) Has(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.nodes[id]
	return ok
}

// Property reads a node property
func (r *Runtime) Property(id, name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	node, ok := r.nodes[id]
	if !ok {
		return nil, false
	}
	v, ok := node.Properties[name]
	return v, ok
}

// Output reads a node's current output value
func (r *Runtime) Output(id, name string) (any, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	node, ok := r.nodes[id]
	if !ok {
		return nil, false
	}
	v, ok := node.Outputs[name]
	return v, ok
}

// SetProperty updates a node property and applies any type-specific
// side effect (a slider value drives its output, a sampler url loads
// a buffer, a timer interval reschedules)
func (r *Runtime) SetProperty(id, name string, value any) {
	r.mu.Lock()
	node, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	node.Properties[name] = value
	r.mu.Unlock()

	r.propertyChanged(node, name, value)
}

// SetOutput publishes a new output value and synchronously propagates
// it to every subscriber, depth-first
func (r *Runtime) SetOutput(id, name string, value any) {
	r.mu.Lock()
	node, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	node.Outputs[name] = value

	var targets []*subscription
	for key, sub := range r.subs {
		if key.sourceID == id && key.sourceOutput == name {
			targets = append(targets, sub)
		}
	}
	r.mu.Unlock()

	for _, sub := range targets {
		r.safeInvoke(sub, value)
	}
}

// Subscribe establishes a reactive subscription and fires it once
// immediately with the source's current value, so a freshly wired node
// is never left showing a stale default. Duplicate keys are a no-op.
func (r *Runtime) Subscribe(sourceID, sourceOutput, subscriberID, targetInput string, fn func(value any)) bool {
	key := subKey{
		sourceID:     sourceID,
		sourceOutput: sourceOutput,
		subscriberID: subscriberID,
		targetInput:  targetInput,
	}

	r.mu.Lock()
	if _, exists := r.subs[key]; exists {
		r.mu.Unlock()
		return false
	}
	sub := &subscription{key: key, fn: fn}
	r.subs[key] = sub

	var initial any
	fire := false
	if source, ok := r.nodes[sourceID]; ok {
		if v, ok := source.Outputs[sourceOutput]; ok {
			initial = v
			fire = true
		}
	}
	r.mu.Unlock()

	if fire {
		r.safeInvoke(sub, initial)
	}
	return true
}

// Unsubscribe disposes a single subscription, leaving no dangling observer
func (r *Runtime) Unsubscribe(sourceID, sourceOutput, subscriberID, targetInput string) {
	key := subKey{
		sourceID:     sourceID,
		sourceOutput: sourceOutput,
		subscriberID: subscriberID,
		targetInput:  targetInput,
	}
	r.mu.Lock()
	delete(r.subs, key)
	r.mu.Unlock()
}

// AddInputConnection wires a source output to a custom node's input
// handler. Adding a duplicate triple is a no-op.
func (r *Runtime) AddInputConnection(targetID, sourceID, sourceOutput, targetInput string) {
	r.mu.Lock()
	target, ok := r.nodes[targetID]
	if !ok {
		r.mu.Unlock()
		return
	}
	for _, conn := range target.InputConnections {
		if conn.SourceID == sourceID && conn.SourceOutput == sourceOutput && conn.TargetInput == targetInput {
			r.mu.Unlock()
			return
		}
	}
	target.InputConnections = append(target.InputConnections, InputConnection{
		SourceID:     sourceID,
		SourceOutput: sourceOutput,
		TargetInput:  targetInput,
	})
	r.mu.Unlock()

	r.Subscribe(sourceID, sourceOutput, targetID, targetInput, func(value any) {
		r.handleInput(targetID, targetInput, value)
	})
}

// RemoveInputConnection disposes the subscription for one input wiring
func (r *Runtime) RemoveInputConnection(targetID, sourceID, sourceOutput, targetInput string) {
	r.mu.Lock()
	if target, ok := r.nodes[targetID]; ok {
		kept := target.InputConnections[:0]
		for _, conn := range target.InputConnections {
			if conn.SourceID == sourceID && conn.SourceOutput == sourceOutput && conn.TargetInput == targetInput {
				continue
			}
			kept = append(kept, conn)
		}
		target.InputConnections = kept
	}
	r.mu.Unlock()

	r.Unsubscribe(sourceID, sourceOutput, targetID, targetInput)
}

// SubscriptionCount reports live subscriptions; test helper
func (r *Runtime) SubscriptionCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.subs)
}

// safeInvoke runs a subscriber callback, containing panics so one
// misbehaving handler never breaks the rest of the reactive graph
func (r *Runtime) safeInvoke(sub *subscription, value any) {
	defer func() {
		if rec := recover(); rec != nil {
			err := fmt.Errorf("reactive handler panicked: %v", rec)
			r.logger.Error("reactive handler failure",
				zap.String("sourceId", sub.key.sourceID),
				zap.String("subscriberId", sub.key.subscriberID),
				zap.String("targetInput", sub.key.targetInput),
				zap.Error(err))
			if r.sink != nil {
				r.sink.Report(ports.Diagnostic{
					Component: "runtime",
					NodeID:    sub.key.subscriberID,
					Message:   "reactive handler failure",
					Err:       err,
					At:        time.Now(),
				})
			}
		}
	}()
	sub.fn(value)
}

// ToFloat coerces a property or output value to float64
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case bool:
		if n {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}
