package adapter

import (
	"sync"

	"patchbay/application/ports"
	"patchbay/application/runtime"
	"patchbay/domain/core/entities"
)

// nativeAdapter backs a node with a live engine object
type nativeAdapter struct {
	baseAdapter
	initialized bool

	// engineNode is swapped by Rebuild and Cleanup under the store
	// mutex, but parameter-driving subscription closures read it from
	// timer goroutines. Every access goes through the accessors.
	mu         sync.Mutex
	engineNode ports.EngineNode
}

func (a *nativeAdapter) setEngineNode(node ports.EngineNode) {
	a.mu.Lock()
	a.engineNode = node
	a.mu.Unlock()
}

// Initialize creates the backing engine object. When the engine
// factory is not ready, creation is deferred to a later EnsureBacking
// pass; the store remains the single source of truth for whether the
// node has a live backing.
func (a *nativeAdapter) Initialize() error {
	if a.initialized {
		return nil
	}
	if err := a.node.BeginInitialize(); err != nil {
		return err
	}
	a.initialized = true

	if a.deps.Engine == nil {
		// Deferred: the node stays in the initializing state until the
		// store drives EnsureBacking
		return nil
	}
	return a.EnsureBacking()
}

// EnsureBacking creates the engine object if it was deferred
func (a *nativeAdapter) EnsureBacking() error {
	if !a.initialized || a.EngineNode() != nil || a.deps.Engine == nil {
		return nil
	}
	if a.node.State() == entities.StateRemoved {
		return nil
	}

	engineNode, err := a.deps.Engine.CreateNode(a.node.NodeType())
	if err != nil {
		a.report("failed to create engine node", err)
		return err
	}
	a.setEngineNode(engineNode)
	a.applyProperties()

	if a.node.State() == entities.StateInitializing {
		if err := a.node.MarkAttached(); err != nil {
			return err
		}
	}
	return nil
}

// applyProperties pushes the node's full property map to the backing
func (a *nativeAdapter) applyProperties() {
	engineNode := a.EngineNode()
	if engineNode == nil {
		return
	}
	for name, value := range a.node.Properties() {
		a.forwardProperty(engineNode, name, value)
	}
}

// Cleanup releases the engine object. Safe to call twice.
func (a *nativeAdapter) Cleanup() {
	if a.node.State() == entities.StateRemoved {
		return
	}
	if err := a.node.BeginDetach(); err != nil {
		return
	}

	// Dispose any parameter-driving subscriptions targeting this node
	if a.deps.Runtime != nil {
		a.deps.Runtime.DropSubscriptions(a.node.ID().String())
	}

	if engineNode := a.EngineNode(); engineNode != nil {
		if err := a.deps.Engine.DestroyNode(engineNode); err != nil {
			a.report("failed to destroy engine node", err)
		}
		a.setEngineNode(nil)
	}
	a.node.MarkRemoved()
}

// Attached reports whether the backing engine object exists
func (a *nativeAdapter) Attached() bool {
	return a.node.State() == entities.StateAttached && a.EngineNode() != nil
}

// UpdateProperty writes the property map and forwards to the backing.
// Never errors on unknown property names.
func (a *nativeAdapter) UpdateProperty(name string, value any) {
	a.node.SetProperty(name, value)
	if engineNode := a.EngineNode(); engineNode != nil {
		a.forwardProperty(engineNode, name, value)
	}
}

func (a *nativeAdapter) forwardProperty(engineNode ports.EngineNode, name string, value any) {
	if param, ok := engineNode.Param(name); ok {
		if v, ok := runtime.ToFloat(value); ok {
			param.SetValue(v)
		}
		return
	}
	if _, ok := a.node.Metadata().Property(name); !ok {
		// Unknown names are stored but have no engine effect
		return
	}
	if err := engineNode.SetProperty(name, value); err != nil {
		a.report("failed to update engine property", err)
	}
}

// GetProperty reads a property with metadata-default fallback
func (a *nativeAdapter) GetProperty(name string) (any, bool) {
	return a.node.Property(name)
}

// ConnectTo realizes the connection on the engine and records it on
// both endpoints
func (a *nativeAdapter) ConnectTo(target Adapter, sourceOutput, targetInput string) {
	conn := entities.AudioConnection{
		SourceID:     a.node.ID(),
		TargetID:     target.Node().ID(),
		SourceOutput: sourceOutput,
		TargetInput:  targetInput,
	}
	a.recordConnection(conn)
	recordOnTarget(target, conn)

	// Native source driving a custom node has no engine-side signal
	// path; the connection is recorded for traversal and serialization
	sourceEngine := a.EngineNode()
	targetEngine := target.EngineNode()
	if sourceEngine == nil || targetEngine == nil {
		return
	}
	if err := sourceEngine.Connect(targetEngine, sourceOutput, targetInput); err != nil {
		a.report("failed to connect engine nodes", err)
	}
}

// DisconnectFrom tears the engine connection down and removes the
// record from both endpoints
func (a *nativeAdapter) DisconnectFrom(target Adapter, sourceOutput, targetInput string) {
	conn := entities.AudioConnection{
		SourceID:     a.node.ID(),
		TargetID:     target.Node().ID(),
		SourceOutput: sourceOutput,
		TargetInput:  targetInput,
	}
	a.forgetConnection(conn)
	forgetOnTarget(target, conn)

	sourceEngine := a.EngineNode()
	targetEngine := target.EngineNode()
	if sourceEngine == nil || targetEngine == nil {
		return
	}
	if err := sourceEngine.Disconnect(targetEngine, sourceOutput, targetInput); err != nil {
		a.report("failed to disconnect engine nodes", err)
	}
}

// Rebuild replaces the engine object with a fresh one, reapplying the
// node's properties. The store re-establishes connections afterwards.
func (a *nativeAdapter) Rebuild() error {
	if !a.initialized || a.deps.Engine == nil {
		return nil
	}
	if old := a.EngineNode(); old != nil {
		if err := a.deps.Engine.DestroyNode(old); err != nil {
			a.report("failed to destroy engine node during rebuild", err)
		}
		a.setEngineNode(nil)
	}

	engineNode, err := a.deps.Engine.CreateNode(a.node.NodeType())
	if err != nil {
		a.report("failed to recreate engine node", err)
		return err
	}
	a.setEngineNode(engineNode)
	a.applyProperties()
	return nil
}

// EngineNode returns the live engine object
func (a *nativeAdapter) EngineNode() ports.EngineNode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.engineNode
}

// recordOnTarget and forgetOnTarget keep both endpoints' connection
// lists in sync regardless of backing kind

func recordOnTarget(target Adapter, conn entities.AudioConnection) {
	switch t := target.(type) {
	case *nativeAdapter:
		t.recordConnection(conn)
	case *customAdapter:
		t.recordConnection(conn)
	}
}

func forgetOnTarget(target Adapter, conn entities.AudioConnection) {
	switch t := target.(type) {
	case *nativeAdapter:
		t.forgetConnection(conn)
	case *customAdapter:
		t.forgetConnection(conn)
	}
}
