package adapter

import (
	"patchbay/application/ports"
	"patchbay/application/runtime"
	"patchbay/domain/core/entities"
)

// customAdapter backs a node with a custom-runtime entry
type customAdapter struct {
	baseAdapter
	initialized bool
}

// Initialize registers the node with the custom runtime
func (a *customAdapter) Initialize() error {
	if a.initialized {
		return nil
	}
	if err := a.node.BeginInitialize(); err != nil {
		return err
	}
	if err := a.deps.Runtime.AddNode(a.node.ID().String(), a.node.NodeType()); err != nil {
		a.report("failed to register custom node", err)
		return err
	}
	a.initialized = true
	return a.node.MarkAttached()
}

// EnsureBacking is a no-op; the runtime entry exists from Initialize on
func (a *customAdapter) EnsureBacking() error {
	return nil
}

// Cleanup removes the runtime entry and every subscription touching
// it. Safe to call twice.
func (a *customAdapter) Cleanup() {
	if a.node.State() == entities.StateRemoved {
		return
	}
	if err := a.node.BeginDetach(); err != nil {
		return
	}
	a.deps.Runtime.RemoveNode(a.node.ID().String())
	a.node.MarkRemoved()
}

// Attached reports whether the runtime entry exists
func (a *customAdapter) Attached() bool {
	return a.node.State() == entities.StateAttached
}

// UpdateProperty writes the property map and forwards to the runtime
func (a *customAdapter) UpdateProperty(name string, value any) {
	a.node.SetProperty(name, value)
	if a.initialized {
		a.deps.Runtime.SetProperty(a.node.ID().String(), name, value)
	}
}

// GetProperty prefers the live runtime value, then falls back to the
// canonical property map and metadata defaults
func (a *customAdapter) GetProperty(name string) (any, bool) {
	if a.initialized {
		if v, ok := a.deps.Runtime.Property(a.node.ID().String(), name); ok {
			return v, true
		}
	}
	return a.node.Property(name)
}

// ConnectTo wires the reactive subscription and records the connection
// on both endpoints
func (a *customAdapter) ConnectTo(target Adapter, sourceOutput, targetInput string) {
	conn := entities.AudioConnection{
		SourceID:     a.node.ID(),
		TargetID:     target.Node().ID(),
		SourceOutput: sourceOutput,
		TargetInput:  targetInput,
	}
	a.recordConnection(conn)
	recordOnTarget(target, conn)

	sourceID := a.node.ID().String()
	targetID := target.Node().ID().String()

	switch t := target.(type) {
	case *customAdapter:
		a.deps.Runtime.AddInputConnection(targetID, sourceID, sourceOutput, targetInput)
	case *nativeAdapter:
		// A control source drives the target parameter directly. The
		// closure resolves the engine node at fire time so a rebuilt
		// backing is picked up automatically.
		a.deps.Runtime.Subscribe(sourceID, sourceOutput, targetID, targetInput, func(value any) {
			engineNode := t.EngineNode()
			if engineNode == nil {
				return
			}
			v, ok := runtime.ToFloat(value)
			if !ok {
				return
			}
			if param, ok := engineNode.Param(targetInput); ok {
				param.SetValue(v)
			}
		})
	}
}

// DisconnectFrom disposes the subscription and removes the record from
// both endpoints
func (a *customAdapter) DisconnectFrom(target Adapter, sourceOutput, targetInput string) {
	conn := entities.AudioConnection{
		SourceID:     a.node.ID(),
		TargetID:     target.Node().ID(),
		SourceOutput: sourceOutput,
		TargetInput:  targetInput,
	}
	a.forgetConnection(conn)
	forgetOnTarget(target, conn)

	sourceID := a.node.ID().String()
	targetID := target.Node().ID().String()

	switch target.(type) {
	case *customAdapter:
		a.deps.Runtime.RemoveInputConnection(targetID, sourceID, sourceOutput, targetInput)
	case *nativeAdapter:
		a.deps.Runtime.Unsubscribe(sourceID, sourceOutput, targetID, targetInput)
	}
}

// Rebuild is a no-op; custom nodes have no engine object to replace
func (a *customAdapter) Rebuild() error {
	return nil
}

// EngineNode returns nil; custom nodes have no engine object
func (a *customAdapter) EngineNode() ports.EngineNode {
	return nil
}
