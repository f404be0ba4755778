package runtime

import (
	"time"

	"patchbay/application/ports"
	"patchbay/domain/catalog"

	"go.uber.org/zap"
)

// initNode performs type-specific initialization for stateful node types
func (r *Runtime) initNode(node *Node) {
	switch node.NodeType {
	case catalog.TypeSlider:
		r.mu.Lock()
		v := node.Properties["value"]
		node.Outputs["value"] = v
		r.mu.Unlock()

	case catalog.TypeTimer:
		r.mu.Lock()
		mode, _ := node.Properties["startMode"].(string)
		r.mu.Unlock()
		if mode != "manual" {
			r.startTimer(node.ID)
		}

	case catalog.TypeSampler:
		r.mu.Lock()
		url, _ := node.Properties["url"].(string)
		r.mu.Unlock()
		if url != "" {
			r.loadSample(node.ID, url)
		}
	}
}

// propertyChanged applies type-specific side effects of a property write
func (r *Runtime) propertyChanged(node *Node, name string, value any) {
	switch node.NodeType {
	case catalog.TypeSlider:
		if name == "value" {
			r.SetOutput(node.ID, "value", value)
		}

	case catalog.TypeTimer:
		if name == "interval" || name == "startMode" {
			r.restartTimer(node.ID)
		}

	case catalog.TypeMidiInput:
		// Incoming MIDI messages arrive as property writes; each maps
		// straight onto the matching control output
		if name == "note" || name == "velocity" || name == "gate" {
			r.SetOutput(node.ID, name, value)
		}

	case catalog.TypeSampler:
		if name == "url" {
			if url, ok := value.(string); ok && url != "" {
				r.loadSample(node.ID, url)
			}
		}

	case catalog.TypeMath:
		if name == "a" || name == "b" || name == "operation" {
			r.recomputeMath(node.ID)
		}
	}
}

// handleInput dispatches a propagated value to the per-type input
// handler. The dispatch set is closed, keyed by (nodeType, input).
func (r *Runtime) handleInput(targetID, input string, value any) {
	r.mu.Lock()
	node, ok := r.nodes[targetID]
	if !ok {
		r.mu.Unlock()
		return
	}
	nodeType := node.NodeType
	r.mu.Unlock()

	switch {
	case nodeType == catalog.TypeDisplay && input == "input":
		r.storeProperty(targetID, "value", value)

	case nodeType == catalog.TypeMidiToFrequency && input == "midiNote":
		note, ok := ToFloat(value)
		if !ok {
			return
		}
		r.mu.Lock()
		baseFreq, _ := ToFloat(node.Properties["baseFrequency"])
		baseNote, _ := ToFloat(node.Properties["baseMidiNote"])
		r.mu.Unlock()
		if baseFreq == 0 {
			baseFreq = 440
		}
		if baseNote == 0 {
			baseNote = 69
		}
		r.SetOutput(targetID, "frequency", midiToFrequencyFrom(baseFreq, baseNote, note))

	case nodeType == catalog.TypeScaleDegree && input == "degree":
		degree, ok := ToFloat(value)
		if !ok {
			return
		}
		r.mu.Lock()
		root, _ := ToFloat(node.Properties["rootNote"])
		mode, _ := node.Properties["mode"].(string)
		r.mu.Unlock()
		r.SetOutput(targetID, "midiNote", float64(ScaleDegreeToMidi(int(root), mode, int(degree))))

	case nodeType == catalog.TypeMath && (input == "a" || input == "b"):
		r.storeProperty(targetID, input, value)
		r.recomputeMath(targetID)

	case nodeType == catalog.TypeSampler && input == "trigger":
		v, ok := ToFloat(value)
		if !ok || v <= 0 {
			return
		}
		r.triggerSample(targetID)

	case nodeType == catalog.TypeEdgeConnector && input == "input":
		r.SetOutput(targetID, "output", value)

	default:
		// Unrecognized inputs are stored so the value is observable
		r.storeProperty(targetID, input, value)
	}
}

func (r *Runtime) storeProperty(id, name string, value any) {
	r.mu.Lock()
	if node, ok := r.nodes[id]; ok {
		node.Properties[name] = value
	}
	r.mu.Unlock()
}

func (r *Runtime) recomputeMath(id string) {
	r.mu.Lock()
	node, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	a, _ := ToFloat(node.Properties["a"])
	b, _ := ToFloat(node.Properties["b"])
	op, _ := node.Properties["operation"].(string)
	r.mu.Unlock()

	var result float64
	switch op {
	case "subtract":
		result = a - b
	case "multiply":
		result = a * b
	case "divide":
		if b == 0 {
			return
		}
		result = a / b
	default:
		result = a + b
	}
	r.SetOutput(id, "result", result)
}

// loadSample decodes the sampler's buffer; a decode failure leaves the
// node in the "not loaded" state rather than crashing
func (r *Runtime) loadSample(id, url string) {
	err := r.engine.LoadBuffer(url)

	r.mu.Lock()
	if node, ok := r.nodes[id]; ok {
		node.Properties["loaded"] = err == nil
	}
	r.mu.Unlock()

	if err != nil {
		r.logger.Warn("sample decode failed",
			zap.String("nodeId", id),
			zap.String("url", url),
			zap.Error(err))
		if r.sink != nil {
			r.sink.Report(ports.Diagnostic{
				Component: "runtime",
				NodeID:    id,
				Message:   "failed to decode audio buffer",
				Err:       err,
				At:        time.Now(),
			})
		}
	}
}

// triggerSample fires one-shot playback of the sampler's buffer
func (r *Runtime) triggerSample(id string) {
	r.mu.Lock()
	node, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	url, _ := node.Properties["url"].(string)
	loaded, _ := node.Properties["loaded"].(bool)
	r.mu.Unlock()

	if !loaded || url == "" {
		return
	}
	if err := r.engine.PlayBuffer(url); err != nil {
		r.logger.Warn("sample playback failed",
			zap.String("nodeId", id),
			zap.Error(err))
		if r.sink != nil {
			r.sink.Report(ports.Diagnostic{
				Component: "runtime",
				NodeID:    id,
				Message:   "failed to play audio buffer",
				Err:       err,
				At:        time.Now(),
			})
		}
	}
}
