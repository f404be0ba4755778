package runtime

import (
	"time"

	"patchbay/domain/catalog"
)

// nodeTimer is the scheduled side of a timer node. Firing is gated on
// the engine running, checked both at schedule time and at every fire,
// so a timer silently stops the instant the engine pauses and resumes
// firing when it starts again.
type nodeTimer struct {
	stopCh chan struct{}
}

func (t *nodeTimer) stop() {
	select {
	case <-t.stopCh:
	default:
		close(t.stopCh)
	}
}

// startTimer begins periodic firing for a timer node. With the engine
// stopped no schedule is created; ResumeTimers picks the node up when
// playback starts.
func (r *Runtime) startTimer(id string) {
	if !r.engine.Running() {
		return
	}

	r.mu.Lock()
	node, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	if node.timer != nil {
		r.mu.Unlock()
		return
	}

	interval, _ := ToFloat(node.Properties["interval"])
	if interval < r.minTimerMs {
		interval = r.minTimerMs
	}

	timer := &nodeTimer{stopCh: make(chan struct{})}
	node.timer = timer
	r.mu.Unlock()

	go r.runTimer(id, time.Duration(interval)*time.Millisecond, timer.stopCh)
}

// ResumeTimers schedules every auto-start timer node that has no
// pending schedule. Playback start drives this so timers created while
// the engine was stopped begin firing.
func (r *Runtime) ResumeTimers() {
	r.mu.Lock()
	var pending []string
	for id, node := range r.nodes {
		if node.NodeType != catalog.TypeTimer || node.timer != nil {
			continue
		}
		if mode, _ := node.Properties["startMode"].(string); mode == "manual" {
			continue
		}
		pending = append(pending, id)
	}
	r.mu.Unlock()

	for _, id := range pending {
		r.startTimer(id)
	}
}

// stopTimer clears the pending schedule synchronously
func (r *Runtime) stopTimer(id string) {
	r.mu.Lock()
	node, ok := r.nodes[id]
	if ok && node.timer != nil {
		node.timer.stop()
		node.timer = nil
	}
	r.mu.Unlock()
}

// restartTimer reschedules after an interval or start-mode change
func (r *Runtime) restartTimer(id string) {
	r.stopTimer(id)

	r.mu.Lock()
	node, ok := r.nodes[id]
	if !ok {
		r.mu.Unlock()
		return
	}
	mode, _ := node.Properties["startMode"].(string)
	r.mu.Unlock()

	if mode != "manual" {
		r.startTimer(id)
	}
}

func (r *Runtime) runTimer(id string, interval time.Duration, stopCh chan struct{}) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	ticks := 0.0
	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !r.engine.Running() {
				continue
			}

			// A late fire after node removal must detect the node is
			// gone and no-op
			r.mu.Lock()
			_, alive := r.nodes[id]
			r.mu.Unlock()
			if !alive {
				return
			}

			ticks++
			r.SetOutput(id, "tick", ticks)
		}
	}
}
