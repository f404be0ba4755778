package services

import (
	"time"

	"patchbay/domain/events"

	"go.uber.org/zap"
)

// Playing reports whether the engine context is running
func (s *GraphStore) Playing() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playing
}

// TogglePlayback starts or stops the engine context.
//
// Stopping an engine context stops every source node in it, and a
// stopped source can never be restarted. Starting playback therefore
// rebuilds every native source node from scratch, re-realizes the
// connections that died with the old engine objects, and re-emits
// current custom outputs so driven parameters pick their values back
// up. Individual source failures degrade that node only.
func (s *GraphStore) TogglePlayback() (bool, error) {
	start := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	if s.playing {
		err = s.stopPlaybackLocked()
	} else {
		err = s.startPlaybackLocked()
	}
	s.metrics.RecordMutation("toggle_playback", time.Since(start), err)
	if err != nil {
		return s.playing, err
	}

	s.addEvent(events.NewPlaybackChanged(s.playing))
	s.bumpLocked()
	return s.playing, nil
}

func (s *GraphStore) stopPlaybackLocked() error {
	if s.engine != nil {
		if err := s.engine.StopContext(); err != nil {
			s.metrics.RecordEngineFailure()
			return err
		}
	}
	s.playing = false
	s.logger.Info("playback stopped")
	return nil
}

func (s *GraphStore) startPlaybackLocked() error {
	if s.engine != nil {
		if err := s.engine.StartContext(); err != nil {
			s.metrics.RecordEngineFailure()
			return err
		}
	}

	rebuilt := s.rebuildSourcesLocked()
	s.reconnectLocked(rebuilt)
	s.startSourcesLocked(rebuilt)
	s.repokeOutputsLocked()
	if s.rt != nil {
		// Timers created while the engine was stopped have no schedule
		// yet; they start firing with playback
		s.rt.ResumeTimers()
	}

	s.playing = true
	s.logger.Info("playback started", zap.Int("rebuiltSources", len(rebuilt)))
	return nil
}

// rebuildSourcesLocked replaces the engine object of every native
// source node and returns the rebuilt node ids
func (s *GraphStore) rebuildSourcesLocked() map[string]bool {
	rebuilt := make(map[string]bool)
	for id, node := range s.nodes {
		if !node.Metadata().IsSource() {
			continue
		}
		ad, ok := s.adapters[id]
		if !ok {
			continue
		}
		if err := ad.Rebuild(); err != nil {
			s.metrics.RecordEngineFailure()
			continue
		}
		rebuilt[id] = true
	}
	return rebuilt
}

// reconnectLocked re-realizes every connection touching a rebuilt node.
// ConnectTo dedups its endpoint records, so reconnecting is safe to
// repeat.
func (s *GraphStore) reconnectLocked(rebuilt map[string]bool) {
	for _, conn := range s.connections {
		if !rebuilt[conn.SourceID.String()] && !rebuilt[conn.TargetID.String()] {
			continue
		}
		sourceAd, ok := s.adapters[conn.SourceID.String()]
		if !ok {
			continue
		}
		targetAd, ok := s.adapters[conn.TargetID.String()]
		if !ok {
			continue
		}
		sourceAd.ConnectTo(targetAd, conn.SourceOutput, conn.TargetInput)
	}
}

// startSourcesLocked starts the fresh source nodes
func (s *GraphStore) startSourcesLocked(rebuilt map[string]bool) {
	for id := range rebuilt {
		ad, ok := s.adapters[id]
		if !ok {
			continue
		}
		engineNode := ad.EngineNode()
		if engineNode == nil {
			continue
		}
		if err := engineNode.Start(); err != nil {
			s.metrics.RecordEngineFailure()
			s.logger.Warn("failed to start source node",
				zap.String("nodeId", id), zap.Error(err))
		}
	}
}

// repokeOutputsLocked re-emits every custom node's current outputs so
// parameter-driving subscriptions write into the fresh engine objects
func (s *GraphStore) repokeOutputsLocked() {
	if s.rt == nil {
		return
	}
	for id, node := range s.nodes {
		if node.Metadata().Native {
			continue
		}
		for _, port := range node.Metadata().Outputs {
			if v, ok := s.rt.Output(id, port.Name); ok {
				s.rt.SetOutput(id, port.Name, v)
			}
		}
	}
}
