package runtime

import (
	"testing"
	"time"

	"patchbay/domain/catalog"
	"patchbay/domain/config"
	enginememory "patchbay/infrastructure/engine/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func timerTicks(rt *Runtime, id string) float64 {
	v, ok := rt.Output(id, "tick")
	if !ok {
		return 0
	}
	f, _ := ToFloat(v)
	return f
}

func waitForTicks(t *testing.T, rt *Runtime, id string, min float64) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if timerTicks(rt, id) >= min {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timer never reached %v ticks", min)
}

func TestTimer_FiresOnlyWhileEngineRunning(t *testing.T) {
	rt, eng := newTestRuntime(t)
	require.NoError(t, rt.AddNode("timer", catalog.TypeTimer))
	rt.SetProperty("timer", "interval", 10.0)

	// Engine suspended: no schedule exists and nothing fires
	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0.0, timerTicks(rt, "timer"))

	require.NoError(t, eng.StartContext())
	rt.ResumeTimers()
	waitForTicks(t, rt, "timer", 2)

	// Pausing stops firing again; allow an in-flight tick to land first
	require.NoError(t, eng.StopContext())
	time.Sleep(50 * time.Millisecond)
	frozen := timerTicks(rt, "timer")
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, frozen, timerTicks(rt, "timer"))
}

func TestTimer_ManualModeDoesNotAutoStart(t *testing.T) {
	rt, eng := newTestRuntime(t)
	require.NoError(t, rt.AddNode("timer", catalog.TypeTimer))
	require.NoError(t, eng.StartContext())

	rt.SetProperty("timer", "startMode", "manual")
	rt.SetProperty("timer", "interval", 10.0)

	time.Sleep(100 * time.Millisecond)
	assert.Equal(t, 0.0, timerTicks(rt, "timer"))
}

func TestTimer_IntervalClampedToConfiguredMinimum(t *testing.T) {
	eng := enginememory.New()
	cfg := config.DefaultDomainConfig()
	cfg.MinTimerIntervalMs = 300
	rt := New(catalog.Builtin(), eng, cfg, nil, zap.NewNop())

	require.NoError(t, eng.StartContext())
	require.NoError(t, rt.AddNode("timer", catalog.TypeTimer))
	rt.SetProperty("timer", "interval", 1.0)

	// The requested 1ms is clamped to 300ms, so nothing fires this early
	time.Sleep(150 * time.Millisecond)
	assert.Equal(t, 0.0, timerTicks(rt, "timer"))

	waitForTicks(t, rt, "timer", 1)
}

func TestTimer_ResumeSkipsManualMode(t *testing.T) {
	rt, eng := newTestRuntime(t)
	require.NoError(t, rt.AddNode("auto", catalog.TypeTimer))
	require.NoError(t, rt.AddNode("manual", catalog.TypeTimer))
	rt.SetProperty("auto", "interval", 10.0)
	rt.SetProperty("manual", "startMode", "manual")
	rt.SetProperty("manual", "interval", 10.0)

	require.NoError(t, eng.StartContext())
	rt.ResumeTimers()

	waitForTicks(t, rt, "auto", 1)
	assert.Equal(t, 0.0, timerTicks(rt, "manual"))
}

func TestTimer_RemoveNodeStopsFiring(t *testing.T) {
	rt, eng := newTestRuntime(t)
	require.NoError(t, rt.AddNode("timer", catalog.TypeTimer))
	require.NoError(t, eng.StartContext())
	rt.SetProperty("timer", "interval", 10.0)
	waitForTicks(t, rt, "timer", 1)

	assert.NotPanics(t, func() {
		rt.RemoveNode("timer")
	})

	_, ok := rt.Output("timer", "tick")
	assert.False(t, ok)
}
