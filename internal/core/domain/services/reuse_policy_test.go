package services_test

import (
	"testing"
	"time"

	"coldchain/internal/core/domain/model/kernel"
	"coldchain/internal/core/domain/model/modelo"
	"coldchain/internal/core/domain/model/timer"
	"coldchain/internal/core/domain/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helper functions.
func createConfig(t *testing.T, sedeID, modeloID *kernel.UUID, litraje string, minReusoSec int64) *timer.Config {
	t.Helper()
	l, err := modelo.NewLitraje(litraje)
	require.NoError(t, err)
	cfg, err := timer.NewConfig(kernel.NewUUID(), sedeID, modeloID, l, 1800, 3600, 900, 86400, minReusoSec)
	require.NoError(t, err)
	return cfg
}

func createModelRef(t *testing.T, litraje string) services.ModelRef {
	t.Helper()
	l, err := modelo.NewLitraje(litraje)
	require.NoError(t, err)
	return services.ModelRef{ModeloID: kernel.NewUUID(), Litraje: l}
}

func createTransitTimer(t *testing.T, startedAt time.Time, durationSec int64) *timer.Timer {
	t.Helper()
	tm, err := timer.NewTimer(kernel.NewUUID(), timer.OwnerCaja, kernel.NewUUID().String(), timer.PhaseTransito, nil)
	require.NoError(t, err)
	require.NoError(t, tm.Start(startedAt, durationSec))
	return tm
}

func int64Ptr(v int64) *int64 { return &v }

func TestReusePolicyResolve(t *testing.T) {
	policy := services.NewReusePolicy()
	sede := kernel.NewUUID()
	otherSede := kernel.NewUUID()

	t.Run("should prefer the sede-specific row for the model", func(t *testing.T) {
		ref := createModelRef(t, "5L")
		configs := []*timer.Config{
			createConfig(t, nil, nil, "5L", 1000),            // shared global
			createConfig(t, &sede, nil, "5L", 2000),          // shared at sede
			createConfig(t, nil, &ref.ModeloID, "5L", 3000),  // direct global
			createConfig(t, &sede, &ref.ModeloID, "5L", 4000), // direct at sede
		}

		eval := policy.Resolve([]services.ModelRef{ref}, configs, &sede, nil)

		require.Len(t, eval.PerModel, 1)
		assert.Equal(t, int64(4000), eval.PerModel[0].RequiredSec)
		assert.Equal(t, services.OriginDirect, eval.PerModel[0].Origin)
		assert.Equal(t, int64(4000), eval.EffectiveSec)
	})

	t.Run("should fall back to the global row for the model", func(t *testing.T) {
		ref := createModelRef(t, "5L")
		configs := []*timer.Config{
			createConfig(t, &otherSede, &ref.ModeloID, "5L", 9000),
			createConfig(t, nil, &ref.ModeloID, "5L", 3000),
			createConfig(t, &sede, nil, "5L", 2000),
		}

		eval := policy.Resolve([]services.ModelRef{ref}, configs, &sede, nil)

		assert.Equal(t, int64(3000), eval.EffectiveSec)
		assert.Equal(t, services.OriginDirect, eval.PerModel[0].Origin)
	})

	t.Run("should resolve through the shared capacity class", func(t *testing.T) {
		ref := createModelRef(t, "5L")
		configs := []*timer.Config{
			createConfig(t, nil, nil, "5L", 1000),
			createConfig(t, &sede, nil, "5L", 2000),
		}

		eval := policy.Resolve([]services.ModelRef{ref}, configs, &sede, nil)

		assert.Equal(t, int64(2000), eval.EffectiveSec)
		assert.Equal(t, services.OriginShared, eval.PerModel[0].Origin)
	})

	t.Run("should ignore sede rows without a requesting sede", func(t *testing.T) {
		ref := createModelRef(t, "5L")
		configs := []*timer.Config{
			createConfig(t, &sede, nil, "5L", 2000),
			createConfig(t, nil, nil, "5L", 1000),
		}

		eval := policy.Resolve([]services.ModelRef{ref}, configs, nil, nil)

		assert.Equal(t, int64(1000), eval.EffectiveSec)
		assert.Equal(t, services.OriginShared, eval.PerModel[0].Origin)
	})

	t.Run("should use the 12 hour fallback without any row", func(t *testing.T) {
		ref := createModelRef(t, "5L")

		eval := policy.Resolve([]services.ModelRef{ref}, nil, &sede, nil)

		assert.Equal(t, timer.FallbackMinReuseSec, eval.EffectiveSec)
		assert.Equal(t, services.OriginFallback, eval.PerModel[0].Origin)
	})

	t.Run("should take the strictest requirement over all models", func(t *testing.T) {
		refA := createModelRef(t, "5L")
		refB := createModelRef(t, "10L")
		configs := []*timer.Config{
			createConfig(t, nil, &refA.ModeloID, "5L", 3000),
			createConfig(t, nil, &refB.ModeloID, "10L", 8000),
		}

		eval := policy.Resolve([]services.ModelRef{refA, refB}, configs, &sede, nil)

		require.Len(t, eval.PerModel, 2)
		assert.Equal(t, int64(8000), eval.EffectiveSec)
	})

	t.Run("should block a requested threshold below the minimum", func(t *testing.T) {
		ref := createModelRef(t, "5L")
		configs := []*timer.Config{createConfig(t, nil, &ref.ModeloID, "5L", 3000)}

		eval := policy.Resolve([]services.ModelRef{ref}, configs, &sede, int64Ptr(1200))

		assert.True(t, eval.Blocked)
		assert.Contains(t, eval.BlockedReason, "1200")
		assert.Contains(t, eval.BlockedReason, "3000")
		assert.Equal(t, int64(3000), eval.EffectiveSec)
	})

	t.Run("should let a requested threshold extend the wait", func(t *testing.T) {
		ref := createModelRef(t, "5L")
		configs := []*timer.Config{createConfig(t, nil, &ref.ModeloID, "5L", 3000)}

		eval := policy.Resolve([]services.ModelRef{ref}, configs, &sede, int64Ptr(5000))

		assert.False(t, eval.Blocked)
		assert.Equal(t, int64(5000), eval.EffectiveSec)
	})
}

func TestReusePolicyEvaluate(t *testing.T) {
	policy := services.NewReusePolicy()
	sede := kernel.NewUUID()
	now := time.Now()

	refWith := func(minReusoSec int64) (services.ModelRef, []*timer.Config) {
		ref := createModelRef(t, "5L")
		return ref, []*timer.Config{createConfig(t, nil, &ref.ModeloID, "5L", minReusoSec)}
	}

	t.Run("should reuse a box with enough transit time left", func(t *testing.T) {
		ref, configs := refWith(3000)
		transito := createTransitTimer(t, now.Add(-100*time.Second), 4000)

		eval := policy.Evaluate([]services.ModelRef{ref}, configs, &sede, nil, transito, now)

		assert.Equal(t, services.TimerRunning, eval.TimerStatus)
		assert.Equal(t, int64(3900), eval.RemainingSec)
		assert.True(t, eval.Reusable)
	})

	t.Run("should refuse a box with too little time left", func(t *testing.T) {
		ref, configs := refWith(3000)
		transito := createTransitTimer(t, now.Add(-2000*time.Second), 4000)

		eval := policy.Evaluate([]services.ModelRef{ref}, configs, &sede, nil, transito, now)

		assert.Equal(t, services.TimerRunning, eval.TimerStatus)
		assert.Equal(t, int64(2000), eval.RemainingSec)
		assert.False(t, eval.Reusable)
	})

	t.Run("should refuse an expired transit timer", func(t *testing.T) {
		ref, configs := refWith(3000)
		transito := createTransitTimer(t, now.Add(-2*time.Hour), 600)

		eval := policy.Evaluate([]services.ModelRef{ref}, configs, &sede, nil, transito, now)

		assert.Equal(t, services.TimerExpired, eval.TimerStatus)
		assert.Equal(t, int64(0), eval.RemainingSec)
		assert.False(t, eval.Reusable)
	})

	t.Run("should refuse a box with no transit timer", func(t *testing.T) {
		ref, configs := refWith(3000)

		eval := policy.Evaluate([]services.ModelRef{ref}, configs, &sede, nil, nil, now)

		assert.Equal(t, services.TimerMissing, eval.TimerStatus)
		assert.False(t, eval.Reusable)
	})

	t.Run("should treat a cleared timer as missing", func(t *testing.T) {
		ref, configs := refWith(3000)
		transito := createTransitTimer(t, now, 4000)
		transito.Clear()

		eval := policy.Evaluate([]services.ModelRef{ref}, configs, &sede, nil, transito, now)

		assert.Equal(t, services.TimerMissing, eval.TimerStatus)
		assert.False(t, eval.Reusable)
	})

	t.Run("should never reuse a force-blocked box", func(t *testing.T) {
		ref, configs := refWith(3000)
		transito := createTransitTimer(t, now, 100000)

		eval := policy.Evaluate([]services.ModelRef{ref}, configs, &sede, int64Ptr(10), transito, now)

		assert.True(t, eval.Blocked)
		assert.Equal(t, services.TimerRunning, eval.TimerStatus)
		assert.False(t, eval.Reusable)
	})
}
