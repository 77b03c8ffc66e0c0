package paramlock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etf-momentum/internal/dto"
)

func baseParams() dto.StrategyParams {
	return dto.StrategyParams{
		Periods:            []int{30, 90, 180},
		Weights:            []float64{0.5, 0.3, 0.2},
		TransactionCostPct: 0.001,
		RebalanceFrequency: "monthly",
		Symbols:            []string{"SPY", "QQQ", "IWM"},
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	first, err := Capture("momentum", baseParams())
	require.NoError(t, err)
	second, err := Capture("momentum", baseParams())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, 64)
}

func TestFingerprintIgnoresKeyOrder(t *testing.T) {
	a := baseParams()
	a.Extra = map[string]interface{}{"alpha": 1, "beta": 2}
	b := baseParams()
	b.Extra = map[string]interface{}{"beta": 2, "alpha": 1}

	fa, err := Capture("momentum", a)
	require.NoError(t, err)
	fb, err := Capture("momentum", b)
	require.NoError(t, err)

	assert.Equal(t, fa, fb)
}

func TestFingerprintChangesWithValue(t *testing.T) {
	original, err := Capture("momentum", baseParams())
	require.NoError(t, err)

	modified := baseParams()
	modified.TransactionCostPct = 0.002
	changed, err := Capture("momentum", modified)
	require.NoError(t, err)

	assert.NotEqual(t, original, changed)
}

func TestValidateAgainstLockUnchanged(t *testing.T) {
	lock, err := NewLock("momentum", baseParams())
	require.NoError(t, err)

	v := NewValidator()
	validation, err := v.ValidateAgainstLock(lock, baseParams())
	require.NoError(t, err)

	assert.True(t, validation.Valid)
	assert.True(t, validation.FingerprintMatch)
	assert.Empty(t, validation.Violations)
	assert.Len(t, v.AuditLog(), 1)
}

func TestValidateAgainstLockChangedValue(t *testing.T) {
	lock, err := NewLock("momentum", baseParams())
	require.NoError(t, err)

	tampered := baseParams()
	tampered.TransactionCostPct = 0.002

	v := NewValidator()
	validation, err := v.ValidateAgainstLock(lock, tampered)
	require.NoError(t, err)

	assert.False(t, validation.Valid)
	assert.False(t, validation.FingerprintMatch)
	require.Len(t, validation.Violations, 1)

	violation := validation.Violations[0]
	assert.Equal(t, "transaction_cost_pct", violation.Field)
	assert.Equal(t, dto.ParamChanged, violation.Kind)
	assert.Equal(t, "0.001", violation.OldValue)
	assert.Equal(t, "0.002", violation.NewValue)
}

func TestValidateAgainstLockAddedAndRemoved(t *testing.T) {
	locked := baseParams()
	locked.Extra = map[string]interface{}{"lookback_buffer": 5}
	lock, err := NewLock("momentum", locked)
	require.NoError(t, err)

	current := baseParams()
	current.Extra = map[string]interface{}{"risk_free_rate": 0.02}

	v := NewValidator()
	validation, err := v.ValidateAgainstLock(lock, current)
	require.NoError(t, err)

	assert.False(t, validation.Valid)
	assert.False(t, validation.FingerprintMatch)
	require.Len(t, validation.Violations, 2)

	assert.Equal(t, "lookback_buffer", validation.Violations[0].Field)
	assert.Equal(t, dto.ParamRemoved, validation.Violations[0].Kind)
	assert.Equal(t, "risk_free_rate", validation.Violations[1].Field)
	assert.Equal(t, dto.ParamAdded, validation.Violations[1].Kind)
}

func TestValidatorSummarize(t *testing.T) {
	lock, err := NewLock("momentum", baseParams())
	require.NoError(t, err)

	tampered := baseParams()
	tampered.TransactionCostPct = 0.005

	v := NewValidator()
	for i := 0; i < 3; i++ {
		_, err := v.ValidateAgainstLock(lock, baseParams())
		require.NoError(t, err)
	}
	_, err = v.ValidateAgainstLock(lock, tampered)
	require.NoError(t, err)

	summary := v.Summarize()
	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.Passed)
	assert.Equal(t, 1, summary.Failed)
	assert.InDelta(t, 25.0, summary.FailureRate, 1e-9)
}

func TestCaptureMatchesLockFingerprint(t *testing.T) {
	fingerprint, err := Capture("momentum", baseParams())
	require.NoError(t, err)

	lock, err := NewLock("momentum", baseParams())
	require.NoError(t, err)
	assert.Equal(t, lock.Fingerprint, fingerprint)

	// The name labels the capture; it never enters the digest.
	renamed, err := Capture("other", baseParams())
	require.NoError(t, err)
	assert.Equal(t, fingerprint, renamed)
}
