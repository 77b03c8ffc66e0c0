package dto

import (
	"fmt"
	"time"
)

// StrategyParams is the full parameter set of the momentum strategy. Known
// parameters are typed fields; Extra carries forward-compatible unknown keys
// so a lock captured by a newer build still fingerprints them.
type StrategyParams struct {
	Periods            []int     `json:"periods" validate:"required,min=1"`
	Weights            []float64 `json:"weights" validate:"required,min=1"`
	TransactionCostPct float64   `json:"transaction_cost_pct" validate:"gte=0"`
	RebalanceFrequency string    `json:"rebalance_frequency"`
	Symbols            []string  `json:"etf_symbols" validate:"required,min=1"`

	Extra map[string]interface{} `json:"-"`
}

// Canonical flattens the parameter set into the key→value mapping that
// fingerprinting and lock diffing operate on. Known keys always win over
// Extra entries of the same name.
func (p StrategyParams) Canonical() map[string]interface{} {
	m := make(map[string]interface{}, len(p.Extra)+5)
	for k, v := range p.Extra {
		m[k] = v
	}
	m["periods"] = p.Periods
	m["weights"] = p.Weights
	m["transaction_cost_pct"] = p.TransactionCostPct
	m["rebalance_frequency"] = p.RebalanceFrequency
	m["etf_symbols"] = p.Symbols
	return m
}

// ParamViolationKind classifies one structural difference between a locked
// and a current parameter mapping.
type ParamViolationKind string

const (
	ParamRemoved ParamViolationKind = "removed"
	ParamAdded   ParamViolationKind = "added"
	ParamChanged ParamViolationKind = "changed"
)

// ParamViolation describes a single parameter drift finding verbatim:
// which field, what kind of change, and the values on both sides.
type ParamViolation struct {
	Field    string             `json:"field"`
	Kind     ParamViolationKind `json:"kind"`
	OldValue string             `json:"old_value,omitempty"`
	NewValue string             `json:"new_value,omitempty"`
}

func (v ParamViolation) String() string {
	switch v.Kind {
	case ParamRemoved:
		return fmt.Sprintf("parameter %q was removed", v.Field)
	case ParamAdded:
		return fmt.Sprintf("parameter %q was added with value %s", v.Field, v.NewValue)
	default:
		return fmt.Sprintf("parameter %q changed from %s to %s", v.Field, v.OldValue, v.NewValue)
	}
}

// LockValidation is one entry of the OOS parameter audit log.
type LockValidation struct {
	StrategyName     string           `json:"strategy_name"`
	Valid            bool             `json:"valid"`
	FingerprintMatch bool             `json:"fingerprint_match"`
	Violations       []ParamViolation `json:"violations,omitempty"`
	ValidatedAt      time.Time        `json:"validated_at"`
}
