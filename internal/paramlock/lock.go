package paramlock

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"etf-momentum/internal/dto"
)

// Lock is an immutable fingerprinted snapshot of a parameter set. It is the
// reference for every later validation; it never regenerates itself.
type Lock struct {
	StrategyName string                 `json:"strategy_name"`
	Params       map[string]interface{} `json:"locked_parameters"`
	Fingerprint  string                 `json:"fingerprint"`
	CapturedAt   time.Time              `json:"captured_at"`
}

// normalize round-trips a parameter mapping through JSON so that values
// compare by content and not by Go type. Without it a []int captured at
// lock time would never equal the []interface{} a decoded request carries.
func normalize(params map[string]interface{}) (map[string]interface{}, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("parameters are not serializable: %w", err)
	}
	var normalized map[string]interface{}
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, err
	}
	return normalized, nil
}

// Fingerprint hashes the canonical serialization of a parameter mapping.
// encoding/json writes map keys in sorted order, so any key reordering of
// the input produces the same digest while any value change produces a
// different one.
func Fingerprint(params map[string]interface{}) (string, error) {
	normalized, err := normalize(params)
	if err != nil {
		return "", err
	}
	canonical, err := json.Marshal(normalized)
	if err != nil {
		return "", err
	}
	digest := sha256.Sum256(canonical)
	return hex.EncodeToString(digest[:]), nil
}

// Capture fingerprints the named strategy's parameters without building a
// full lock. The name identifies whose fingerprint it is and is not part of
// the hash, so the digest stays comparable with Lock fingerprints.
func Capture(name string, params dto.StrategyParams) (string, error) {
	fingerprint, err := Fingerprint(params.Canonical())
	if err != nil {
		return "", fmt.Errorf("capture %s: %w", name, err)
	}
	return fingerprint, nil
}

// NewLock snapshots and fingerprints a parameter set.
func NewLock(name string, params dto.StrategyParams) (*Lock, error) {
	normalized, err := normalize(params.Canonical())
	if err != nil {
		return nil, err
	}
	fingerprint, err := Fingerprint(normalized)
	if err != nil {
		return nil, err
	}
	return &Lock{
		StrategyName: name,
		Params:       normalized,
		Fingerprint:  fingerprint,
		CapturedAt:   time.Now().UTC(),
	}, nil
}

func valueString(v interface{}) string {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(raw)
}

func valuesEqual(a, b interface{}) bool {
	return valueString(a) == valueString(b)
}

// diff compares two normalized mappings key by key, reporting removed,
// added, and changed parameters in deterministic key order.
func diff(locked, current map[string]interface{}) []dto.ParamViolation {
	var violations []dto.ParamViolation

	keys := make([]string, 0, len(locked)+len(current))
	seen := make(map[string]bool, len(locked)+len(current))
	for k := range locked {
		keys = append(keys, k)
		seen[k] = true
	}
	for k := range current {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, key := range keys {
		lockedVal, inLocked := locked[key]
		currentVal, inCurrent := current[key]

		switch {
		case inLocked && !inCurrent:
			violations = append(violations, dto.ParamViolation{
				Field:    key,
				Kind:     dto.ParamRemoved,
				OldValue: valueString(lockedVal),
			})
		case !inLocked && inCurrent:
			violations = append(violations, dto.ParamViolation{
				Field:    key,
				Kind:     dto.ParamAdded,
				NewValue: valueString(currentVal),
			})
		case !valuesEqual(lockedVal, currentVal):
			violations = append(violations, dto.ParamViolation{
				Field:    key,
				Kind:     dto.ParamChanged,
				OldValue: valueString(lockedVal),
				NewValue: valueString(currentVal),
			})
		}
	}

	return violations
}

// Validator validates parameter sets against locks and keeps the audit
// trail of every check it performed. One instance belongs to one run; it is
// not safe for concurrent use.
type Validator struct {
	auditLog []dto.LockValidation
}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAgainstLock checks the current parameters against a lock. The
// fingerprint comparison is the fast path; the structural diff runs
// unconditionally as a double check and the two can never disagree, since
// both operate on the same canonical serialization. The outcome is appended
// to the audit log.
func (v *Validator) ValidateAgainstLock(lock *Lock, current dto.StrategyParams) (dto.LockValidation, error) {
	normalized, err := normalize(current.Canonical())
	if err != nil {
		return dto.LockValidation{}, err
	}
	currentFingerprint, err := Fingerprint(normalized)
	if err != nil {
		return dto.LockValidation{}, err
	}

	violations := diff(lock.Params, normalized)

	validation := dto.LockValidation{
		StrategyName:     lock.StrategyName,
		Valid:            len(violations) == 0,
		FingerprintMatch: currentFingerprint == lock.Fingerprint,
		Violations:       violations,
		ValidatedAt:      time.Now().UTC(),
	}

	v.auditLog = append(v.auditLog, validation)
	return validation, nil
}

// AuditLog returns a copy of every validation performed so far.
func (v *Validator) AuditLog() []dto.LockValidation {
	return append([]dto.LockValidation(nil), v.auditLog...)
}

// Summary aggregates the audit log for reporting.
type Summary struct {
	Total       int     `json:"total_validations"`
	Passed      int     `json:"passed_validations"`
	Failed      int     `json:"failed_validations"`
	FailureRate float64 `json:"failure_rate"`
}

func (v *Validator) Summarize() Summary {
	s := Summary{Total: len(v.auditLog)}
	for _, entry := range v.auditLog {
		if entry.Valid {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	if s.Total > 0 {
		s.FailureRate = float64(s.Failed) / float64(s.Total) * 100
	}
	return s
}
