package dataprocessing

import (
	"fmt"
	"strings"

	"absencecli/internal/config"
	"absencecli/pkg/contracts/domain"
)

// ErrorPolicy decides what happens to a batch when a row fails to parse
type ErrorPolicy string

const (
	// PolicyFailFast aborts the batch on the first unparseable row
	PolicyFailFast ErrorPolicy = "fail-fast"
	// PolicySkip drops unparseable rows and reports them
	PolicySkip ErrorPolicy = "skip"
)

// ParseErrorPolicy validates a policy name. Empty means fail-fast.
func ParseErrorPolicy(s string) (ErrorPolicy, error) {
	switch ErrorPolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", PolicyFailFast:
		return PolicyFailFast, nil
	case PolicySkip:
		return PolicySkip, nil
	default:
		return "", fmt.Errorf("unknown error policy %q (want fail-fast or skip)", s)
	}
}

// Rounding decides how fractional totals become integers
type Rounding string

const (
	// RoundingTruncate drops the fractional part
	RoundingTruncate Rounding = "truncate"
	// RoundingRound rounds half away from zero
	RoundingRound Rounding = "round"
)

// ParseRounding validates a rounding mode name. Empty means truncate.
func ParseRounding(s string) (Rounding, error) {
	switch Rounding(strings.ToLower(strings.TrimSpace(s))) {
	case "", RoundingTruncate:
		return RoundingTruncate, nil
	case RoundingRound:
		return RoundingRound, nil
	default:
		return "", fmt.Errorf("unknown rounding %q (want truncate or round)", s)
	}
}

// ProcessingOptions configures one pipeline run
type ProcessingOptions struct {
	Unit     domain.Unit
	Policy   ErrorPolicy
	Rounding Rounding
}

// DefaultOptions returns default processing options
func DefaultOptions() ProcessingOptions {
	return ProcessingOptions{
		Unit:     domain.UnitHours,
		Policy:   PolicyFailFast,
		Rounding: RoundingTruncate,
	}
}

// OptionsFromConfig builds processing options from the processing config section
func OptionsFromConfig(cfg config.ProcessingConfig) (ProcessingOptions, error) {
	unit, err := domain.ParseUnit(cfg.Unit)
	if err != nil {
		return ProcessingOptions{}, err
	}
	policy, err := ParseErrorPolicy(cfg.ErrorPolicy)
	if err != nil {
		return ProcessingOptions{}, err
	}
	rounding, err := ParseRounding(cfg.Rounding)
	if err != nil {
		return ProcessingOptions{}, err
	}
	return ProcessingOptions{Unit: unit, Policy: policy, Rounding: rounding}, nil
}

// Override returns a copy with every non-empty setting replaced. It is used
// for command-line flags and query parameters layered over the config.
func (o ProcessingOptions) Override(unit, policy, rounding string) (ProcessingOptions, error) {
	var err error
	if strings.TrimSpace(unit) != "" {
		if o.Unit, err = domain.ParseUnit(unit); err != nil {
			return ProcessingOptions{}, err
		}
	}
	if strings.TrimSpace(policy) != "" {
		if o.Policy, err = ParseErrorPolicy(policy); err != nil {
			return ProcessingOptions{}, err
		}
	}
	if strings.TrimSpace(rounding) != "" {
		if o.Rounding, err = ParseRounding(rounding); err != nil {
			return ProcessingOptions{}, err
		}
	}
	return o, nil
}

// ReadOptionsFromConfig builds export reader options from the processing config section
func ReadOptionsFromConfig(cfg config.ProcessingConfig) ReadOptions {
	opts := DefaultReadOptions()
	if r := []rune(cfg.Delimiter); len(r) == 1 {
		opts.Delimiter = r[0]
	}
	if cfg.Encoding != "" {
		opts.Encoding = cfg.Encoding
	}
	return opts
}
