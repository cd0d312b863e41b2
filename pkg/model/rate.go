package model

import (
	"encoding/json"
	"fmt"
)

// UnavailableReason explains why a rate could not be computed.
type UnavailableReason string

const (
	ReasonZeroDistance     UnavailableReason = "zero_distance"
	ReasonNegativeDistance UnavailableReason = "negative_distance"
	ReasonNoFuel           UnavailableReason = "no_fuel"
	ReasonNoCycles         UnavailableReason = "no_cycles"
)

// Rate is either an available value or an unavailable marker with a reason.
// The zero Rate is unavailable. Read it through Value so an unavailable rate
// is never mistaken for zero.
type Rate struct {
	value     float64
	available bool
	reason    UnavailableReason
}

// Available returns a rate holding v.
func Available(v float64) Rate {
	return Rate{value: v, available: true}
}

// Unavailable returns a rate that carries no value.
func Unavailable(reason UnavailableReason) Rate {
	return Rate{reason: reason}
}

// Value returns the rate and whether it is available.
func (r Rate) Value() (float64, bool) {
	return r.value, r.available
}

// IsAvailable reports whether the rate holds a value.
func (r Rate) IsAvailable() bool { return r.available }

// Reason returns why the rate is unavailable, or "" when it is available.
func (r Rate) Reason() UnavailableReason {
	if r.available {
		return ""
	}
	return r.reason
}

// Format renders the value with the given verb, or "n/a" when unavailable.
func (r Rate) Format(verb string) string {
	if !r.available {
		return "n/a"
	}
	return fmt.Sprintf(verb, r.value)
}

type rateJSON struct {
	Available bool              `json:"available"`
	Value     *float64          `json:"value,omitempty"`
	Reason    UnavailableReason `json:"reason,omitempty"`
}

func (r Rate) MarshalJSON() ([]byte, error) {
	out := rateJSON{Available: r.available}
	if r.available {
		v := r.value
		out.Value = &v
	} else {
		out.Reason = r.reason
	}
	return json.Marshal(out)
}

func (r *Rate) UnmarshalJSON(data []byte) error {
	var in rateJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if in.Available {
		if in.Value == nil {
			return fmt.Errorf("available rate without value")
		}
		*r = Available(*in.Value)
		return nil
	}
	*r = Unavailable(in.Reason)
	return nil
}
