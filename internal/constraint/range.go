package constraint

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/spf13/cast"

	"github.com/peterkuimelis/bridgegen/internal/bridge"
)

var errNotInteger = errors.New("not an integer")

// Domain ceilings for a single bound.
const (
	HCPCeiling        = bridge.MaxHCP
	SuitLengthCeiling = bridge.HandSize
)

// RawRange is a user-entered min/max pair. Either side may be empty, a number or a
// numeric string.
type RawRange struct {
	Min any `yaml:"min,omitempty" json:"min,omitempty"`
	Max any `yaml:"max,omitempty" json:"max,omitempty"`
}

// Empty reports whether neither side was entered at all.
func (r RawRange) Empty() bool {
	return blank(r.Min) && blank(r.Max)
}

// Range is a validated inclusive bound pair. A side applies only when its Has flag is set.
type Range struct {
	Min, Max       int
	HasMin, HasMax bool
}

// Active reports whether either side constrains anything.
func (r Range) Active() bool {
	return r.HasMin || r.HasMax
}

// Contains reports whether v satisfies both active sides.
func (r Range) Contains(v int) bool {
	if r.HasMin && v < r.Min {
		return false
	}
	if r.HasMax && v > r.Max {
		return false
	}
	return true
}

func (r Range) String() string {
	lo, hi := "", ""
	if r.HasMin {
		lo = fmt.Sprint(r.Min)
	}
	if r.HasMax {
		hi = fmt.Sprint(r.Max)
	}
	return lo + ":" + hi
}

// Issue records a bound that was entered but ignored.
type Issue struct {
	Field  string `json:"field"`
	Value  string `json:"value"`
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%s=%q ignored: %s", i.Field, i.Value, i.Reason)
}

// Diagnostics lists the entries a compile step ignored.
type Diagnostics []Issue

func (d Diagnostics) String() string {
	parts := make([]string, len(d))
	for i, is := range d {
		parts[i] = is.String()
	}
	return strings.Join(parts, "; ")
}

// ParseRange validates a raw range against a ceiling. Sides that are not integers in
// [0, ceiling] are dropped and reported as issues, never as errors.
func ParseRange(field string, raw RawRange, ceiling int) (Range, []Issue) {
	var r Range
	var issues []Issue

	if v, ok, issue := parseBound(raw.Min, ceiling); ok {
		r.Min, r.HasMin = v, true
	} else if issue != "" {
		issues = append(issues, Issue{Field: field + ".min", Value: fmt.Sprint(raw.Min), Reason: issue})
	}
	if v, ok, issue := parseBound(raw.Max, ceiling); ok {
		r.Max, r.HasMax = v, true
	} else if issue != "" {
		issues = append(issues, Issue{Field: field + ".max", Value: fmt.Sprint(raw.Max), Reason: issue})
	}
	return r, issues
}

// parseBound returns the bound, whether it is usable, and why not when it was
// entered but unusable.
func parseBound(v any, ceiling int) (int, bool, string) {
	if blank(v) {
		return 0, false, ""
	}

	var n int
	var err error
	switch x := v.(type) {
	case string:
		n, err = strconv.Atoi(strings.TrimSpace(x))
	case bool:
		err = errNotInteger
	case float64:
		if x != math.Trunc(x) {
			err = errNotInteger
		} else {
			n, err = cast.ToIntE(x)
		}
	default:
		n, err = cast.ToIntE(x)
	}
	if err != nil {
		return 0, false, "not an integer"
	}
	if n < 0 || n > ceiling {
		return 0, false, fmt.Sprintf("outside 0..%d", ceiling)
	}
	return n, true, ""
}

func blank(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s) == ""
	}
	return false
}
