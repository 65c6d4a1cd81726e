package hydro

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// Options are the hydro-specific switches. Raw option maps may carry bools or
// the 0/1 integers found in technology data files.
type Options struct {
	// AllowOnlyOneDirection adds the relaxed cut that limits simultaneous
	// pumping and generating.
	AllowOnlyOneDirection bool `mapstructure:"allow_only_one_direction"`
	// CanPump false fixes input to zero.
	CanPump bool `mapstructure:"can_pump"`
	// BidirectionalPrecise adds the exact disjunction on top of the cut.
	BidirectionalPrecise bool `mapstructure:"bidirectional_precise"`
	// MaximumDischargeTimeDiscrete bounds output by the
	// <name>_maximum_discharge series.
	MaximumDischargeTimeDiscrete bool `mapstructure:"maximum_discharge_time_discrete"`
}

func DefaultOptions() Options {
	return Options{
		AllowOnlyOneDirection:        false,
		CanPump:                      true,
		BidirectionalPrecise:         true,
		MaximumDischargeTimeDiscrete: true,
	}
}

// DecodeOptions overlays raw onto DefaultOptions. Keys that are not hydro
// options are returned in unused.
func DecodeOptions(raw map[string]any) (opts Options, unused []string, err error) {
	opts = DefaultOptions()
	var md mapstructure.Metadata
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Metadata:         &md,
		Result:           &opts,
	})
	if err != nil {
		return Options{}, nil, err
	}
	if err := dec.Decode(raw); err != nil {
		return Options{}, nil, err
	}
	return opts, md.Unused, nil
}

// DirectionPolicy is how simultaneous pumping and generating is restricted.
type DirectionPolicy int

const (
	// Unrestricted emits no exclusivity constraint.
	Unrestricted DirectionPolicy = iota
	// RelaxedCut emits output/discharge_max + input/charge_max <= size.
	RelaxedCut
	// ExactDisjunctive emits the cut and a per-timestep disjunction that
	// forces either output or input to zero.
	ExactDisjunctive
)

func (p DirectionPolicy) String() string {
	switch p {
	case Unrestricted:
		return "unrestricted"
	case RelaxedCut:
		return "relaxed_cut"
	case ExactDisjunctive:
		return "exact_disjunctive"
	default:
		return fmt.Sprintf("DirectionPolicy(%d)", int(p))
	}
}

// Direction resolves the policy. BidirectionalPrecise only matters when
// AllowOnlyOneDirection is set.
func (o Options) Direction() DirectionPolicy {
	switch {
	case !o.AllowOnlyOneDirection:
		return Unrestricted
	case o.BidirectionalPrecise:
		return ExactDisjunctive
	default:
		return RelaxedCut
	}
}
