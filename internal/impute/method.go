package impute

import (
	"strings"

	"datamend/internal/errors"
)

// Method is the closed set of imputation strategies.
type Method int

const (
	MethodMean Method = iota
	MethodMedian
	MethodMode
	MethodFFill
	MethodBFill
	MethodDrop
	MethodKNN
	MethodIterative
)

var methodNames = map[Method]string{
	MethodMean:      "mean",
	MethodMedian:    "median",
	MethodMode:      "mode",
	MethodFFill:     "ffill",
	MethodBFill:     "bfill",
	MethodDrop:      "drop",
	MethodKNN:       "knn",
	MethodIterative: "iterative",
}

func (m Method) String() string {
	if name, ok := methodNames[m]; ok {
		return name
	}
	return "unknown"
}

// ParseMethod maps a method identifier to its Method. Unknown identifiers
// are rejected at this boundary rather than treated as a no-op.
func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "mean":
		return MethodMean, nil
	case "median":
		return MethodMedian, nil
	case "mode":
		return MethodMode, nil
	case "ffill":
		return MethodFFill, nil
	case "bfill":
		return MethodBFill, nil
	case "drop":
		return MethodDrop, nil
	case "knn":
		return MethodKNN, nil
	case "iterative":
		return MethodIterative, nil
	default:
		return 0, errors.InvalidMethod(name)
	}
}

// Methods returns every known method identifier.
func Methods() []string {
	return []string{"mean", "median", "mode", "ffill", "bfill", "drop", "knn", "iterative"}
}

// Params carries method-specific knobs. Unset fields fall back to the
// documented defaults; Threshold is a pointer so an explicit 0 stays
// distinguishable from absent.
type Params struct {
	Neighbors int      `json:"n_neighbors,omitempty"` // knn
	MaxIter   int      `json:"max_iter,omitempty"`    // iterative
	Threshold *float64 `json:"threshold,omitempty"`   // drop, fraction in [0,1]
	Seed      int64    `json:"seed,omitempty"`        // iterative subsampling
}

// Threshold wraps a drop threshold for Params.
func Threshold(v float64) *float64 { return &v }

const (
	DefaultNeighbors = 5
	DefaultMaxIter   = 10
	DefaultThreshold = 0.5
)

// DefaultParams returns the documented per-method defaults.
func DefaultParams() Params {
	return Params{
		Neighbors: DefaultNeighbors,
		MaxIter:   DefaultMaxIter,
		Threshold: Threshold(DefaultThreshold),
	}
}

func (p Params) withDefaults() Params {
	if p.Neighbors <= 0 {
		p.Neighbors = DefaultNeighbors
	}
	if p.MaxIter <= 0 {
		p.MaxIter = DefaultMaxIter
	}
	if p.Threshold == nil || *p.Threshold < 0 || *p.Threshold > 1 {
		p.Threshold = Threshold(DefaultThreshold)
	}
	return p
}
