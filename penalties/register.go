// Package penalties provides the L1 and L2 weight-decay regularizers.
//
// A regularizer contributes in two places: Penalize is subtracted from each weight's gradient as
// it is accumulated, and WeightDecay adds the matching term to the reported error.
package penalties

import (
	"github.com/pkg/errors"
)

// Kind selects the regularizer.
type Kind int8

const (
	None Kind = iota
	L1
	L2
)

var kindNames = map[Kind]string{
	None: "none",
	L1:   "l1-lasso",
	L2:   "l2-ridge",
}

func (k Kind) TypeString() string {
	if s, ok := kindNames[k]; ok {
		return s
	}

	return "unknown"
}

func (k Kind) String() string {
	return k.TypeString()
}

// Active returns whether the regularizer has any effect with the given factor
func (k Kind) Active(factor float64) bool {
	return factor != 0 && (k == L1 || k == L2)
}

// Parse returns the Kind with the given name. "l1" and "l2" are accepted as short forms, and the
// empty string is None.
func Parse(name string) (Kind, error) {
	switch name {
	case "", "none":
		return None, nil
	case "l1", "lasso", "l1-lasso":
		return L1, nil
	case "l2", "ridge", "l2-ridge":
		return L2, nil
	}

	return None, errors.Errorf("unknown regularization %q", name)
}
