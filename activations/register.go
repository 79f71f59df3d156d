// Package activations provides the scalar activation functions used by the layers of a network,
// together with their derivatives.
//
// Functions are looked up through a Registry, which is an immutable value built by New. A
// Registry is passed explicitly to every layer constructor; there is no package-level table.
package activations

import (
	"strconv"

	"github.com/pkg/errors"
)

// ID identifies an activation function within a Registry.
type ID int

// The built-in activation functions. Their order is also the order of their names in
// Registry.Names.
const (
	Identity ID = iota
	Zero
	Sigmoid
	Tanh
	TanhShift
	ReLU
	SymmReLU
	SoftPlus
	SoftSign
	Gauss
	GaussComplement
)

// Func is a single activation function.
//
// Apply maps the weighted sum of a node to its value. Deriv is the derivative of Apply, taking
// the same (pre-activation) argument.
type Func struct {
	ID    ID
	Name  string
	Apply func(float64) float64
	Deriv func(float64) float64
}

// Registry maps IDs and names to activation functions. The zero value holds nothing; use New.
//
// A Registry is never modified after it is built, so it may be shared between goroutines.
type Registry struct {
	byID   map[ID]Func
	byName map[string]ID
	order  []ID
}

// New returns a Registry holding every built-in activation function.
func New() Registry {
	r := Registry{
		byID:   make(map[ID]Func),
		byName: make(map[string]ID),
	}

	list := []Func{
		identity(), zero(),
		sigmoid(), tanh(), tanhShift(),
		relu(), symmReLU(), softPlus(),
		softSign(),
		gauss(), gaussComplement(),
	}

	for _, f := range list {
		r.add(f)
	}

	return r
}

func (r *Registry) add(f Func) {
	if _, ok := r.byID[f.ID]; !ok {
		r.order = append(r.order, f.ID)
	}

	r.byID[f.ID] = f
	r.byName[f.Name] = f.ID
}

// With returns a copy of the Registry that additionally holds the given functions. Functions
// whose ID or name is already present replace the existing entry. The receiver is unchanged.
func (r Registry) With(fs ...Func) (Registry, error) {
	c := Registry{
		byID:   make(map[ID]Func, len(r.byID)+len(fs)),
		byName: make(map[string]ID, len(r.byName)+len(fs)),
		order:  append([]ID(nil), r.order...),
	}

	for id, f := range r.byID {
		c.byID[id] = f
	}
	for n, id := range r.byName {
		c.byName[n] = id
	}

	for _, f := range fs {
		if f.Apply == nil || f.Deriv == nil {
			return Registry{}, errors.Errorf("activation function %q is missing Apply or Deriv", f.Name)
		} else if f.Name == "" {
			return Registry{}, errors.Errorf("activation function with id %d has no name", f.ID)
		}

		c.add(f)
	}

	return c, nil
}

// Get returns the function with the given ID.
func (r Registry) Get(id ID) (Func, bool) {
	f, ok := r.byID[id]
	return f, ok
}

// Lookup returns the function with the given name.
func (r Registry) Lookup(name string) (Func, bool) {
	id, ok := r.byName[name]
	if !ok {
		return Func{}, false
	}

	return r.Get(id)
}

// Names returns the names of all functions in the Registry, in the order they were added.
func (r Registry) Names() []string {
	ns := make([]string, len(r.order))
	for i, id := range r.order {
		ns[i] = r.byID[id].Name
	}

	return ns
}

// String returns the name of a built-in ID, or "activation(n)" for others.
func (id ID) String() string {
	if f, ok := New().Get(id); ok {
		return f.Name
	}

	return "activation(" + strconv.Itoa(int(id)) + ")"
}
