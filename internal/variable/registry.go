package variable

import (
	"errors"
	"fmt"
)

var (
	ErrDuplicate = errors.New("variable already registered")
	ErrNotFound  = errors.New("variable not found")
)

// Registry is the caller-owned, ordered list of variables. Order matters:
// correlation pairs are enumerated in registry order.
type Registry struct {
	vars []Variable
}

// NewRegistry builds a registry from vars, validating each in order.
func NewRegistry(vars ...Variable) (*Registry, error) {
	r := &Registry{}
	for _, v := range vars {
		if err := r.Add(v); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Add appends v after validating it. Names must be unique.
func (r *Registry) Add(v Variable) error {
	if err := v.Validate(); err != nil {
		return err
	}
	if r.index(v.Name) >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicate, v.Name)
	}
	r.vars = append(r.vars, v)
	return nil
}

// Remove drops the named variable, keeping the order of the rest.
func (r *Registry) Remove(name string) error {
	i := r.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	r.vars = append(r.vars[:i], r.vars[i+1:]...)
	return nil
}

// SetActive toggles whether the named variable takes part in analysis.
func (r *Registry) SetActive(name string, active bool) error {
	i := r.index(name)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	r.vars[i].Active = active
	return nil
}

func (r *Registry) Get(name string) (Variable, bool) {
	i := r.index(name)
	if i < 0 {
		return Variable{}, false
	}
	return r.vars[i], true
}

// Variables returns a snapshot copy in registry order.
func (r *Registry) Variables() []Variable {
	out := make([]Variable, len(r.vars))
	copy(out, r.vars)
	return out
}

// Active returns the active variables in registry order.
func (r *Registry) Active() []Variable {
	var out []Variable
	for _, v := range r.vars {
		if v.Active {
			out = append(out, v)
		}
	}
	return out
}

func (r *Registry) Len() int { return len(r.vars) }

func (r *Registry) index(name string) int {
	for i, v := range r.vars {
		if v.Name == name {
			return i
		}
	}
	return -1
}
