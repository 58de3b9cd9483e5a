package oraclecall

import (
	"fmt"
	"strings"

	"github.com/emirpasic/gods/maps/linkedhashmap"

	"github.com/ignaciocaff/oraclecall/internal/core"
)

// Registry holds routine declarations in registration order. Lookup is
// case-insensitive, matching the Oracle data dictionary.
type Registry struct {
	routines *linkedhashmap.Map
}

func NewRegistry() *Registry {
	return &Registry{routines: linkedhashmap.New()}
}

// Register validates a declaration and adds it to the registry.
// Re-registering a name replaces the previous declaration.
func (reg *Registry) Register(r Routine) error {
	if err := r.validate(); err != nil {
		return err
	}
	for _, called := range r.Invokes {
		target, ok := reg.lookup(called)
		if !ok {
			return &NotFoundError{Routine: called}
		}
		if r.Kind == Function && target.Kind == Procedure {
			return fmt.Errorf("oraclecall: function %s cannot invoke procedure %s", r.Name, target.Name)
		}
	}
	reg.routines.Put(normalizeName(r.Name), r)
	return nil
}

func (reg *Registry) lookup(name string) (Routine, bool) {
	v, ok := reg.routines.Get(normalizeName(name))
	if !ok {
		return Routine{}, false
	}
	return v.(Routine), true
}

// Routines lists the registered declarations in registration order.
func (reg *Registry) Routines() []Routine {
	out := make([]Routine, 0, reg.routines.Size())
	for _, v := range reg.routines.Values() {
		out = append(out, v.(Routine))
	}
	return out
}

// FunctionExpr renders a bind-variable call fragment for embedding a
// registered function in a query expression, e.g. "GET_RATE(:1)".
// Procedures never qualify, and neither do functions with OUT or IN OUT
// parameters.
func (reg *Registry) FunctionExpr(name string, argc int) (string, error) {
	r, ok := reg.lookup(name)
	if !ok {
		return "", &NotFoundError{Routine: name}
	}
	if r.Kind != Function {
		return "", fmt.Errorf("oraclecall: procedure %s cannot be used in an expression", r.Name)
	}
	for _, p := range r.Params {
		if p.Direction != DirIn {
			return "", fmt.Errorf("oraclecall: function %s has %s parameter %s and cannot be used in an expression",
				r.Name, p.Direction, p.Name)
		}
	}
	if argc != len(r.Params) {
		return "", &MismatchError{
			Routine: r.Name,
			Reason:  fmt.Sprintf("expression call has %d arguments, declaration has %d", argc, len(r.Params)),
		}
	}
	return core.FunctionExpr(normalizeName(r.Name), argc), nil
}

func normalizeName(name string) string {
	return strings.ToUpper(strings.TrimSpace(name))
}
