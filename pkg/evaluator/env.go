package evaluator

import (
	"fmt"
	"sort"

	"github.com/thomasrohde/taco/pkg/diagnostics"
	"github.com/thomasrohde/taco/pkg/token"
)

// Env is a scoped environment for variable bindings.
// Lookups and assignments walk the parent chain outward.
type Env struct {
	bindings map[string]Value
	parent   *Env
}

// NewEnv creates a new environment with an optional parent scope.
func NewEnv(parent *Env) *Env {
	return &Env{
		bindings: make(map[string]Value),
		parent:   parent,
	}
}

// Child creates a new child scope whose parent is this environment.
func (e *Env) Child() *Env {
	return NewEnv(e)
}

// Define binds name in this scope, replacing any binding it already has.
func (e *Env) Define(name string, val Value) {
	e.bindings[name] = val
}

// Assign rebinds name in the nearest scope that defines it.
func (e *Env) Assign(name token.Token, val Value) error {
	for env := e; env != nil; env = env.parent {
		if _, ok := env.bindings[name.Lexeme]; ok {
			env.bindings[name.Lexeme] = val
			return nil
		}
	}
	return undefined(name)
}

// Get resolves name through the scope chain.
func (e *Env) Get(name token.Token) (Value, error) {
	if val, ok := e.Lookup(name.Lexeme); ok {
		return val, nil
	}
	return nil, undefined(name)
}

// Lookup is Get by plain name.
func (e *Env) Lookup(name string) (Value, bool) {
	for env := e; env != nil; env = env.parent {
		if val, ok := env.bindings[name]; ok {
			return val, true
		}
	}
	return nil, false
}

// Has checks whether a variable is defined in this scope or any parent.
func (e *Env) Has(name string) bool {
	_, ok := e.Lookup(name)
	return ok
}

// Names returns the names bound directly in this scope, sorted.
func (e *Env) Names() []string {
	names := make([]string, 0, len(e.bindings))
	for name := range e.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func undefined(name token.Token) *RuntimeError {
	return &RuntimeError{
		Code:    diagnostics.EUndefined,
		Token:   name,
		Message: fmt.Sprintf("Undefined variable '%s'.", name.Lexeme),
	}
}
