// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package board

import (
	"fmt"
	"iter"
	"math"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
	"gopkg.in/yaml.v3"
)

// Expr is a numeric Starlark expression, such as "PERIPH_BASE + 0x1000".
type Expr string

// UnmarshalYAML accepts any scalar, so plain YAML integers are expressions too.
func (x *Expr) UnmarshalYAML(node *yaml.Node) (err error) {
	if node.Kind != yaml.ScalarNode {
		err = fmt.Errorf("%w: line %d: not a scalar", ErrExpression, node.Line)
		return
	}
	*x = Expr(node.Value)
	return
}

// Equates are named values in definition order.
type Equates struct {
	names  []string
	values map[string]uint32
}

// Define appends or replaces an equate.
func (eq *Equates) Define(name string, value uint32) {
	if eq.values == nil {
		eq.values = map[string]uint32{}
	}
	if _, ok := eq.values[name]; !ok {
		eq.names = append(eq.names, name)
	}
	eq.values[name] = value
}

// Value returns the equate called name.
func (eq *Equates) Value(name string) (value uint32, ok bool) {
	value, ok = eq.values[name]
	return
}

// All yields the equates in definition order.
func (eq *Equates) All() iter.Seq2[string, uint32] {
	return func(yield func(string, uint32) bool) {
		for _, name := range eq.names {
			if !yield(name, eq.values[name]) {
				return
			}
		}
	}
}

// Eval evaluates x with the equates predeclared. An empty expression is 0.
func (x Expr) Eval(eq *Equates) (value uint32, err error) {
	expr := strings.TrimSpace(string(x))
	if len(expr) == 0 {
		return
	}

	thread := starlark.Thread{Name: "board"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for name, v := range eq.All() {
		pred[name] = starlark.MakeUint64(uint64(v))
	}

	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = fmt.Errorf("%w: %q: %w", ErrExpression, expr, err)
		return
	}

	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = fmt.Errorf("%w: %q: not an integer", ErrExpression, expr)
		return
	}
	st_uint64, ok := st_int.Uint64()
	if !ok || st_uint64 > math.MaxUint32 {
		err = fmt.Errorf("%w: %q = %v", ErrValueRange, expr, st_int)
		return
	}

	value = uint32(st_uint64)
	return
}

// parseEquates evaluates a YAML mapping of name to expression, in order.
// Each equate may refer to the ones before it.
func parseEquates(node *yaml.Node) (eq *Equates, err error) {
	eq = &Equates{}
	if node.Kind == 0 {
		return
	}
	if node.Kind != yaml.MappingNode {
		err = fmt.Errorf("%w: line %d", ErrEquates, node.Line)
		return
	}

	for n := 0; n+1 < len(node.Content); n += 2 {
		name := node.Content[n].Value
		var value uint32
		value, err = Expr(node.Content[n+1].Value).Eval(eq)
		if err != nil {
			err = fmt.Errorf("%v: %w", name, err)
			return
		}
		eq.Define(name, value)
	}
	return
}
