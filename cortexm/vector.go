// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package cortexm

import (
	"fmt"
	"iter"
)

// Binding binds a handler to an exception.
type Binding struct {
	Exception Exception
	Handler   Handler
}

// VectorTable is the immutable exception vector table.
//
// The table is never called by software. It is handed to a Linker, which
// places it where the exception controller reads it.
type VectorTable struct {
	entry [VECTOR_COUNT]Handler
}

// NewVectorTable builds a table from bindings. Unbound vectors are empty.
// Binding a reserved vector, a nil handler, or the same vector twice, is an
// error.
func NewVectorTable(bindings ...Binding) (vt *VectorTable, err error) {
	table := &VectorTable{}
	for _, b := range bindings {
		if !b.Exception.Valid() {
			err = fmt.Errorf("%w: %d", ErrVectorRange, int(b.Exception))
			return
		}
		if b.Exception.Reserved() {
			err = fmt.Errorf("%w: %d", ErrVectorReserved, int(b.Exception))
			return
		}
		if b.Handler == nil {
			err = fmt.Errorf("%w: %v", ErrHandlerNil, b.Exception)
			return
		}
		if table.entry[b.Exception] != nil {
			err = fmt.Errorf("%w: %v", ErrVectorDuplicate, b.Exception)
			return
		}
		table.entry[b.Exception] = b.Handler
	}

	vt = table
	return
}

// DefaultVectorTable binds every non-reserved vector to handler.
func DefaultVectorTable(handler Handler) *VectorTable {
	vt := &VectorTable{}
	for n := range vt.entry {
		if !Exception(n).Reserved() {
			vt.entry[n] = handler
		}
	}
	return vt
}

// Handler returns the handler bound to e, or nil if the vector is empty.
func (vt *VectorTable) Handler(e Exception) Handler {
	if vt == nil || !e.Valid() {
		return nil
	}
	return vt.entry[e]
}

// All yields every vector in table order, including the empty ones.
func (vt *VectorTable) All() iter.Seq2[Exception, Handler] {
	return func(yield func(Exception, Handler) bool) {
		for n := range VECTOR_COUNT {
			if !yield(Exception(n), vt.Handler(Exception(n))) {
				return
			}
		}
	}
}

// Bound returns the number of non-empty vectors.
func (vt *VectorTable) Bound() (count int) {
	for _, h := range vt.All() {
		if h != nil {
			count++
		}
	}
	return
}
