package testutil

import (
	"testing"

	"github.com/skosovsky/opsy"
)

// NewTestRegistry returns a Registry with panic recovery enabled and the mocks
// registered. Any configuration error fails the test immediately.
func NewTestRegistry[C any](t testing.TB, mocks ...*MockOperation[C]) *opsy.Registry[C] {
	t.Helper()
	reg := opsy.NewRegistry[C]()
	reg.Use(opsy.WithRecovery[C]())
	for _, m := range mocks {
		op, err := m.Operation()
		if err != nil {
			t.Fatalf("testutil: build %s: %v", m.Name(), err)
		}
		if err := reg.Register(op); err != nil {
			t.Fatalf("testutil: register %s: %v", m.Name(), err)
		}
	}
	return reg
}

// NewTestDispatcher is NewTestRegistry bound to the zero collaborator.
func NewTestDispatcher(t testing.TB, mocks ...*MockOperation[struct{}]) opsy.Dispatcher {
	t.Helper()
	return NewTestRegistry(t, mocks...).Bind(struct{}{})
}
