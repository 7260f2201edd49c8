// Package testutil provides test helpers for opsy (e.g. MockOperation).
package testutil

import (
	"context"
	"sync"

	"github.com/skosovsky/opsy"
)

// MockOperation is a configurable operation for tests. It records the validated
// values of every call that reached its handler.
type MockOperation[C any] struct {
	NameVal   string
	DescVal   string
	Fields    []opsy.Field
	Result    any
	Err       error
	ExecuteFn opsy.Handler[C]
	Options   []opsy.OperationOption

	mu    sync.Mutex
	calls []opsy.Values
}

// Name returns the operation name.
func (m *MockOperation[C]) Name() string {
	if m.NameVal != "" {
		return m.NameVal
	}
	return "mock"
}

// Operation builds the opsy operation backed by the mock.
func (m *MockOperation[C]) Operation() (*opsy.Operation[C], error) {
	schema, err := opsy.NewSchema(m.Name(), m.Fields...)
	if err != nil {
		return nil, err
	}
	return opsy.NewDynamicOperation(schema, m.DescVal, m.execute, m.Options...)
}

// execute records the call and runs ExecuteFn if set, otherwise returns Result and Err.
func (m *MockOperation[C]) execute(ctx context.Context, client C, args opsy.Values) (any, error) {
	m.mu.Lock()
	m.calls = append(m.calls, args)
	m.mu.Unlock()
	if m.ExecuteFn != nil {
		return m.ExecuteFn(ctx, client, args)
	}
	return m.Result, m.Err
}

// Calls returns the validated values of each call, in call order.
func (m *MockOperation[C]) Calls() []opsy.Values {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]opsy.Values(nil), m.calls...)
}

// CallCount returns how many calls reached the handler.
func (m *MockOperation[C]) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
