package testutil

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/skosovsky/opsy"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMockOperation(t *testing.T) {
	m := &MockOperation[struct{}]{
		NameVal: "list_servers",
		DescVal: "For tests",
		Fields:  []opsy.Field{opsy.Required("environment_id", opsy.Int)},
		Result:  []string{"web-1"},
	}
	op, err := m.Operation()
	require.NoError(t, err)
	assert.Equal(t, "list_servers", op.Name())
	assert.Equal(t, "For tests", op.Description())

	reg := NewTestRegistry(t, m)
	res, err := reg.Execute(context.Background(), "list_servers", opsy.Args{"environment_id": 4}, struct{}{})
	require.NoError(t, err)
	assert.Equal(t, []string{"web-1"}, res)
	require.Equal(t, 1, m.CallCount())
	assert.Equal(t, 4, m.Calls()[0].Int("environment_id"))

	_, err = reg.Execute(context.Background(), "list_servers", opsy.Args{}, struct{}{})
	assert.ErrorIs(t, err, opsy.ErrMissingArgument)
	assert.Equal(t, 1, m.CallCount())
}

func TestMockOperation_DefaultName(t *testing.T) {
	m := &MockOperation[struct{}]{Err: errors.New("boom")}
	assert.Equal(t, "mock", m.Name())
	d := NewTestDispatcher(t, m)
	assert.Equal(t, []string{"mock"}, d.Names())
	_, err := d.Execute(context.Background(), "mock", nil)
	require.EqualError(t, err, "boom")
}

func TestNewTestRegistry_RecoversPanics(t *testing.T) {
	m := &MockOperation[struct{}]{
		NameVal: "explode",
		ExecuteFn: func(context.Context, struct{}, opsy.Values) (any, error) {
			panic("kaboom")
		},
	}
	reg := NewTestRegistry(t, m)
	_, err := reg.Execute(context.Background(), "explode", nil, struct{}{})
	require.Error(t, err)
	assert.True(t, opsy.IsSystemError(err))
}
