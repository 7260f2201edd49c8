package opsy

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deleteServerArgs struct {
	ServerID           int
	DestroyServerDisks bool
}

func bindDeleteServer(v Values) deleteServerArgs {
	return deleteServerArgs{
		ServerID:           v.Int("server_id"),
		DestroyServerDisks: v.Bool("destroy_server_disks"),
	}
}

var deleteServerSchema = MustSchema("delete_server",
	Required("server_id", Int),
	WithDefault("destroy_server_disks", Bool, true),
)

func TestNewOperation_TypedRecord(t *testing.T) {
	var got deleteServerArgs
	op, err := NewOperation(deleteServerSchema, "Delete a server", bindDeleteServer,
		func(_ context.Context, _ *testAPI, args deleteServerArgs) (any, error) {
			got = args
			return "deleted", nil
		}, WithDangerous())
	require.NoError(t, err)
	assert.Equal(t, "delete_server", op.Name())
	assert.Equal(t, "Delete a server", op.Description())
	assert.Same(t, deleteServerSchema, op.Schema())
	assert.True(t, op.IsDangerous())

	reg := NewRegistry[*testAPI]()
	require.NoError(t, reg.Register(op))

	res, err := reg.Execute(context.Background(), "delete_server", Args{"server_id": 9}, &testAPI{})
	require.NoError(t, err)
	assert.Equal(t, "deleted", res)
	assert.Equal(t, deleteServerArgs{ServerID: 9, DestroyServerDisks: true}, got)

	_, err = reg.Execute(context.Background(), "delete_server",
		Args{"server_id": 9, "destroy_server_disks": false}, &testAPI{})
	require.NoError(t, err)
	assert.False(t, got.DestroyServerDisks)
}

func TestNewOperation_BindNotCalledOnInvalidInput(t *testing.T) {
	bound := false
	op, err := NewOperation(deleteServerSchema, "d",
		func(v Values) deleteServerArgs {
			bound = true
			return bindDeleteServer(v)
		},
		func(context.Context, *testAPI, deleteServerArgs) (any, error) { return nil, nil })
	require.NoError(t, err)
	reg := NewRegistry[*testAPI]()
	require.NoError(t, reg.Register(op))

	_, err = reg.Execute(context.Background(), "delete_server", Args{"server_id": true}, &testAPI{})
	assert.ErrorIs(t, err, ErrTypeMismatch)
	assert.False(t, bound)
}

func TestNewOperation_ConfigErrors(t *testing.T) {
	handler := func(context.Context, *testAPI, deleteServerArgs) (any, error) { return nil, nil }

	_, err := NewOperation[*testAPI](deleteServerSchema, "d", nil, handler)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewOperation[*testAPI, deleteServerArgs](deleteServerSchema, "d", bindDeleteServer, nil)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewOperation(nil, "d", bindDeleteServer, handler)
	assert.ErrorIs(t, err, ErrConfiguration)

	_, err = NewDynamicOperation[*testAPI](deleteServerSchema, "d", nil)
	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "delete_server", ce.Operation)
}

func TestOperation_Help(t *testing.T) {
	op, err := NewDynamicOperation(deleteServerSchema, "d", noopHandler)
	require.NoError(t, err)
	assert.Equal(t, "To perform the 'delete_server' operation, you must specify the following arguments:\n"+
		"- server_id: int\n"+
		"- destroy_server_disks: bool (optional)", op.Help())
	assert.Equal(t, op.Help(), FormatHelp(op.Schema()))
}

func TestOperation_ImplementsOperationInfo(t *testing.T) {
	op, err := NewDynamicOperation(deleteServerSchema, "d", noopHandler)
	require.NoError(t, err)
	var _ OperationInfo = op
}
