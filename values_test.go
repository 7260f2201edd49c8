package opsy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValues_Accessors(t *testing.T) {
	t.Parallel()
	schema := MustSchema("op",
		Required("id", Int),
		Required("name", String),
		Required("flag", Bool),
		Required("ids", ListOf(Int)),
		Required("tags", ListOf(String)),
		Required("os", osVersions.Type()),
	)
	v, err := Validate(schema, Args{
		"id":   7,
		"name": "web",
		"flag": true,
		"ids":  []any{1.0, 2.0},
		"tags": []any{"a", "b"},
		"os":   "ubuntu-22.04",
	})
	require.NoError(t, err)

	assert.Same(t, schema, v.Schema())
	assert.Equal(t, []string{"id", "name", "flag", "ids", "tags", "os"}, v.Names())
	assert.Equal(t, 7, v.Int("id"))
	assert.Equal(t, "web", v.String("name"))
	assert.True(t, v.Bool("flag"))
	assert.Equal(t, []int{1, 2}, v.Ints("ids"))
	assert.Equal(t, []string{"a", "b"}, v.Strings("tags"))
	assert.Equal(t, osVersion("ubuntu-22.04"), EnumValue[osVersion](v, "os"))

	got, ok := v.Get("name")
	require.True(t, ok)
	assert.Equal(t, "web", got)
}

func TestValues_WrongTypeOrUnknownIsZero(t *testing.T) {
	t.Parallel()
	v, err := Validate(MustSchema("op", Required("name", String)), Args{"name": "x"})
	require.NoError(t, err)
	assert.Zero(t, v.Int("name"))
	assert.False(t, v.Bool("name"))
	assert.Empty(t, v.String("missing"))
	assert.Nil(t, v.Ints("name"))
	assert.Empty(t, EnumValue[osVersion](v, "name"))
}

func TestValues_Optional(t *testing.T) {
	t.Parallel()
	schema := MustSchema("op",
		Optional("n", Int),
		Optional("s", String),
		Optional("b", Bool),
		Optional("os", osVersions.Type()),
	)
	v, err := Validate(schema, Args{})
	require.NoError(t, err)
	assert.Nil(t, v.OptionalInt("n"))
	assert.Nil(t, v.OptionalString("s"))
	assert.Nil(t, v.OptionalBool("b"))
	assert.Nil(t, OptionalEnum[osVersion](v, "os"))

	v, err = Validate(schema, Args{"n": 0, "s": "", "b": false, "os": "ubuntu-20.04"})
	require.NoError(t, err)
	require.NotNil(t, v.OptionalInt("n"))
	assert.Equal(t, 0, *v.OptionalInt("n"))
	require.NotNil(t, v.OptionalString("s"))
	assert.Empty(t, *v.OptionalString("s"))
	require.NotNil(t, v.OptionalBool("b"))
	assert.False(t, *v.OptionalBool("b"))
	require.NotNil(t, OptionalEnum[osVersion](v, "os"))
	assert.Equal(t, osVersion("ubuntu-20.04"), *OptionalEnum[osVersion](v, "os"))
}

func TestValues_CopiesAreIndependent(t *testing.T) {
	t.Parallel()
	v, err := Validate(MustSchema("op", Required("ids", ListOf(Int))), Args{"ids": []int{1, 2}})
	require.NoError(t, err)
	ids := v.Ints("ids")
	ids[0] = 99
	assert.Equal(t, []int{1, 2}, v.Ints("ids"))

	m := v.Map()
	m["ids"] = nil
	assert.Equal(t, []int{1, 2}, v.Ints("ids"))
}

func TestValues_Zero(t *testing.T) {
	t.Parallel()
	var v Values
	assert.Nil(t, v.Names())
	assert.Nil(t, v.Schema())
	_, ok := v.Get("x")
	assert.False(t, ok)
	assert.Empty(t, v.Map())
}
