package handler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_RegisterAndResolve(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("sum", NewSum()))
	require.NoError(t, r.Register("file_hash", NewFileHash()))

	h, ok := r.Resolve("sum")
	assert.True(t, ok)
	assert.NotNil(t, h)

	_, ok = r.Resolve("unknown_task")
	assert.False(t, ok)
}

func TestRegistry_Names_Sorted(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("sum", NewSum()))
	require.NoError(t, r.Register("file_hash", NewFileHash()))

	assert.Equal(t, []string{"file_hash", "sum"}, r.Names())
}

func TestRegistry_Register_Invalid(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register("sum", NewSum()))

	assert.Error(t, r.Register("sum", NewSum()), "duplicate registration must fail")
	assert.Error(t, r.Register("", NewSum()))
	assert.Error(t, r.Register("nil_handler", nil))
}

func TestRegistry_MustRegister_PanicsOnDuplicate(t *testing.T) {
	r := NewRegistry()
	r.MustRegister("sum", NewSum())
	assert.Panics(t, func() { r.MustRegister("sum", NewSum()) })
}
