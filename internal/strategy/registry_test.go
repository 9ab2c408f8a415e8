package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryResolvesBuiltins(t *testing.T) {
	r := NewRegistry()

	for _, name := range []string{"standard", "minmax", ""} {
		factory, err := r.Scaler(name)
		require.NoError(t, err, name)
		assert.NotNil(t, factory())
	}
	for _, name := range []string{"ols", "ridge", ""} {
		factory, err := r.Model(name)
		require.NoError(t, err, name)
		assert.NotNil(t, factory())
	}
}

func TestRegistryFactoriesReturnFreshInstances(t *testing.T) {
	r := NewRegistry()
	factory, err := r.Model("ols")
	require.NoError(t, err)
	assert.NotSame(t, factory(), factory())
}

func TestRegistryUnknownNames(t *testing.T) {
	r := NewRegistry()
	_, err := r.Scaler("robust")
	assert.Error(t, err)
	_, err = r.Model("xgboost")
	assert.Error(t, err)
}

func TestRegistryRemoteRequiresEndpoint(t *testing.T) {
	_, err := NewRegistry().Model("remote")
	assert.Error(t, err)

	r := NewRegistry(WithRemote("http://models:9000", 5*time.Second))
	factory, err := r.Model("remote")
	require.NoError(t, err)
	assert.NotNil(t, factory())
}
