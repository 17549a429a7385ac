package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	err := Newf("something broke").Build()
	require.Error(t, err)
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.Equal(t, "something broke", err.Error())
}

func TestCategoryMatching(t *testing.T) {
	base := NewStd("cannot open weights")
	err := New(base).Component("detector").Category(CategoryModelLoad).Build()

	assert.True(t, IsCategory(err, CategoryModelLoad))
	assert.False(t, IsCategory(err, CategoryInference))
	assert.Equal(t, CategoryModelLoad, CategoryOf(err))

	// the original error stays reachable through the chain
	assert.True(t, Is(err, base))
}

func TestCategoryMatchingThroughWrapping(t *testing.T) {
	inner := New(NewStd("insert failed")).Category(CategoryDatabase).Build()
	wrapped := Newf("saving record: %w", inner).Build()

	assert.True(t, IsCategory(wrapped, CategoryDatabase))
}

func TestContextCopyIsIsolated(t *testing.T) {
	err := Newf("boom").Context("path", "/tmp/x.jpg").Build()

	ctx := err.GetContext()
	require.NotNil(t, ctx)
	ctx["path"] = "mutated"

	assert.Equal(t, "/tmp/x.jpg", err.GetContext()["path"])
}
