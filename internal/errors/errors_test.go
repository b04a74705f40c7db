package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderDefaults(t *testing.T) {
	t.Parallel()

	err := Newf("something broke").Build()
	assert.Equal(t, ComponentUnknown, err.Component)
	assert.Equal(t, CategoryGeneric, err.Category)
	assert.False(t, err.Timestamp.IsZero())
	assert.Equal(t, "something broke", err.Error())
}

func TestBuilderMetadata(t *testing.T) {
	t.Parallel()

	err := Newf("query failed").
		Component("datastore").
		Category(CategoryDatabase).
		Context("table", "incidents").
		Build()

	assert.Equal(t, "datastore", err.Component)
	assert.Equal(t, CategoryDatabase, err.Category)
	assert.Equal(t, "incidents", err.GetContext()["table"])

	// The returned context is a copy
	err.GetContext()["table"] = "mutated"
	assert.Equal(t, "incidents", err.GetContext()["table"])
}

func TestUnwrapPreservesCause(t *testing.T) {
	t.Parallel()

	cause := fmt.Errorf("disk full")
	err := New(fmt.Errorf("saving record: %w", cause)).
		Category(CategoryDatabase).
		Build()

	assert.ErrorIs(t, err, cause)
}

func TestGetCategory(t *testing.T) {
	t.Parallel()

	err := Newf("bad input").Category(CategoryValidation).Build()
	assert.Equal(t, CategoryValidation, GetCategory(err))

	wrapped := fmt.Errorf("handler: %w", err)
	assert.Equal(t, CategoryValidation, GetCategory(wrapped))

	assert.Equal(t, CategoryGeneric, GetCategory(fmt.Errorf("plain")))
}

func TestCategoryMatching(t *testing.T) {
	t.Parallel()

	a := Newf("a").Category(CategoryNotification).Build()
	b := Newf("b").Category(CategoryNotification).Build()
	c := Newf("c").Category(CategoryDatabase).Build()

	require.ErrorIs(t, a, b)
	assert.NotErrorIs(t, a, c)
}
