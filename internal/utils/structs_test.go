package utils

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	ID       string `db:"id"`
	Name     string `db:"name"`
	Skipped  string `db:"-"`
	Untagged string
	hidden   string `db:"hidden"`
}

func TestStructTagValues(t *testing.T) {
	assert.Equal(t, []string{"id", "name"}, StructTagValues(sample{}))
	assert.Equal(t, []string{"id", "name"}, StructTagValues(&sample{}))
}

func TestStructToMap(t *testing.T) {
	s := &sample{ID: "abc", Name: "donor", hidden: "x"}

	assert.Equal(t, map[string]any{"id": "abc", "name": "donor"}, StructToMap(s))
	assert.Equal(t, map[string]any{"name": "donor"}, StructToMap(s, "id"))
}

func TestStructTagValues_PanicsOnNonStruct(t *testing.T) {
	assert.Panics(t, func() { StructTagValues(42) })
	assert.Panics(t, func() { StructToMap(nil) })
}

func TestErrorWrapOrNil(t *testing.T) {
	assert.NoError(t, ErrorWrapOrNil(nil, "ignored"))

	base := errors.New("boom")
	assert.Same(t, base, ErrorWrapOrNil(base, ""))

	wrapped := ErrorWrapOrNil(base, "failed to save")
	assert.EqualError(t, wrapped, "failed to save: boom")
	assert.ErrorIs(t, wrapped, base)
}

func TestNilIfBlank(t *testing.T) {
	assert.Nil(t, NilIfBlank("   "))
	assert.Equal(t, "Cebu", *NilIfBlank(" Cebu "))
}

func TestNanoID(t *testing.T) {
	id := NanoID()
	assert.Len(t, id, NanoidSize)
	assert.NotEqual(t, id, NanoID())
	assert.Len(t, NanoIDSize(8), 8)
}
