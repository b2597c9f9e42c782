package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	for _, c := range Categories {
		got, err := ParseCategory(string(c))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	got, err := ParseCategory(" School ")
	require.NoError(t, err)
	assert.Equal(t, CategorySchool, got)

	_, err = ParseCategory("work")
	assert.Error(t, err)
	_, err = ParseCategory("")
	assert.Error(t, err)
}

func TestCategoryLabel(t *testing.T) {
	assert.Equal(t, "School", CategorySchool.Label())
	assert.Equal(t, "Hobby", CategoryHobby.Label())
	assert.Equal(t, "Free time", CategoryFreeTime.Label())
}
