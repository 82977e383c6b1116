package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	assert.NotEqual(t, a, b)

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
}

func TestIDOrNew(t *testing.T) {
	assert.Equal(t, "f-onion", IDOrNew(" f-onion "))

	generated := IDOrNew("  ")
	_, err := uuid.Parse(generated)
	assert.NoError(t, err)
}
