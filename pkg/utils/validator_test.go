package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("c9a2c3c8-5b1e-4d7a-9f3b-2f6f8f1a9e01"))
	assert.Error(t, ValidateID("not-a-uuid"))
	assert.Error(t, ValidateID(""))
}

func TestValidateRole(t *testing.T) {
	assert.NoError(t, ValidateRole("user"))
	assert.NoError(t, ValidateRole("assistant"))
	assert.Error(t, ValidateRole("system"))
	assert.Error(t, ValidateRole(""))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("he\x00llo"))
	assert.Equal(t, "line1\nline2\ttabbed", SanitizeString("line1\nline2\ttabbed"))
	assert.Equal(t, "", SanitizeString("\x01\x02\x7f"))
}
