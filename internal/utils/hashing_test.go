package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPromptFingerprint(t *testing.T) {
	a := PromptFingerprint("Translate: Hello")
	assert.Len(t, a, fingerprintLen)
	assert.Equal(t, a, PromptFingerprint("Translate: Hello"))
	assert.NotEqual(t, a, PromptFingerprint("Translate: Hello!"))
	// sha256("") = e3b0c44298fc...
	assert.Equal(t, "e3b0c44298fc", PromptFingerprint(""))
}
