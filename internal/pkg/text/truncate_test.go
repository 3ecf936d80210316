package text

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 10))
	assert.Equal(t, "abc...", Truncate("abcdef", 3))
	assert.Equal(t, "abcdef", Truncate("abcdef", 0))
	// "单位" is 6 bytes; cutting at 4 must back off to the rune boundary at 3.
	assert.Equal(t, "单...", Truncate("单位", 4))
}
