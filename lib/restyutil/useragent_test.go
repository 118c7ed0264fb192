package restyutil

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandomUserAgent(t *testing.T) {
	for i := 0; i < 32; i++ {
		ua := RandomUserAgent()
		require.True(t, strings.HasPrefix(ua, "Mozilla/5.0"), ua)
	}
}
