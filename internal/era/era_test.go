package era

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	for in, want := range map[string]Era{
		"RETRO":    Retro,
		"modern":   Modern,
		" Future ": Future,
	} {
		got, err := Parse(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got)
	}

	_, err := Parse("baroque")
	assert.Error(t, err)
	_, err = Parse("")
	assert.Error(t, err)
}

func TestAllOrder(t *testing.T) {
	assert.Equal(t, []Era{Retro, Modern, Future}, All)
}
