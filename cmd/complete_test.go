package cmd

import (
	"testing"

	"github.com/posener/complete/v2/predict"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompletion(t *testing.T) {
	root := Completion()
	require.Len(t, root.Sub, len(Commands))

	export := root.Sub["export"]
	require.NotNil(t, export)
	assert.Equal(t, predict.Set{"md", "html", "xlsx"}, export.Flags["f"])
	assert.Contains(t, export.Flags, "o")

	metrics := root.Sub["metrics"]
	require.NotNil(t, metrics)
	assert.Contains(t, metrics.Flags, "json")
	assert.Contains(t, metrics.Flags, "record")

	assert.Contains(t, root.Flags, "config")
	assert.NotNil(t, root.Sub["topic"].Args)
}

func TestIsCommand(t *testing.T) {
	for _, name := range []string{"series", "metrics", "serve", "help"} {
		assert.True(t, IsCommand(name), name)
	}
	assert.False(t, IsCommand("hello"))
}
