package docker

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFromName(t *testing.T) {
	t.Parallel()

	c := FromName("existing-container")
	require.Equal(t, "existing-container", c.Name())
}
