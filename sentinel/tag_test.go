package sentinel

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTagString(t *testing.T) {
	assert.Equal(t, "Discarded", Discarded.String())
	assert.Equal(t, "QueueBranch", QueueBranch.String())
	assert.Equal(t, "Delivered", Delivered.String())
	assert.Contains(t, Tag(99).String(), "Tag(99)")
}
