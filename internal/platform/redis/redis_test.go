package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJoinKey(t *testing.T) {
	assert.Equal(t, "contest:entry", JoinKey("contest", "entry"))
	assert.Equal(t, "entry:e1", JoinKey("", "entry", "e1"))
	assert.Equal(t, "contest", JoinKey("contest"))
}
