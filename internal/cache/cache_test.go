package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNopAlwaysMisses(t *testing.T) {
	ctx := context.Background()
	var c Cache = Nop{}

	assert.NoError(t, c.SetJSON(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var dst map[string]int
	assert.ErrorIs(t, c.GetJSON(ctx, "k", &dst), ErrMiss)
	assert.Nil(t, dst)
	assert.NoError(t, c.Delete(ctx, "k"))
}

func TestNewRedisUnreachable(t *testing.T) {
	_, err := NewRedis("127.0.0.1:1", "", 0)
	assert.Error(t, err)
}
