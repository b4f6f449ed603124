package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/feichai0017/concept-graph/pkg/logger"
)

func TestDisabledCacheNoOps(t *testing.T) {
	c := New(nil, logger.NewTestLogger())
	ctx := context.Background()

	assert.False(t, c.Enabled())

	// every operation must be a silent no-op
	var out map[string]string
	assert.False(t, c.GetJSON(ctx, "some:key", &out))
	c.SetJSON(ctx, "some:key", map[string]string{"a": "b"}, time.Minute)
	c.DeleteByPattern(ctx, "*:subject:sub-1*")
	c.InvalidateSubject(ctx, "sub-1")
	assert.NoError(t, c.Close())
}

func TestDisabledCacheWithEmptyAddr(t *testing.T) {
	c := New(&Config{Addr: ""}, logger.NewTestLogger())
	assert.False(t, c.Enabled())
}

func TestSubjectGraphKey(t *testing.T) {
	key := SubjectGraphKey("sub-42")
	assert.Equal(t, "graph:subject:sub-42", key)
}
