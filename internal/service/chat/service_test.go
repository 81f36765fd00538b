package chat_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipelineIsReusedPerVisitor(t *testing.T) {
	svc := newService(t, &fakeReplier{})

	assert.Same(t, svc.Pipeline("v1"), svc.Pipeline("v1"))
	assert.NotSame(t, svc.Pipeline("v1"), svc.Pipeline("v2"))
}

func TestHasProfile(t *testing.T) {
	svc := newService(t, &fakeReplier{})
	ctx := context.Background()

	assert.True(t, svc.HasProfile(ctx, "v1"))
	assert.False(t, svc.HasProfile(ctx, "v2"))
}

func TestLogoutKeepsHistory(t *testing.T) {
	svc := newService(t, &fakeReplier{})
	ctx := context.Background()

	before := svc.Pipeline("v1")
	_, err := before.Send(ctx, "remember this")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, "v1"))

	assert.False(t, svc.HasProfile(ctx, "v1"))
	_, ok := svc.History("v1").CurrentSessionID(ctx)
	assert.False(t, ok)
	assert.Len(t, svc.History("v1").LoadAll(ctx), 1)
	assert.NotSame(t, before, svc.Pipeline("v1"))
}
