package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/finalyzer/support/backend/internal/logging"
	"github.com/finalyzer/support/backend/internal/model/profile"
	"github.com/finalyzer/support/backend/internal/service/reply"
)

type fakeChatModel struct {
	content string
	err     error
	input   []*schema.Message
}

func (f *fakeChatModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.content, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	f.input = input
	if f.err != nil {
		return nil, f.err
	}
	return schema.StreamReaderFromArray([]*schema.Message{schema.AssistantMessage(f.content, nil)}), nil
}

func TestReplyAccepted(t *testing.T) {
	fake := &fakeChatModel{content: "We support PDF and XLSX."}
	svc, err := newService(context.Background(), fake, logging.Discard())
	require.NoError(t, err)

	p := &profile.UserProfile{Name: "Ada", Industry: "Finance"}
	result := svc.Reply(context.Background(), "What formats?", p)

	assert.True(t, result.Accepted())
	assert.Equal(t, "We support PDF and XLSX.", result.Text)
	require.Len(t, fake.input, 2)
	assert.Contains(t, fake.input[0].Content, "Name: Ada")
	assert.Equal(t, "What formats?", fake.input[1].Content)
}

func TestReplyModelFailure(t *testing.T) {
	svc, err := newService(context.Background(), &fakeChatModel{err: errors.New("quota exceeded")}, logging.Discard())
	require.NoError(t, err)

	result := svc.Reply(context.Background(), "hi", nil)
	assert.False(t, result.Accepted())
	assert.Equal(t, reply.ConnectivityText, result.Text)
}

func TestReplyEmptyContent(t *testing.T) {
	svc, err := newService(context.Background(), &fakeChatModel{content: "  "}, logging.Discard())
	require.NoError(t, err)

	result := svc.Reply(context.Background(), "hi", nil)
	assert.Equal(t, reply.FallbackText, result.Text)
}

func TestBuildSystemPrompt(t *testing.T) {
	assert.Equal(t, basePrompt, BuildSystemPrompt(nil))

	prompt := BuildSystemPrompt(&profile.UserProfile{Name: "Ada", Organization: "AE"})
	assert.Contains(t, prompt, "- Name: Ada")
	assert.Contains(t, prompt, "- Organization: AE")
	assert.NotContains(t, prompt, "Email:")
}
