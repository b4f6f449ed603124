package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feichai0017/concept-graph/pkg/logger"
)

type stubProvider struct {
	name   string
	answer string
	err    error
	calls  int
}

func (s *stubProvider) Ask(ctx context.Context, prompt string) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.answer, nil
}

func (s *stubProvider) Name() string { return s.name }

func TestFallbackUsesPrimaryFirst(t *testing.T) {
	primary := &stubProvider{name: "primary", answer: "from primary"}
	secondary := &stubProvider{name: "secondary", answer: "from secondary"}

	chain, err := Fallback(logger.NewTestLogger(), primary, secondary)
	require.NoError(t, err)

	answer, err := chain.Ask(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "from primary", answer)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 0, secondary.calls)
}

func TestFallbackWalksChainInOrder(t *testing.T) {
	primary := &stubProvider{name: "primary", err: errors.New("quota exceeded")}
	secondary := &stubProvider{name: "secondary", answer: "from secondary"}

	chain, err := Fallback(logger.NewTestLogger(), primary, secondary)
	require.NoError(t, err)

	answer, err := chain.Ask(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, "from secondary", answer)
	assert.Equal(t, 1, primary.calls)
	assert.Equal(t, 1, secondary.calls)
}

func TestFallbackReturnsLastError(t *testing.T) {
	first := &stubProvider{name: "first", err: errors.New("boom one")}
	second := &stubProvider{name: "second", err: errors.New("boom two")}

	chain, err := Fallback(logger.NewTestLogger(), first, second)
	require.NoError(t, err)

	_, err = chain.Ask(context.Background(), "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom two")
}

func TestFallbackRequiresProviders(t *testing.T) {
	_, err := Fallback(logger.NewTestLogger())
	assert.Error(t, err)
}

func TestFallbackStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	first := &stubProvider{name: "first", err: errors.New("boom")}
	second := &stubProvider{name: "second", answer: "never reached"}

	chain, err := Fallback(logger.NewTestLogger(), first, second)
	require.NoError(t, err)

	cancel()
	_, err = chain.Ask(ctx, "hello")
	require.Error(t, err)
	assert.Equal(t, 0, second.calls)
}
