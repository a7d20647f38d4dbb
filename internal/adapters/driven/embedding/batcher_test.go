package embedding

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/ragkit/internal/core/domain"
)

// mockService records inputs and returns a deterministic embedding
// derived from the text length, so ordering bugs are visible.
type mockService struct {
	mu       sync.Mutex
	inputs   []string
	embedErr error
	maxSeen  int // highest number of concurrent embeds observed
	inFlight int
}

func (m *mockService) Embed(_ context.Context, text string) ([]float32, error) {
	m.mu.Lock()
	m.inFlight++
	if m.inFlight > m.maxSeen {
		m.maxSeen = m.inFlight
	}
	m.inputs = append(m.inputs, text)
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.inFlight--
		m.mu.Unlock()
	}()

	if m.embedErr != nil {
		return nil, m.embedErr
	}
	return []float32{float32(len(text)), 0}, nil
}

func (m *mockService) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		e, err := m.Embed(ctx, t)
		if err != nil {
			return nil, err
		}
		out[i] = e
	}
	return out, nil
}

func (m *mockService) Dimensions() int { return 2 }

func (m *mockService) ModelName() string { return "mock-embed" }

func (m *mockService) Ping(_ context.Context) error { return nil }

func (m *mockService) Close() error { return nil }

func TestBatcher_PreservesOrder(t *testing.T) {
	mock := &mockService{}
	b := NewBatcher(mock, WithBatchSize(2), WithRate(1000, 1000))

	texts := []string{"a", "bb", "ccc", "dddd", "eeeee"}
	out, err := b.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	require.Len(t, out, len(texts))

	for i, text := range texts {
		assert.Equal(t, float32(len(text)), out[i][0], "embedding %d out of order", i)
	}
}

func TestBatcher_EmptyInput(t *testing.T) {
	b := NewBatcher(&mockService{})

	out, err := b.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, out)
}

func TestBatcher_TruncatesLongInput(t *testing.T) {
	mock := &mockService{}
	b := NewBatcher(mock, WithMaxInputLength(50), WithRate(1000, 1000))

	long := strings.Repeat("word ", 100)
	_, err := b.Embed(context.Background(), long)
	require.NoError(t, err)

	require.Len(t, mock.inputs, 1)
	assert.LessOrEqual(t, len(mock.inputs[0]), 50)
}

func TestBatcher_BoundedConcurrency(t *testing.T) {
	mock := &mockService{}
	b := NewBatcher(mock, WithBatchSize(20), WithConcurrency(3), WithRate(1000, 1000))

	texts := make([]string, 20)
	for i := range texts {
		texts[i] = strings.Repeat("x", i+1)
	}

	_, err := b.EmbedBatch(context.Background(), texts)
	require.NoError(t, err)
	assert.LessOrEqual(t, mock.maxSeen, 3)
}

func TestBatcher_WrapsProviderError(t *testing.T) {
	mock := &mockService{embedErr: errors.New("401 unauthorized")}
	b := NewBatcher(mock, WithRate(1000, 1000))

	_, err := b.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrEmbedding)
	assert.Contains(t, err.Error(), "401 unauthorized")
}

func TestBatcher_CancelledBetweenBatches(t *testing.T) {
	mock := &mockService{}
	b := NewBatcher(mock, WithBatchSize(1), WithRate(1000, 1000))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := b.EmbedBatch(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBatcher_Delegation(t *testing.T) {
	mock := &mockService{}
	b := NewBatcher(mock)

	assert.Equal(t, 2, b.Dimensions())
	assert.Equal(t, "mock-embed", b.ModelName())
	assert.NoError(t, b.Ping(context.Background()))
	assert.NoError(t, b.Close())
}
