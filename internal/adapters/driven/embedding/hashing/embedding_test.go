package hashing

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func TestNewEmbeddingService_DefaultDimensions(t *testing.T) {
	assert.Equal(t, DefaultDimensions, NewEmbeddingService(0).Dimensions())
	assert.Equal(t, 8, NewEmbeddingService(8).Dimensions())
	assert.Equal(t, ModelName, NewEmbeddingService(8).ModelName())
}

func TestEmbed_Deterministic(t *testing.T) {
	svc := NewEmbeddingService(32)

	a, err := svc.Embed(context.Background(), "Chapter: Intro\n\nWelcome to the book.")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "Chapter: Intro\n\nWelcome to the book.")
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.Len(t, a, 32)
	assert.InDelta(t, 1.0, norm(a), 1e-5)
}

func TestEmbed_CaseAndPunctuationInsensitive(t *testing.T) {
	svc := NewEmbeddingService(32)

	a, err := svc.Embed(context.Background(), "Hello, World!")
	require.NoError(t, err)
	b, err := svc.Embed(context.Background(), "hello world")
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestEmbed_EmptyTextIsZeroVector(t *testing.T) {
	svc := NewEmbeddingService(4)

	vec, err := svc.Embed(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 0, 0}, vec)
}

func TestEmbed_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEmbeddingService(4).Embed(ctx, "text")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEmbedBatch(t *testing.T) {
	svc := NewEmbeddingService(16)

	vecs, err := svc.EmbedBatch(context.Background(), []string{"one", "two", "one"})
	require.NoError(t, err)
	require.Len(t, vecs, 3)
	assert.Equal(t, vecs[0], vecs[2])
	assert.NotEqual(t, vecs[0], vecs[1])
	assert.NoError(t, svc.Ping(context.Background()))
	assert.NoError(t, svc.Close())
}
