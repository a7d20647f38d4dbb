package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueryOptionsNormalise(t *testing.T) {
	t.Run("zero values take defaults", func(t *testing.T) {
		got := QueryOptions{}.Normalise()
		assert.Equal(t, DefaultTopK, got.TopK)
		assert.Equal(t, float64(DefaultMinSimilarity), got.MinSimilarity)
		assert.Equal(t, DefaultMaxContextLength, got.MaxContextLength)
	})

	t.Run("explicit values survive", func(t *testing.T) {
		got := QueryOptions{TopK: 10, MinSimilarity: 0.8, MaxContextLength: 100}.Normalise()
		assert.Equal(t, 10, got.TopK)
		assert.Equal(t, 0.8, got.MinSimilarity)
		assert.Equal(t, 100, got.MaxContextLength)
	})

	t.Run("negative threshold accepts everything", func(t *testing.T) {
		got := QueryOptions{MinSimilarity: -1}.Normalise()
		assert.Equal(t, -1.0, got.MinSimilarity)
	})

	t.Run("threshold clamps to cosine range", func(t *testing.T) {
		assert.Equal(t, -1.0, QueryOptions{MinSimilarity: -5}.Normalise().MinSimilarity)
		assert.Equal(t, 1.0, QueryOptions{MinSimilarity: 2}.Normalise().MinSimilarity)
	})
}
