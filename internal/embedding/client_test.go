package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Input, 2, "blank texts never reach the provider")

		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{1, 0, 0}, "index": 0},
				{"embedding": []float32{0, 1, 0}, "index": 1},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Dimension: 3})
	require.NoError(t, err)

	vectors, err := client.Embed(context.Background(), []string{"first", "  ", "second"})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	assert.Equal(t, []float32{1, 0, 0}, vectors[0])
	assert.Nil(t, vectors[1], "blank input yields a nil vector in place")
	assert.Equal(t, []float32{0, 1, 0}, vectors[2])
}

func TestClientEmbedAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]string{"message": "bad key", "type": "auth"},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "wrong", BaseURL: server.URL})
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad key")
}

func TestClientEmbedDimensionMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"data": []map[string]interface{}{
				{"embedding": []float32{1, 0, 0, 0, 0}, "index": 0},
			},
		})
	}))
	defer server.Close()

	client, err := NewClient(Config{APIKey: "test-key", BaseURL: server.URL, Dimension: 3})
	require.NoError(t, err)

	_, err = client.Embed(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dimension mismatch")
	assert.Equal(t, 3, client.Dimension(), "the configured dimension never changes")
}

func TestClientRequiresAPIKey(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}

func TestClientEmbedSingleBlank(t *testing.T) {
	client, err := NewClient(Config{APIKey: "key"})
	require.NoError(t, err)

	vector, err := client.EmbedSingle(context.Background(), "   ")
	require.NoError(t, err)
	assert.Nil(t, vector)
}

func TestMockClientDeterministic(t *testing.T) {
	client := NewMockClient(16)
	ctx := context.Background()

	a, err := client.EmbedSingle(ctx, "same text")
	require.NoError(t, err)
	b, err := client.EmbedSingle(ctx, "same text")
	require.NoError(t, err)
	assert.Equal(t, a, b)

	c, err := client.EmbedSingle(ctx, "different text")
	require.NoError(t, err)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 16)

	// Vectors come back unit-normalized.
	var sum float64
	for _, x := range a {
		sum += float64(x) * float64(x)
	}
	assert.InDelta(t, 1.0, sum, 1e-5)
}
