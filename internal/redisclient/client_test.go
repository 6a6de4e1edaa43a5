package redisclient

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(t *testing.T) *Client {
	t.Helper()
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("Integration test - requires Redis (set TEST_REDIS_ADDR)")
	}
	client, err := NewClient(addr, "", 0, "pos-test-"+time.Now().Format("150405.000"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestTokenRoundTrip(t *testing.T) {
	client := testClient(t)
	ctx := context.Background()

	token, err := client.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)

	require.NoError(t, client.SaveToken(ctx, "tok-1"))
	token, err = client.LoadToken(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	require.NoError(t, client.DeleteToken(ctx))
	token, err = client.LoadToken(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestKeyNamespace(t *testing.T) {
	assert.Equal(t, "token", (&Client{}).key("token"))
	assert.Equal(t, "t1:token", (&Client{namespace: "t1"}).key("token"))
}
