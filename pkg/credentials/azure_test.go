package credentials

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAzureProviderGetDefaultSubscriptionIDShortCircuitsWhenConfigured(t *testing.T) {
	p := NewAzureProvider("11111111-1111-1111-1111-111111111111")

	got, err := p.GetDefaultSubscriptionID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "11111111-1111-1111-1111-111111111111", got)
}

func TestAzureProviderGetDefaultAccountIDIsNoOp(t *testing.T) {
	p := NewAzureProvider("sub")
	got, err := p.GetDefaultAccountID(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got)
}
