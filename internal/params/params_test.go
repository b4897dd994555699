package params

import (
	"context"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultGroup(t *testing.T) {
	g := DefaultGroup()
	require.NoError(t, g.Validate())
	assert.Equal(t, DefaultBits, g.P.BitLen())
	assert.Equal(t, int64(2), g.G.Int64())
}

func TestGenerate(t *testing.T) {
	// Small enough to find a safe prime quickly, large enough to be a
	// real search.
	group, err := Generate(context.Background(), 128)
	require.NoError(t, err)
	require.NoError(t, group.Validate())

	assert.Equal(t, 128, group.P.BitLen())
	assert.Equal(t, int64(2), group.G.Int64())
	assert.Equal(t, int64(11), new(big.Int).Mod(group.P, big.NewInt(24)).Int64())

	q := new(big.Int).Rsh(new(big.Int).Sub(group.P, big.NewInt(1)), 1)
	assert.True(t, q.ProbablyPrime(20), "(p-1)/2 must be prime")
}

func TestGenerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, DefaultBits)
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateRejectsTinySizes(t *testing.T) {
	_, err := Generate(context.Background(), 8)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		group   Group
		wantErr bool
	}{
		{"valid small", Group{P: big.NewInt(23), G: big.NewInt(5)}, false},
		{"nil members", Group{}, true},
		{"composite modulus", Group{P: big.NewInt(24), G: big.NewInt(2)}, true},
		{"generator one", Group{P: big.NewInt(23), G: big.NewInt(1)}, true},
		{"generator p-1", Group{P: big.NewInt(23), G: big.NewInt(22)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.group.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
