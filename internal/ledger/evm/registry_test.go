package evm

import (
	"errors"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"datanexus/internal/ledger"
)

func TestRegistryABIParses(t *testing.T) {
	parsed, err := abi.JSON(strings.NewReader(registryABI))
	require.NoError(t, err)

	_, ok := parsed.Methods["storeMetadata"]
	assert.True(t, ok)
	method, ok := parsed.Methods["getAllMetadata"]
	require.True(t, ok)
	assert.Len(t, method.Inputs, 2)
}

func TestClassifySubmitError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "duplicate cid revert",
			err:  errors.New("execution reverted: dataset already registered"),
			want: ledger.ErrDuplicateCID,
		},
		{
			name: "generic revert",
			err:  errors.New("execution reverted: invalid domain"),
			want: ledger.ErrReverted,
		},
		{
			name: "nonce too low",
			err:  errors.New("nonce too low"),
			want: ledger.ErrRejected,
		},
		{
			name: "underpriced",
			err:  errors.New("replacement transaction underpriced"),
			want: ledger.ErrRejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, classifySubmitError(tt.err), tt.want)
		})
	}
}
