package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateNetwork(t *testing.T) {
	const required = ID(421614)

	tests := []struct {
		name    string
		current ID
		wantErr error
	}{
		{name: "matching chain", current: 421614, wantErr: nil},
		{name: "wrong chain", current: 1, wantErr: ErrNetworkMismatch},
		{name: "missing chain id fails closed", current: 0, wantErr: ErrNetworkMismatch},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateNetwork(tt.current, required)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSnapshotValidate(t *testing.T) {
	const required = ID(421614)

	t.Run("no wallet bound", func(t *testing.T) {
		err := Snapshot{ChainID: 421614}.Validate(required)
		assert.ErrorIs(t, err, ErrNoWallet)
	})

	t.Run("wallet on wrong network", func(t *testing.T) {
		err := Snapshot{ChainID: 1, Sender: "0xabc"}.Validate(required)
		assert.ErrorIs(t, err, ErrNetworkMismatch)
	})

	t.Run("ok", func(t *testing.T) {
		err := Snapshot{ChainID: 421614, Sender: "0xabc"}.Validate(required)
		assert.NoError(t, err)
	})
}
