package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestBcryptHasher(t *testing.T) {
	t.Run("HashVerifies", func(t *testing.T) {
		h := NewBcryptHasher(bcrypt.MinCost)
		hash, err := h.Hash(testNewPassword)
		require.NoError(t, err)
		assert.NotEqual(t, testNewPassword, hash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(testNewPassword)))
	})

	t.Run("SaltedPerCall", func(t *testing.T) {
		h := NewBcryptHasher(bcrypt.MinCost)
		a, err := h.Hash(testNewPassword)
		require.NoError(t, err)
		b, err := h.Hash(testNewPassword)
		require.NoError(t, err)
		assert.NotEqual(t, a, b)
	})

	t.Run("OutOfRangeCostFallsBack", func(t *testing.T) {
		assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(0).cost)
		assert.Equal(t, bcrypt.DefaultCost, NewBcryptHasher(bcrypt.MaxCost+1).cost)
	})
}
