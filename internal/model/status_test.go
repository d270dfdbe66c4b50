package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tuanvumaihuynh/product-catalogue/internal/model"
)

func TestProductStatus(t *testing.T) {
	t.Run("Should only allow active to deleted", func(t *testing.T) {
		assert.True(t, model.ProductStatusActive.CanTransitionTo(model.ProductStatusDeleted))
		assert.False(t, model.ProductStatusActive.CanTransitionTo(model.ProductStatusActive))
		assert.False(t, model.ProductStatusDeleted.CanTransitionTo(model.ProductStatusActive))
		assert.False(t, model.ProductStatusDeleted.CanTransitionTo(model.ProductStatusDeleted))
	})

	t.Run("Should treat deleted as terminal", func(t *testing.T) {
		assert.True(t, model.ProductStatusDeleted.IsTerminal())
		assert.False(t, model.ProductStatusActive.IsTerminal())
	})

	t.Run("Should validate enum values", func(t *testing.T) {
		assert.NoError(t, model.ProductStatusActive.Validate())
		assert.NoError(t, model.ProductStatusDeleted.Validate())
		assert.Error(t, model.ProductStatus("X").Validate())
		assert.Equal(t, "DELETED", model.ProductStatusDeleted.String())
	})
}

func TestProduct(t *testing.T) {
	t.Run("Should render the id as a decimal string", func(t *testing.T) {
		assert.Equal(t, "42", model.Product{ID: 42}.IDString())
	})

	t.Run("Should treat the threshold as inclusive for active products", func(t *testing.T) {
		assert.True(t, model.Product{Price: 500, Status: model.ProductStatusActive}.IsPremium())
		assert.False(t, model.Product{Price: 499.99, Status: model.ProductStatusActive}.IsPremium())
		assert.False(t, model.Product{Price: 900, Status: model.ProductStatusDeleted}.IsPremium())
	})
}
