package zerror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/product-catalogue/pkg/zerror"
)

func TestZError(t *testing.T) {
	notFound := zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")

	t.Run("Should format code and message", func(t *testing.T) {
		assert.Equal(t, "Code=PRODUCT_NOT_FOUND, Msg=product not found", notFound.Error())
	})

	t.Run("Should keep parent reachable through errors.Is", func(t *testing.T) {
		parent := errors.New("no rows")
		err := fmt.Errorf("get product: %w", notFound.WrapParent(parent))

		assert.ErrorIs(t, err, parent)
		assert.ErrorIs(t, err, notFound)
		assert.Contains(t, err.Error(), "Parent=(no rows)")
	})

	t.Run("Should match by status and code regardless of message", func(t *testing.T) {
		err := notFound.WithMsg("product 999 not found")

		assert.ErrorIs(t, err, notFound)
		assert.NotErrorIs(t, err, zerror.NewNotFound("OTHER", "product not found"))
		assert.Equal(t, "product 999 not found", err.Msg())
		assert.Equal(t, "product not found", notFound.Msg())
	})

	t.Run("Should append details without mutating the original", func(t *testing.T) {
		base := zerror.NewValidationFailed("VALIDATION_FAILED", "validation error")
		withName := base.WithDetails(zerror.Detail{Field: "name", Message: "field is required"})
		withBoth := withName.WithDetails(zerror.Detail{Field: "price", Message: "must be greater than or equal to 0"})

		assert.Empty(t, base.Details())
		require.Len(t, withName.Details(), 1)
		require.Len(t, withBoth.Details(), 2)
		assert.Equal(t, "price", withBoth.Details()[1].Field)
	})

	t.Run("Should extract through errors.As", func(t *testing.T) {
		err := fmt.Errorf("wrapped: %w", zerror.NewForbidden("FORBIDDEN", "forbidden"))

		var zErr zerror.ZError
		require.ErrorAs(t, err, &zErr)
		assert.Equal(t, zerror.StatusForbidden, zErr.Status())
		assert.Equal(t, "FORBIDDEN", zErr.Status().String())
	})
}
