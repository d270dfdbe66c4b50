package apicontract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apicontract "github.com/tuanvumaihuynh/product-catalogue/api-contract"
)

func TestLoad(t *testing.T) {
	doc, err := apicontract.Load(context.Background())
	require.NoError(t, err)

	for _, path := range []string{
		"/products",
		"/products/{id}",
		"/products/category/{category}",
		"/products/premium",
		"/healthz",
	} {
		assert.NotNil(t, doc.Paths.Find(path), path)
	}
}
