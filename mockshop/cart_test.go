package mockshop

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront-qa/storefront-contract-tests/testdata"
)

func addItemBody(productID string, quantity int) map[string]interface{} {
	return map[string]interface{}{"product_id": productID, "quantity": quantity}
}

func TestCartAddGetUpdateRemove(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)
		laptop := f.seed.Products.Laptop

		status, body := f.request("POST", "/cart/items", token, addItemBody(laptop.ID, 2))
		require.Equal(t, 201, status)
		item := body.GetByKey("item")
		assert.Equal(t, laptop.ID, item.GetByKey("product_id").StringValue())
		assert.Equal(t, 2, item.GetByKey("quantity").IntValue())
		assert.Equal(t, laptop.Name, item.GetByKey("name").StringValue())

		status, body = f.request("GET", "/cart", token, nil)
		require.Equal(t, 200, status)
		require.Equal(t, 1, body.GetByKey("items").Count())
		assert.InDelta(t, laptop.Price*2, body.GetByKey("total").Float64Value(), 0.001)

		status, body = f.request("PUT", "/cart/items/"+laptop.ID, token,
			map[string]interface{}{"quantity": 1})
		require.Equal(t, 200, status)
		assert.Equal(t, 1, body.GetByKey("item").GetByKey("quantity").IntValue())

		status, _ = f.request("DELETE", "/cart/items/"+laptop.ID, token, nil)
		require.Equal(t, 200, status)

		status, body = f.request("GET", "/cart", token, nil)
		require.Equal(t, 200, status)
		assert.Equal(t, 0, body.GetByKey("items").Count())
		assert.Equal(t, 0.0, body.GetByKey("total").Float64Value())
	})
}

func TestCartMergesDuplicateLines(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)
		laptop := f.seed.Products.Laptop

		status, _ := f.request("POST", "/cart/items", token, addItemBody(laptop.ID, 2))
		require.Equal(t, 201, status)
		status, body := f.request("POST", "/cart/items", token, addItemBody(laptop.ID, 3))
		require.Equal(t, 201, status)

		assert.Equal(t, 5, body.GetByKey("item").GetByKey("quantity").IntValue())
		status, body = f.request("GET", "/cart", token, nil)
		require.Equal(t, 200, status)
		require.Equal(t, 1, body.GetByKey("items").Count())
		assert.Equal(t, 5, body.GetByKey("items").GetByIndex(0).GetByKey("quantity").IntValue())
	})
}

func TestCartTotalSpansMultipleProducts(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)

		status, _ := f.request("POST", "/cart/items", token, addItemBody(f.seed.Products.Laptop.ID, 2))
		require.Equal(t, 201, status)
		status, _ = f.request("POST", "/cart/items", token, addItemBody(f.seed.Products.Book.ID, 1))
		require.Equal(t, 201, status)

		status, body := f.request("GET", "/cart", token, nil)
		require.Equal(t, 200, status)
		require.Equal(t, 2, body.GetByKey("items").Count())
		expected := f.seed.Products.Laptop.Price*2 + f.seed.Products.Book.Price
		assert.InDelta(t, expected, body.GetByKey("total").Float64Value(), 0.001)
	})
}

func TestCartClearEmptiesEverything(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)

		status, _ := f.request("POST", "/cart/items", token, addItemBody(f.seed.Products.Laptop.ID, 1))
		require.Equal(t, 201, status)
		status, _ = f.request("POST", "/cart/items", token, addItemBody(f.seed.Products.Smartphone.ID, 1))
		require.Equal(t, 201, status)

		status, body := f.request("DELETE", "/cart", token, nil)
		require.Equal(t, 200, status)
		assert.Equal(t, 0, body.GetByKey("items").Count())
	})
}

func TestCartRejectsInvalidAdds(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)

		for _, params := range []struct {
			desc           string
			body           interface{}
			expectedStatus int
		}{
			{"unknown product", addItemBody("prod-9999", 1), 404},
			{"zero quantity", addItemBody(f.seed.Products.Laptop.ID, 0), 400},
			{"negative quantity", addItemBody(f.seed.Products.Laptop.ID, -1), 400},
			{"above maximum quantity", addItemBody(f.seed.Products.Laptop.ID, f.seed.Boundaries.MaxCartQuantity + 1), 400},
			{"very large quantity", addItemBody(f.seed.Products.Laptop.ID, 999999), 400},
			{"out of stock product", addItemBody(f.seed.Products.OutOfStock.ID, 1), 409},
			{"missing product id", map[string]interface{}{"quantity": 1}, 400},
			{"missing quantity", map[string]interface{}{"product_id": f.seed.Products.Laptop.ID}, 400},
			{"null quantity", map[string]interface{}{"product_id": f.seed.Products.Laptop.ID, "quantity": nil}, 400},
			{"wrong quantity type", `{"product_id": "prod-1001", "quantity": "three"}`, 400},
			{"empty payload", map[string]interface{}{}, 400},
			{"non-JSON payload", `this is not json`, 400},
		} {
			t.Run(params.desc, func(t *testing.T) {
				status, body := f.request("POST", "/cart/items", token, params.body)
				assert.Equal(t, params.expectedStatus, status)
				assert.NotEmpty(t, body.GetByKey("error").StringValue())
			})
		}
	})
}

func TestCartStockMessages(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)

		status, body := f.request("POST", "/cart/items", token,
			addItemBody(f.seed.Products.OutOfStock.ID, 1))
		assert.Equal(t, 409, status)
		assert.Contains(t, body.GetByKey("error").StringValue(), "stock")
	})
}

func TestCartEnforcesStockLevel(t *testing.T) {
	seed, err := testdata.Load()
	require.NoError(t, err)
	seed.Products.Laptop.Stock = 3

	withSeededMockShop(t, seed, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)

		status, body := f.request("POST", "/cart/items", token, addItemBody(seed.Products.Laptop.ID, 5))
		assert.Equal(t, 409, status)
		assert.Contains(t, body.GetByKey("error").StringValue(), "stock")

		status, _ = f.request("POST", "/cart/items", token, addItemBody(seed.Products.Laptop.ID, 3))
		assert.Equal(t, 201, status)
	})
}

func TestCartUpdateAndRemoveMissingItems(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)

		status, _ := f.request("PUT", "/cart/items/"+f.seed.Products.Laptop.ID, token,
			map[string]interface{}{"quantity": 2})
		assert.Equal(t, 404, status)

		status, _ = f.request("DELETE", "/cart/items/"+f.seed.Products.Laptop.ID, token, nil)
		assert.Equal(t, 404, status)
	})
}

func TestCartsAreSeparatePerUser(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		userToken := f.mustLogin(f.seed.Users.Standard)
		adminToken := f.mustLogin(f.seed.Users.Admin)

		status, _ := f.request("POST", "/cart/items", userToken, addItemBody(f.seed.Products.Laptop.ID, 1))
		require.Equal(t, 201, status)

		status, body := f.request("GET", "/cart", adminToken, nil)
		require.Equal(t, 200, status)
		assert.Equal(t, 0, body.GetByKey("items").Count())
	})
}

func TestCartSurvivesNewLogin(t *testing.T) {
	withMockShop(t, func(f *serviceFixture) {
		token := f.mustLogin(f.seed.Users.Standard)
		status, _ := f.request("POST", "/cart/items", token, addItemBody(f.seed.Products.Laptop.ID, 2))
		require.Equal(t, 201, status)

		status, _ = f.request("POST", "/auth/logout", token, nil)
		require.Equal(t, 200, status)

		newToken := f.mustLogin(f.seed.Users.Standard)
		status, body := f.request("GET", "/cart", newToken, nil)
		require.Equal(t, 200, status)
		require.Equal(t, 1, body.GetByKey("items").Count())
		assert.Equal(t, 2, body.GetByKey("items").GetByIndex(0).GetByKey("quantity").IntValue())
	})
}
