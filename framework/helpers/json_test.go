package helpers

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/stretchr/testify/assert"
)

func TestAsJSONHelpers(t *testing.T) {
	assert.Equal(t, `{"quantity":2}`, AsJSONString(map[string]int{"quantity": 2}))
	assert.Equal(t, []byte(`["a","b"]`), AsJSON([]string{"a", "b"}))
	assert.Equal(t, ldvalue.Bool(true), AsJSONValue(true))
}

func TestCanonicalizedJSONString(t *testing.T) {
	value := ldvalue.Parse([]byte(`{"total": 45.5, "items": [{"quantity": 1, "product_id": "p1"}], "currency": "USD"}`))
	assert.Equal(t,
		`{"currency":"USD","items":[{"product_id":"p1","quantity":1}],"total":45.5}`,
		CanonicalizedJSONString(value))

	assert.Equal(t, `null`, CanonicalizedJSONString(ldvalue.Null()))
	assert.Equal(t, `"x"`, CanonicalizedJSONString(ldvalue.String("x")))
}
