package shopapi

import (
	"testing"

	"github.com/launchdarkly/go-sdk-common/v3/ldvalue"

	"github.com/stretchr/testify/assert"
)

func TestResultOK(t *testing.T) {
	assert.True(t, Result{Status: 200}.OK())
	assert.True(t, Result{Status: 201}.OK())
	assert.True(t, Result{Status: 204}.OK())
	assert.False(t, Result{Status: 301}.OK())
	assert.False(t, Result{Status: 401}.OK())
	assert.False(t, Result{Status: 500}.OK())
	assert.False(t, Result{}.OK())
}

func TestResultField(t *testing.T) {
	result := Result{Body: ldvalue.Parse([]byte(`{"token": "t1", "user": {"id": "u-100"}}`))}

	assert.Equal(t, "t1", result.Field("token").StringValue())
	assert.Equal(t, "u-100", result.Field("user").GetByKey("id").StringValue())
	assert.True(t, result.Field("nonexistent").IsNull())

	assert.True(t, Result{}.Field("anything").IsNull())
}

func TestResultErrorMessage(t *testing.T) {
	assert.Equal(t, "Invalid credentials",
		Result{Body: ldvalue.Parse([]byte(`{"error": "Invalid credentials"}`))}.ErrorMessage())
	assert.Equal(t, "Cart is empty",
		Result{Body: ldvalue.Parse([]byte(`{"message": "Cart is empty"}`))}.ErrorMessage())
	assert.Equal(t, "first",
		Result{Body: ldvalue.Parse([]byte(`{"error": "first", "message": "second"}`))}.ErrorMessage())
	assert.Equal(t, "", Result{Body: ldvalue.Parse([]byte(`{"ok": true}`))}.ErrorMessage())
	assert.Equal(t, "", Result{}.ErrorMessage())
}
