package shopapi

import "encoding/json"

// Fields whose values must never appear in debug output.
var maskedBodyFields = map[string]bool{ //nolint:gochecknoglobals
	"password":    true,
	"token":       true,
	"card_number": true,
	"cvv":         true,
}

// maskSensitiveBody renders a request or response body for debug logging, replacing
// the values of credential and payment fields at any nesting depth. Non-JSON bodies
// are returned unchanged.
func maskSensitiveBody(data []byte) string {
	var parsed interface{}
	if err := json.Unmarshal(data, &parsed); err != nil {
		return string(data)
	}
	masked, err := json.Marshal(maskValue(parsed))
	if err != nil {
		return string(data)
	}
	return string(masked)
}

func maskValue(value interface{}) interface{} {
	switch v := value.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(v))
		for key, element := range v {
			if maskedBodyFields[key] {
				out[key] = "*****"
			} else {
				out[key] = maskValue(element)
			}
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(v))
		for i, element := range v {
			out[i] = maskValue(element)
		}
		return out
	default:
		return value
	}
}
