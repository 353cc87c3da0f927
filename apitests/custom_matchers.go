package apitests

import (
	"fmt"
	"strings"

	m "github.com/launchdarkly/go-test-helpers/v2/matchers"

	"github.com/storefront-qa/storefront-contract-tests/shopapi"
)

// The functions in this file are for convenient use of the matchers API with
// shopapi.Result values, so that test expectations about statuses and response
// bodies read declaratively and produce useful failure output.

// ResultStatus extracts the HTTP status code from a Result.
func ResultStatus() m.MatcherTransform {
	return m.Transform(
		"status",
		func(value interface{}) (interface{}, error) {
			return value.(shopapi.Result).Status, nil
		}).
		EnsureInputValueType(shopapi.Result{})
}

// ResultBody extracts the parsed JSON response body from a Result.
func ResultBody() m.MatcherTransform {
	return m.Transform(
		"response body",
		func(value interface{}) (interface{}, error) {
			return value.(shopapi.Result).Body, nil
		}).
		EnsureInputValueType(shopapi.Result{})
}

// ResultErrorMessage extracts the error description ("error" or "message" property)
// from a Result's body.
func ResultErrorMessage() m.MatcherTransform {
	return m.Transform(
		"error message",
		func(value interface{}) (interface{}, error) {
			return value.(shopapi.Result).ErrorMessage(), nil
		}).
		EnsureInputValueType(shopapi.Result{})
}

// ResultAttempts extracts how many times the request was sent.
func ResultAttempts() m.MatcherTransform {
	return m.Transform(
		"attempt count",
		func(value interface{}) (interface{}, error) {
			return value.(shopapi.Result).Attempts, nil
		}).
		EnsureInputValueType(shopapi.Result{})
}

// IsOK matches any completed exchange with a 2xx status.
func IsOK() m.Matcher {
	return ResultStatus().Should(statusInRange(200, 299))
}

// IsClientError matches any completed exchange with a 4xx status.
func IsClientError() m.Matcher {
	return ResultStatus().Should(statusInRange(400, 499))
}

// HasStatus matches a Result with exactly the given status code.
func HasStatus(status int) m.Matcher {
	return ResultStatus().Should(m.Equal(status))
}

// HasStatusIn matches a Result whose status code is any of the given values, for
// scenarios where the contract allows more than one (201 vs 200 on create, 400 vs
// 404 on bad references).
func HasStatusIn(statuses ...int) m.Matcher {
	ms := make([]m.Matcher, 0, len(statuses))
	for _, status := range statuses {
		ms = append(ms, m.Equal(status))
	}
	return ResultStatus().Should(m.AnyOf(ms...))
}

// HasErrorMessage matches a Result whose body carries a non-empty error description,
// which the API contract requires of every error response.
func HasErrorMessage() m.Matcher {
	return ResultErrorMessage().Should(m.Not(m.Equal("")))
}

// ErrorMessageMentions matches a Result whose error description contains at least one
// of the given terms, ignoring case.
func ErrorMessageMentions(terms ...string) m.Matcher {
	return ResultErrorMessage().Should(m.New(
		func(value interface{}) bool {
			message := strings.ToLower(value.(string))
			for _, term := range terms {
				if strings.Contains(message, strings.ToLower(term)) {
					return true
				}
			}
			return false
		},
		func() string {
			return fmt.Sprintf("error message mentions one of [%s]", strings.Join(terms, ", "))
		},
		func(value interface{}) string {
			return fmt.Sprintf("error message %q did not mention any of [%s]",
				value, strings.Join(terms, ", "))
		},
	))
}

// WasNotRetried matches a Result that was produced by a single attempt. The client
// is required to return any received error response as-is, without retrying.
func WasNotRetried() m.Matcher {
	return ResultAttempts().Should(m.Equal(1))
}

// BodyProperty applies a matcher to one top-level property of the response body.
func BodyProperty(name string, shouldMatch m.Matcher) m.Matcher {
	return ResultBody().Should(m.JSONProperty(name).Should(shouldMatch))
}

func statusInRange(min, max int) m.Matcher {
	return m.New(
		func(value interface{}) bool {
			status := value.(int)
			return status >= min && status <= max
		},
		func() string {
			return fmt.Sprintf("status in %d-%d", min, max)
		},
		func(value interface{}) string {
			return fmt.Sprintf("status %d was not in %d-%d", value, min, max)
		},
	)
}
