package apitest

import "strings"

// Results is the accumulated outcome of a test run.
type Results struct {
	Tests               []TestResult
	Failures            []TestResult
	NonCriticalFailures []TestResult
}

// TestResult is the outcome of a single test scope.
type TestResult struct {
	TestID TestID
	Errors []error

	// Explanation is set for non-critical failures; it is the reason given to
	// T.NonCritical for why a failure here is tolerated.
	Explanation string
	NonCritical bool
}

// Failed returns true if the test recorded at least one error.
func (r TestResult) Failed() bool {
	return len(r.Errors) > 0
}

// OK returns true if there were no critical failures. Non-critical failures do not
// affect the overall outcome.
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// TestID identifies a test scope as the list of names of its enclosing scopes,
// outermost first.
type TestID []string

func (t TestID) String() string {
	return strings.Join(t, "/")
}

// Plus returns a new TestID with another path component appended. The receiver is
// not modified.
func (t TestID) Plus(name string) TestID {
	return append(append(TestID(nil), t...), name)
}
