package apitest

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter decides whether to run a specific test or not.
type Filter interface {
	Match(id TestID) bool
}

// SelfDescribingFilter is implemented by filters that can explain their criteria in
// the startup output.
type SelfDescribingFilter interface {
	Describe(w io.Writer)
}

// RegexFilters is a Filter implementation based on the command-line parameters -run
// and -skip. Each pattern applies per test ID path component: "cart/add" matches a
// regex against "cart" and another against "add".
type RegexFilters struct {
	MustMatch    TestIDPatternList
	MustNotMatch TestIDPatternList
}

func (r RegexFilters) Match(id TestID) bool {
	return (!r.MustMatch.IsDefined() || r.MustMatch.AnyMatch(id, true)) &&
		!r.MustNotMatch.AnyMatch(id, false)
}

func (r RegexFilters) Describe(w io.Writer) {
	if r.MustMatch.IsDefined() || r.MustNotMatch.IsDefined() {
		fmt.Fprintln(w, "Some tests will be skipped based on the filter criteria for this test run:")
		if r.MustMatch.IsDefined() {
			fmt.Fprintf(w, "  skip any not matching %s\n", r.MustMatch)
		}
		if r.MustNotMatch.IsDefined() {
			fmt.Fprintf(w, "  skip any matching %s\n", r.MustNotMatch)
		}
		fmt.Fprintln(w)
	}
}

// TestIDPattern is a list of regexes, one per test ID path component.
type TestIDPattern []*regexp.Regexp

// Match tests the pattern against each component of the ID in order. If the ID is
// shorter than the pattern, includeParents determines whether the partial match
// counts; this lets a -run pattern for a subtest also select its enclosing scopes.
func (p TestIDPattern) Match(id TestID, includeParents bool) bool {
	min := len(p)
	if min > len(id) {
		if !includeParents {
			return false
		}
		min = len(id)
	}
	for i := 0; i < min; i++ {
		if !p[i].MatchString(id[i]) {
			return false
		}
	}
	return true
}

func (p TestIDPattern) String() string {
	ss := make([]string, 0, len(p))
	for _, c := range p {
		ss = append(ss, c.String())
	}
	return strings.Join(ss, "/")
}

// ParseTestIDPattern compiles a slash-delimited string into a TestIDPattern.
func ParseTestIDPattern(s string) (TestIDPattern, error) {
	parts := strings.Split(s, "/")
	ret := make(TestIDPattern, 0, len(parts))
	for _, part := range parts {
		rx, err := regexp.Compile(part)
		if err != nil {
			return nil, fmt.Errorf("invalid regex: %w", err)
		}
		ret = append(ret, rx)
	}
	return ret, nil
}

// TestIDPatternList is a list of patterns of which any one can match. It implements
// flag.Value so that -run and -skip can be specified more than once.
type TestIDPatternList []TestIDPattern

func (l TestIDPatternList) String() string {
	ss := make([]string, 0, len(l))
	for _, p := range l {
		ss = append(ss, `"`+p.String()+`"`)
	}
	return strings.Join(ss, " or ")
}

// Set is called by the command line parser.
func (l *TestIDPatternList) Set(value string) error {
	p, err := ParseTestIDPattern(value)
	if err != nil {
		return err
	}
	*l = append(*l, p)
	return nil
}

func (l TestIDPatternList) IsDefined() bool {
	return len(l) != 0
}

func (l TestIDPatternList) AnyMatch(id TestID, includeParents bool) bool {
	for _, p := range l {
		if p.Match(id, includeParents) {
			return true
		}
	}
	return false
}
