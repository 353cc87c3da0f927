package harness

import (
	"io"
	"regexp"
)

// FilteredWriter passes written data through to another writer, except for writes matching
// any of the exclude patterns, which are silently dropped. The mock storefront's request
// log goes through one of these so that listener self-checks and health probes do not
// drown out the interesting traffic.
type FilteredWriter struct {
	writer       io.Writer
	excludeRegex []*regexp.Regexp
}

func NewFilteredWriter(writer io.Writer, excludeRegex []*regexp.Regexp) *FilteredWriter {
	return &FilteredWriter{writer, excludeRegex}
}

func (f *FilteredWriter) Write(data []byte) (int, error) {
	for _, r := range f.excludeRegex {
		if r.Match(data) {
			return len(data), nil
		}
	}
	return f.writer.Write(data)
}
