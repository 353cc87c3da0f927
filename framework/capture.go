package framework

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const captureTimestampFormat = "2006-01-02 15:04:05.000"

// CapturedMessage is one timestamped line of output recorded by a CapturingLogger.
type CapturedMessage struct {
	Time    time.Time
	Message string
}

// CapturedOutput is the accumulated output of a test scope, in order of occurrence.
type CapturedOutput []CapturedMessage

// CapturingLogger records all output written within a test scope, so the runner can
// decide after the fact whether to show it (for instance, only for failed tests).
//
// A test scope may have child scopes. While a child logger is attached, new output
// to the parent is redirected to the children, each of which also starts out with a
// copy of the output the parent had already recorded. This makes output from
// long-lived components set up in a parent scope show up in the log of whichever
// subtest was running at the time. See apitest.(*T).DebugLogger.
type CapturingLogger struct {
	output   []CapturedMessage
	children []*CapturingLogger
	lock     sync.Mutex
}

func (l *CapturingLogger) Println(args ...interface{}) {
	// Sprintln appends a newline that we do not want in a captured message
	m := strings.TrimRight(fmt.Sprintln(args...), "\r\n")
	l.append(CapturedMessage{Time: time.Now(), Message: m})
}

func (l *CapturingLogger) Printf(message string, args ...interface{}) {
	l.append(CapturedMessage{Time: time.Now(), Message: fmt.Sprintf(message, args...)})
}

func (l *CapturingLogger) append(m CapturedMessage) {
	var children []*CapturingLogger
	l.lock.Lock()
	if len(l.children) == 0 {
		l.output = append(l.output, m)
	} else {
		children = append([]*CapturingLogger(nil), l.children...)
	}
	l.lock.Unlock()
	for _, c := range children {
		c.append(m)
	}
}

// Output returns a copy of everything recorded so far.
func (l *CapturingLogger) Output() CapturedOutput {
	l.lock.Lock()
	ret := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	return ret
}

// AddChildLogger attaches a child scope's logger, seeding it with the output that
// the parent has already recorded.
func (l *CapturingLogger) AddChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	l.children = append(l.children, child)
	output := append([]CapturedMessage(nil), l.output...)
	l.lock.Unlock()
	child.lock.Lock()
	child.output = append(output, child.output...)
	child.lock.Unlock()
}

// RemoveChildLogger detaches a child scope's logger.
func (l *CapturingLogger) RemoveChildLogger(child *CapturingLogger) {
	l.lock.Lock()
	for i, c := range l.children {
		if c == child {
			l.children = append(l.children[0:i], l.children[i+1:]...)
			break
		}
	}
	l.lock.Unlock()
}

// ToString renders the captured output as a multi-line string, prefixing each line.
func (output CapturedOutput) ToString(prefix string) string {
	ret := ""
	for _, m := range output {
		if ret != "" {
			ret += "\n"
		}
		ret += fmt.Sprintf("%s[%s] %s",
			prefix,
			m.Time.Format(captureTimestampFormat),
			m.Message,
		)
	}
	return ret
}
