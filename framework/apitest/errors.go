package apitest

import (
	"errors"
	"fmt"
	"regexp"
	"runtime"
	"strings"

	"github.com/storefront-qa/storefront-contract-tests/framework/helpers"
)

// ErrorWithStacktrace is a test failure annotated with the call path that produced it,
// so report loggers can show where in a suite the assertion failed.
type ErrorWithStacktrace struct {
	Message    string
	Stacktrace []StacktraceInfo
}

// StacktraceInfo identifies one call site within a failure stacktrace.
type StacktraceInfo struct {
	FileName string
	Package  string
	Function string
	Line     int
}

func (e ErrorWithStacktrace) Error() string { return e.Message }

func (s StacktraceInfo) String() string {
	packageName := strings.TrimPrefix(s.Package, rootPackageName()+"/")
	return fmt.Sprintf("%s.%s (%s:%d)", packageName, s.Function, s.FileName, s.Line)
}

var embeddedTraceRegex = regexp.MustCompile(`^(?s:\s*Error Trace:.*\sError:\s*)`)

// transformError attaches our own stacktrace to an error, after stripping any trace text
// that testify's assert and require functions may have embedded in the message.
func transformError(err error, stacktrace []StacktraceInfo) error {
	message := stripEmbeddedTrace(err.Error())
	if len(stacktrace) == 0 {
		return errors.New(message)
	}
	return ErrorWithStacktrace{Message: message, Stacktrace: stacktrace}
}

func stripEmbeddedTrace(message string) string {
	if !strings.Contains(message, "Error Trace:") {
		return message
	}
	return strings.TrimSpace(embeddedTraceRegex.ReplaceAllLiteralString(message, ""))
}

func currentPackageName() string {
	pc, _, _, ok := runtime.Caller(0)
	if !ok {
		return "?"
	}
	f := runtime.FuncForPC(pc)
	if f == nil {
		return "?"
	}
	name, _ := splitQualifiedName(f.Name())
	return name
}

func rootPackageName() string {
	p := currentPackageName()
	return strings.Join(strings.Split(p, "/")[0:3], "/")
}

// getStacktrace returns the call path of the caller, top of stack first, ending just
// before the Run call that started the suite. If includeRunnerCode is false, frames
// within this package are left out; frames whose fully qualified function name appears
// in helperFns are always left out (see T.Helper).
func getStacktrace(includeRunnerCode bool, helperFns []string) []StacktraceInfo {
	pcs := make([]uintptr, 32)
	for {
		n := runtime.Callers(2, pcs) // 2 skips runtime.Callers and getStacktrace itself
		if n < len(pcs) {
			pcs = pcs[:n]
			break
		}
		pcs = make([]uintptr, len(pcs)*2)
	}

	runnerPackage := currentPackageName()
	callers := []StacktraceInfo{}
	frames := runtime.CallersFrames(pcs)
	for {
		frame, more := frames.Next()
		if frame.Function != "" {
			packageName, functionName := splitQualifiedName(frame.Function)
			if packageName == runnerPackage && functionName == "Run" {
				break // the top-level Run call is the root of every test, no need to go further
			}
			keep := includeRunnerCode || packageName != runnerPackage
			if keep && !helpers.SliceContains(frame.Function, helperFns) {
				callers = append(callers, StacktraceInfo{
					FileName: baseFileName(frame.File),
					Package:  packageName,
					Function: functionName,
					Line:     frame.Line,
				})
			}
		}
		if !more {
			break
		}
	}
	return callers
}

// splitQualifiedName breaks a runtime function name such as
// "example.com/project/apitests.doLoginTests" into its package path and bare name.
func splitQualifiedName(fullName string) (packageName, functionName string) {
	start := strings.LastIndex(fullName, "/") + 1
	dot := strings.Index(fullName[start:], ".")
	if dot < 0 {
		return fullName, ""
	}
	return fullName[:start+dot], fullName[start+dot+1:]
}

func baseFileName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
