package apitest

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/storefront-qa/storefront-contract-tests/framework"
	o "github.com/storefront-qa/storefront-contract-tests/framework/opt"

	"github.com/xuri/excelize/v2"
)

const (
	excelSummarySheetName = "Summary"
	excelFailedBgColor    = "FF5900"
	excelWarningBgColor   = "FFEB9C"
)

var excelResultHeaders = []string{"Test", "Status", "Time (s)", "Detail"} //nolint:gochecknoglobals

// ExcelTestLogger accumulates test results and writes them as an Excel workbook,
// with a summary sheet plus one sheet per top-level test category. Spreadsheet
// reports are what the QA team circulates after a release candidate run.
type ExcelTestLogger struct {
	filePath string
	testIDs  []TestID // this slice preserves the order that the tests were run in
	tests    map[string]excelTestStatus
	lock     sync.Mutex
}

type excelTestStatus struct {
	failures    []error
	skipped     o.Maybe[string]
	nonCritical bool
	startTime   time.Time
	duration    time.Duration
}

func NewExcelTestLogger(filePath string) *ExcelTestLogger {
	return &ExcelTestLogger{
		filePath: filePath,
		tests:    make(map[string]excelTestStatus),
	}
}

func (e *ExcelTestLogger) TestStarted(id TestID) {
	e.lock.Lock()
	defer e.lock.Unlock()
	e.testIDs = append(e.testIDs, id)
	e.tests[id.String()] = excelTestStatus{
		startTime: time.Now(),
	}
}

func (e *ExcelTestLogger) TestError(id TestID, err error) {
	e.lock.Lock()
	defer e.lock.Unlock()
	status := e.tests[id.String()]
	status.failures = append(status.failures, err)
	e.tests[id.String()] = status
}

func (e *ExcelTestLogger) TestFinished(id TestID, result TestResult, debugOutput framework.CapturedOutput) {
	e.lock.Lock()
	defer e.lock.Unlock()
	status := e.tests[id.String()]
	status.duration = time.Since(status.startTime)
	status.nonCritical = result.NonCritical
	e.tests[id.String()] = status
}

func (e *ExcelTestLogger) TestSkipped(id TestID, reason string) {
	e.lock.Lock()
	defer e.lock.Unlock()
	status := e.tests[id.String()]
	status.skipped = o.Some(reason)
	e.tests[id.String()] = status
}

func (e *ExcelTestLogger) EndLog(results Results) error {
	fmt.Printf("Writing Excel report to %s\n", e.filePath)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	failedStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{excelFailedBgColor}},
	})
	if err != nil {
		return err
	}
	warningStyle, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{excelWarningBgColor}},
	})
	if err != nil {
		return err
	}

	if err := f.SetSheetName("Sheet1", excelSummarySheetName); err != nil {
		return err
	}

	for _, topLevelID := range getTopLevelIDs(e.testIDs) {
		if _, err := f.NewSheet(topLevelID); err != nil {
			return err
		}
		_ = f.SetColWidth(topLevelID, "A", "A", 60)
		_ = f.SetColWidth(topLevelID, "B", "C", 14)
		_ = f.SetColWidth(topLevelID, "D", "D", 90)

		for i, header := range excelResultHeaders {
			_ = f.SetCellValue(topLevelID, fmt.Sprintf("%c1", 'A'+i), header)
		}

		row := 2
		for _, testID := range e.testIDs {
			if len(testID) == 0 || testID[0] != topLevelID {
				continue
			}
			status := e.tests[testID.String()]
			statusText, detail := describeExcelStatus(status)

			cells := []interface{}{
				testID.String(),
				statusText,
				fmt.Sprintf("%.3f", status.duration.Seconds()),
				detail,
			}
			for i, cell := range cells {
				cellName := fmt.Sprintf("%c%d", 'A'+i, row)
				_ = f.SetCellValue(topLevelID, cellName, cell)
				if len(status.failures) != 0 {
					if status.nonCritical {
						_ = f.SetCellStyle(topLevelID, cellName, cellName, warningStyle)
					} else {
						_ = f.SetCellStyle(topLevelID, cellName, cellName, failedStyle)
					}
				}
			}
			row++
		}
	}

	e.writeSummarySheet(f, results)
	f.SetActiveSheet(0)

	return f.SaveAs(e.filePath)
}

func (e *ExcelTestLogger) writeSummarySheet(f *excelize.File, results Results) {
	totalDuration := time.Duration(0)
	skippedCount := 0
	for _, status := range e.tests {
		totalDuration += status.duration
		if status.skipped.IsDefined() {
			skippedCount++
		}
	}

	_ = f.SetColWidth(excelSummarySheetName, "A", "A", 28)
	_ = f.SetColWidth(excelSummarySheetName, "B", "B", 60)

	lines := [][2]interface{}{
		{"Run time", time.Now().Format("2006-01-02 15:04:05")},
		{"Total duration (s)", fmt.Sprintf("%.3f", totalDuration.Seconds())},
		{"Tests run", len(results.Tests)},
		{"Failures", len(results.Failures)},
		{"Non-critical failures", len(results.NonCriticalFailures)},
		{"Skipped", skippedCount},
	}
	for i, line := range lines {
		_ = f.SetCellValue(excelSummarySheetName, fmt.Sprintf("A%d", i+1), line[0])
		_ = f.SetCellValue(excelSummarySheetName, fmt.Sprintf("B%d", i+1), line[1])
	}
}

func describeExcelStatus(status excelTestStatus) (statusText, detail string) {
	switch {
	case status.skipped.IsDefined():
		return "SKIPPED", status.skipped.Value()
	case len(status.failures) == 0:
		return "passed", ""
	case status.nonCritical:
		statusText = "FAILED (non-critical)"
	default:
		statusText = "FAILED"
	}
	var messages []string
	for _, e := range status.failures {
		messages = append(messages, strings.TrimSpace(e.Error()))
	}
	return statusText, strings.Join(messages, "\n")
}
