package runner

import (
	"errors"
	"io"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	"excelsplit/internal/config"
	"excelsplit/internal/model"
)

type recordingJournal struct {
	created  []model.RunReport
	finished []error
}

func (j *recordingJournal) CreateRunLog(r *model.RunReport) (int64, error) {
	j.created = append(j.created, *r)
	return int64(len(j.created)), nil
}

func (j *recordingJournal) FinishRunLog(id int64, r *model.RunReport, runErr error) error {
	j.finished = append(j.finished, runErr)
	return nil
}

func writeSheet(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for i, r := range rows {
		cellName, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("CoordinatesToCellName failed: %v", err)
		}
		row := r
		if err := f.SetSheetRow(sheet, cellName, &row); err != nil {
			t.Fatalf("SetSheetRow failed: %v", err)
		}
	}
}

// buildInput 工资表 E1/E2/E3，工时表中 E1 按 1:4:4 分配，E3 工时为 "abc" 时触发数据错误
func buildInput(t *testing.T, e3Hours interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "工资"); err != nil {
		t.Fatalf("SetSheetName failed: %v", err)
	}
	if _, err := f.NewSheet("工时"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}

	writeSheet(t, f, "工资", [][]interface{}{
		{"工号", "姓名", "费用所属中心", "费用类别", "实际出勤", "应发工资", "社保公司"},
		{"E1", "张三", "P0", "未分配", 9, 1000, 3000},
		{"E2", "李四", "P0", "未分配", 8, 800, 2400},
		{"E3", "王五", "P0", "未分配", 8, 600, 1800},
	})
	writeSheet(t, f, "工时", [][]interface{}{
		{"实际出勤", "工号", "费用类别", "费用所属中心"},
		{1, "E1", "研发", "P1"},
		{4, "E1", "研发", "P2"},
		{4, "E1", "实施", "P3"},
		{e3Hours, "E3", "实施", "P4"},
	})

	path := filepath.Join(t.TempDir(), "input.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	return path
}

func testConfig(input, output string) config.AppConfig {
	mapping := config.ColumnsConfig{
		EmployeeID:      "工号",
		ProjectID:       "费用所属中心",
		ProjectCategory: "费用类别",
		ProjectHours:    "实际出勤",
	}
	cfg := config.DefaultConfig()
	cfg.Input.Path = input
	cfg.Input.Sheet.Source = config.SheetConfig{Name: "工资", Columns: mapping}
	cfg.Input.Sheet.Reference = config.SheetConfig{Name: "工时", Columns: mapping}
	cfg.Input.SplittingColumns = []string{"应发工资", "社保公司"}
	cfg.Output.Path = output
	cfg.Output.Sheet.Result.Name = "拆分结果"
	return cfg
}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestRunSplitsWorkbook(t *testing.T) {
	input := buildInput(t, 0)
	output := filepath.Join(t.TempDir(), "output.xlsx")
	journal := &recordingJournal{}

	report, err := New(journal, quietLogger()).Run(testConfig(input, output))
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// E1 拆为 3 行；E2 无工时记录、E3 工时合计为 0，原样输出
	if report.SourceRows != 3 || report.ResultRows != 5 || report.SplitRows != 1 || report.PassThroughRows != 2 {
		t.Fatalf("report=%+v", report)
	}
	if report.RunID == "" {
		t.Fatalf("RunID is empty")
	}
	if len(journal.created) != 1 || len(journal.finished) != 1 || journal.finished[0] != nil {
		t.Fatalf("journal=%+v", journal)
	}

	out, err := excelize.OpenFile(output)
	if err != nil {
		t.Fatalf("OpenFile failed: %v", err)
	}
	defer out.Close()

	rows, err := out.GetRows("拆分结果")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if len(rows) != 6 {
		t.Fatalf("len(rows)=%d, want 6", len(rows))
	}
	if rows[0][0] != "工号" || rows[0][6] != "社保公司" {
		t.Fatalf("header=%v", rows[0])
	}

	wantProjects := []string{"P1", "P2", "P3", "P0", "P0"}
	for i, want := range wantProjects {
		if got := rows[i+1][2]; got != want {
			t.Fatalf("row %d project=%q, want %q", i+2, got, want)
		}
	}

	wantSalary := []float64{111.11, 444.44, 444.44, 800, 600}
	for i, want := range wantSalary {
		raw, err := out.GetCellValue("拆分结果", "F"+string(rune('2'+i)), excelize.Options{RawCellValue: true})
		if err != nil {
			t.Fatalf("GetCellValue failed: %v", err)
		}
		got := parseFloat(t, raw)
		if math.Abs(got-want) > 0.01 {
			t.Fatalf("F%d=%v, want %v", i+2, got, want)
		}
	}

	if sheets := out.GetSheetList(); len(sheets) != 3 {
		t.Fatalf("sheets=%v, want 工资/工时/拆分结果", sheets)
	}
}

func TestRunDataErrorWritesNothing(t *testing.T) {
	input := buildInput(t, "abc")
	output := filepath.Join(t.TempDir(), "output.xlsx")
	journal := &recordingJournal{}

	_, err := New(journal, quietLogger()).Run(testConfig(input, output))
	var dataErr *model.DataError
	if !errors.As(err, &dataErr) {
		t.Fatalf("err=%v, want DataError", err)
	}
	if dataErr.Sheet != "工时" || dataErr.Row != 5 || dataErr.Column != "实际出勤" {
		t.Fatalf("dataErr=%+v", dataErr)
	}
	if _, statErr := os.Stat(output); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("output file must not exist, stat err=%v", statErr)
	}
	if len(journal.finished) != 1 || journal.finished[0] == nil {
		t.Fatalf("journal should record the failure: %+v", journal)
	}
}

func TestRunRejectPolicy(t *testing.T) {
	input := buildInput(t, 0)
	output := filepath.Join(t.TempDir(), "output.xlsx")
	cfg := testConfig(input, output)
	cfg.Input.ZeroHoursPolicy = string(model.ZeroHoursReject)

	_, err := New(nil, quietLogger()).Run(cfg)
	var dataErr *model.DataError
	if !errors.As(err, &dataErr) || dataErr.Row != 5 {
		t.Fatalf("err=%v, want DataError at row 5", err)
	}
	if _, statErr := os.Stat(output); statErr == nil {
		t.Fatalf("output file must not be written")
	}
}

func TestRunConfigurationErrors(t *testing.T) {
	input := buildInput(t, 0)
	output := filepath.Join(t.TempDir(), "output.xlsx")

	cases := []struct {
		name   string
		mutate func(c *config.AppConfig)
	}{
		{"missing reference sheet", func(c *config.AppConfig) { c.Input.Sheet.Reference.Name = "不存在" }},
		{"missing splitting column", func(c *config.AppConfig) { c.Input.SplittingColumns = []string{"奖金"} }},
		{"missing reference column", func(c *config.AppConfig) { c.Input.Sheet.Reference.Columns.ProjectHours = "工时数" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig(input, output)
			tc.mutate(&cfg)
			_, err := New(nil, quietLogger()).Run(cfg)
			var cfgErr *model.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("err=%v, want ConfigurationError", err)
			}
		})
	}
}

func TestRunMissingInputIsIOError(t *testing.T) {
	dir := t.TempDir()
	_, err := New(nil, quietLogger()).Run(testConfig(filepath.Join(dir, "missing.xlsx"), filepath.Join(dir, "out.xlsx")))
	var ioErr *model.IOError
	if !errors.As(err, &ioErr) {
		t.Fatalf("err=%v, want IOError", err)
	}
}

func TestRunWithoutReferencePassesEverythingThrough(t *testing.T) {
	input := buildInput(t, 0)
	output := filepath.Join(t.TempDir(), "output.xlsx")
	cfg := testConfig(input, output)
	cfg.Input.Sheet.Reference = config.SheetConfig{}

	report, err := New(nil, quietLogger()).Run(cfg)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if report.ResultRows != 3 || report.PassThroughRows != 3 {
		t.Fatalf("report=%+v", report)
	}
}

func parseFloat(t *testing.T, raw string) float64 {
	t.Helper()
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		t.Fatalf("ParseFloat(%q) failed: %v", raw, err)
	}
	return f
}

func TestRunRejectsResultSheetDifferingOnlyInCase(t *testing.T) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Payroll"); err != nil {
		t.Fatalf("SetSheetName failed: %v", err)
	}
	if _, err := f.NewSheet("Hours"); err != nil {
		t.Fatalf("NewSheet failed: %v", err)
	}
	writeSheet(t, f, "Payroll", [][]interface{}{
		{"工号", "费用所属中心", "费用类别", "实际出勤", "应发工资", "社保公司"},
		{"E1", "P0", "未分配", 5, 1000, 3000},
	})
	writeSheet(t, f, "Hours", [][]interface{}{
		{"工号", "费用所属中心", "费用类别", "实际出勤"},
		{"E1", "P1", "研发", 1},
		{"E1", "P2", "研发", 4},
	})
	input := filepath.Join(t.TempDir(), "input.xlsx")
	if err := f.SaveAs(input); err != nil {
		t.Fatalf("SaveAs failed: %v", err)
	}
	_ = f.Close()

	output := filepath.Join(t.TempDir(), "output.xlsx")
	cfg := testConfig(input, output)
	cfg.Input.Sheet.Source.Name = "Payroll"
	cfg.Input.Sheet.Reference.Name = "Hours"
	cfg.Output.Sheet.Result.Name = "payroll"

	_, err := New(nil, quietLogger()).Run(cfg)
	var cfgErr *model.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Field != "output.sheet.result.name" {
		t.Fatalf("err=%v, want ConfigurationError on output.sheet.result.name", err)
	}
	if _, statErr := os.Stat(output); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("output file must not exist, stat err=%v", statErr)
	}
}
