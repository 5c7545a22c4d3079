package interfaces

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	payroll "github.com/ju4700/ZKTecho-sub001/internal/payroll/domain"
	timesheet "github.com/ju4700/ZKTecho-sub001/internal/timesheet/domain"
)

// BuildPayrollPDF renders a minimal PDF for a period's payroll summaries.
func BuildPayrollPDF(period timesheet.MonthKey, summaries []payroll.PayrollSummary, generatedAt time.Time) ([]byte, error) {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetFont("Arial", "", 12)
	pdf.AddPage()

	pdf.Cell(0, 8, "Payroll Summary")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, fmt.Sprintf("Period: %s", period))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Employees: %d", len(summaries)))
	pdf.Ln(5)
	pdf.Cell(0, 6, fmt.Sprintf("Generated: %s", generatedAt.Format(time.RFC3339)))
	pdf.Ln(8)

	// Summary table
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(50, 6, "Employee", "1", 0, "C", false, 0, "")
	pdf.CellFormat(25, 6, "Days", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Regular Hours", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Overtime Hours", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Regular Pay", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Overtime Pay", "1", 0, "C", false, 0, "")
	pdf.CellFormat(40, 6, "Total Pay", "1", 0, "C", false, 0, "")
	pdf.Ln(-1)
	pdf.SetFont("Arial", "", 10)
	for _, summary := range summaries {
		pdf.CellFormat(50, 6, summary.EmployeeID, "1", 0, "L", false, 0, "")
		pdf.CellFormat(25, 6, fmt.Sprintf("%d", summary.TotalDays), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", summary.TotalRegularHours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", summary.TotalOvertimeHours), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", summary.TotalRegularPay), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", summary.TotalOvertimePay), "1", 0, "R", false, 0, "")
		pdf.CellFormat(40, 6, fmt.Sprintf("%.2f", summary.TotalPay), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	err := pdf.Output(&buf)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// BuildPayrollXLSX renders a minimal XLSX for a period's payroll summaries.
func BuildPayrollXLSX(period timesheet.MonthKey, summaries []payroll.PayrollSummary, generatedAt time.Time) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "summary"
	employeesSheet := "employees"
	f.SetSheetName("Sheet1", summarySheet)
	f.NewSheet(employeesSheet)

	var totalPay, totalRegularHours, totalOvertimeHours float64
	for _, summary := range summaries {
		totalPay += summary.TotalPay
		totalRegularHours += summary.TotalRegularHours
		totalOvertimeHours += summary.TotalOvertimeHours
	}

	_ = f.SetCellValue(summarySheet, "A1", "Payroll Summary")
	_ = f.SetCellValue(summarySheet, "A3", "Period")
	_ = f.SetCellValue(summarySheet, "B3", string(period))
	_ = f.SetCellValue(summarySheet, "A4", "Employees")
	_ = f.SetCellValue(summarySheet, "B4", len(summaries))
	_ = f.SetCellValue(summarySheet, "A5", "Total Regular Hours")
	_ = f.SetCellValue(summarySheet, "B5", totalRegularHours)
	_ = f.SetCellValue(summarySheet, "A6", "Total Overtime Hours")
	_ = f.SetCellValue(summarySheet, "B6", totalOvertimeHours)
	_ = f.SetCellValue(summarySheet, "A7", "Total Pay")
	_ = f.SetCellValue(summarySheet, "B7", totalPay)
	_ = f.SetCellValue(summarySheet, "A8", "Generated")
	_ = f.SetCellValue(summarySheet, "B8", generatedAt.Format(time.RFC3339))

	_ = f.SetCellValue(employeesSheet, "A1", "Employee")
	_ = f.SetCellValue(employeesSheet, "B1", "Days")
	_ = f.SetCellValue(employeesSheet, "C1", "Regular Hours")
	_ = f.SetCellValue(employeesSheet, "D1", "Overtime Hours")
	_ = f.SetCellValue(employeesSheet, "E1", "Regular Pay")
	_ = f.SetCellValue(employeesSheet, "F1", "Overtime Pay")
	_ = f.SetCellValue(employeesSheet, "G1", "Total Pay")
	for i, summary := range summaries {
		row := i + 2
		_ = f.SetCellValue(employeesSheet, fmt.Sprintf("A%d", row), summary.EmployeeID)
		_ = f.SetCellValue(employeesSheet, fmt.Sprintf("B%d", row), summary.TotalDays)
		_ = f.SetCellValue(employeesSheet, fmt.Sprintf("C%d", row), summary.TotalRegularHours)
		_ = f.SetCellValue(employeesSheet, fmt.Sprintf("D%d", row), summary.TotalOvertimeHours)
		_ = f.SetCellValue(employeesSheet, fmt.Sprintf("E%d", row), summary.TotalRegularPay)
		_ = f.SetCellValue(employeesSheet, fmt.Sprintf("F%d", row), summary.TotalOvertimePay)
		_ = f.SetCellValue(employeesSheet, fmt.Sprintf("G%d", row), summary.TotalPay)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
