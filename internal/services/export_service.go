package services

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/sjperalta/fintera-obligations/internal/models"
	"github.com/xuri/excelize/v2"
)

var statusLabels = map[string]string{
	models.StatusPending:   "Pendiente",
	models.StatusPaid:      "Pagada",
	models.StatusOverdue:   "Vencida",
	models.StatusCancelled: "Cancelada",
}

// ExportService renders installment schedules as downloadable statements
type ExportService struct {
	obligations *ObligationService
}

func NewExportService(obligations *ObligationService) *ExportService {
	return &ExportService{obligations: obligations}
}

// Export loads an obligation and renders its schedule in the requested format (csv, xlsx or pdf)
func (s *ExportService) Export(ctx context.Context, obligationID uint, format string) ([]byte, string, error) {
	obligation, err := s.obligations.FindByID(ctx, obligationID)
	if err != nil {
		return nil, "", err
	}

	switch format {
	case "csv":
		return s.ScheduleCSV(obligation)
	case "xlsx", "":
		return s.ScheduleXLSX(obligation)
	case "pdf":
		return s.SchedulePDF(obligation)
	default:
		return nil, "", fmt.Errorf("unsupported export format %q", format)
	}
}

func (s *ExportService) ScheduleCSV(obligation *models.Obligation) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	_ = writer.Write([]string{"Calendario de Pagos", obligation.GUID})
	_ = writer.Write([]string{"Tipo", obligation.Kind})
	_ = writer.Write([]string{"Estado", statusLabels[obligation.Status]})
	_ = writer.Write([]string{""})

	_ = writer.Write([]string{"Cuota", "Vencimiento", "Monto", "Estado", "Fecha de Pago", "Notas"})
	for i := range obligation.Installments {
		inst := &obligation.Installments[i]
		_ = writer.Write([]string{
			fmt.Sprintf("%d", inst.InstallmentNumber),
			inst.DueDate.Format(models.DateLayout),
			inst.Amount.StringFixed(2),
			statusLabels[inst.Status],
			formatOptionalDate(inst.PaidDate),
			derefString(inst.PaymentNotes),
		})
	}

	_ = writer.Write([]string{""})
	_ = writer.Write([]string{"Total", "", scheduleTotal(obligation).StringFixed(2)})

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), exportFilename(obligation, "csv"), nil
}

func (s *ExportService) ScheduleXLSX(obligation *models.Obligation) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Cuotas"
	_ = f.SetSheetName("Sheet1", sheet)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 12},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	amountStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4}) // #,##0.00

	_ = f.SetCellValue(sheet, "A1", "Calendario de Pagos")
	_ = f.SetCellStyle(sheet, "A1", "A1", headerStyle)
	_ = f.SetCellValue(sheet, "A2", "Obligación")
	_ = f.SetCellValue(sheet, "B2", obligation.GUID)
	_ = f.SetCellValue(sheet, "A3", "Tipo")
	_ = f.SetCellValue(sheet, "B3", obligation.Kind)
	_ = f.SetCellValue(sheet, "A4", "Estado")
	_ = f.SetCellValue(sheet, "B4", statusLabels[obligation.Status])

	headers := []string{"Cuota", "Vencimiento", "Monto", "Estado", "Fecha de Pago", "Notas"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 6)
		_ = f.SetCellValue(sheet, cell, h)
		_ = f.SetCellStyle(sheet, cell, cell, headerStyle)
	}

	row := 7
	for i := range obligation.Installments {
		inst := &obligation.Installments[i]
		amount, _ := inst.Amount.Float64()
		_ = f.SetCellValue(sheet, fmt.Sprintf("A%d", row), inst.InstallmentNumber)
		_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row), inst.DueDate.Format(models.DateLayout))
		_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row), amount)
		_ = f.SetCellStyle(sheet, fmt.Sprintf("C%d", row), fmt.Sprintf("C%d", row), amountStyle)
		_ = f.SetCellValue(sheet, fmt.Sprintf("D%d", row), statusLabels[inst.Status])
		_ = f.SetCellValue(sheet, fmt.Sprintf("E%d", row), formatOptionalDate(inst.PaidDate))
		_ = f.SetCellValue(sheet, fmt.Sprintf("F%d", row), derefString(inst.PaymentNotes))
		row++
	}

	total, _ := scheduleTotal(obligation).Float64()
	_ = f.SetCellValue(sheet, fmt.Sprintf("B%d", row+1), "Total")
	_ = f.SetCellValue(sheet, fmt.Sprintf("C%d", row+1), total)
	_ = f.SetCellStyle(sheet, fmt.Sprintf("C%d", row+1), fmt.Sprintf("C%d", row+1), amountStyle)
	_ = f.SetColWidth(sheet, "B", "F", 16)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}

	return buf.Bytes(), exportFilename(obligation, "xlsx"), nil
}

func (s *ExportService) SchedulePDF(obligation *models.Obligation) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Calendario de Pagos")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	pdf.Cell(40, 6, tr("Obligación:"))
	pdf.Cell(80, 6, obligation.GUID)
	pdf.Ln(6)
	pdf.Cell(40, 6, "Tipo:")
	pdf.Cell(80, 6, obligation.Kind)
	pdf.Ln(6)
	pdf.Cell(40, 6, "Estado:")
	pdf.Cell(80, 6, statusLabels[obligation.Status])
	pdf.Ln(10)

	widths := []float64{18, 32, 32, 28, 32}
	pdf.SetFont("Arial", "B", 10)
	for i, h := range []string{"Cuota", "Vencimiento", "Monto", "Estado", "Fecha de Pago"} {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for i := range obligation.Installments {
		inst := &obligation.Installments[i]
		pdf.CellFormat(widths[0], 6, fmt.Sprintf("%d", inst.InstallmentNumber), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[1], 6, inst.DueDate.Format(models.DateLayout), "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[2], 6, inst.Amount.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 6, statusLabels[inst.Status], "1", 0, "C", false, 0, "")
		pdf.CellFormat(widths[4], 6, formatOptionalDate(inst.PaidDate), "1", 0, "C", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(widths[0]+widths[1], 7, "Total", "1", 0, "R", false, 0, "")
	pdf.CellFormat(widths[2], 7, scheduleTotal(obligation).StringFixed(2), "1", 0, "R", false, 0, "")
	pdf.Ln(-1)

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), exportFilename(obligation, "pdf"), nil
}

// scheduleTotal sums the installments that are still owed or already paid
func scheduleTotal(obligation *models.Obligation) decimal.Decimal {
	total := decimal.Zero
	for i := range obligation.Installments {
		if obligation.Installments[i].Status != models.StatusCancelled {
			total = total.Add(obligation.Installments[i].Amount)
		}
	}
	return total
}

func exportFilename(obligation *models.Obligation, ext string) string {
	return fmt.Sprintf("cuotas_%d_%s.%s", obligation.ID, time.Now().Format("2006-01-02"), ext)
}

func formatOptionalDate(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(models.DateLayout)
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
