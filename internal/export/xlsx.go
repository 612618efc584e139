package export

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/FlosMume/CareMind/internal/domain"
	"github.com/FlosMume/CareMind/internal/ports"
)

const sheet = "Drugs"

// Column order is fixed: name, indications, contraindications,
// interactions, pregnancy category, source.
var headers = []string{"药品名称", "适应症", "禁忌症", "药物相互作用", "妊娠分级", "来源"}

// XLSXExporter renders the resolved record set into the drug knowledge
// table workbook, one row per record.
type XLSXExporter struct {
	logger *slog.Logger
}

var _ ports.RecordExporter = (*XLSXExporter)(nil)

func NewXLSXExporter(logger *slog.Logger) *XLSXExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXExporter{logger: logger}
}

// Export returns the workbook as bytes.
func (e *XLSXExporter) Export(records []domain.DrugRecord) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		row := i + 2
		values := []string{
			rec.Name,
			rec.Indications,
			rec.Contraindications,
			rec.Interactions,
			rec.PregnancyCategory,
			rec.Source,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 20) // name
	_ = f.SetColWidth(sheet, "B", "D", 48) // content fields
	_ = f.SetColWidth(sheet, "E", "E", 26) // pregnancy category
	_ = f.SetColWidth(sheet, "F", "F", 30) // provenance

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	e.logger.Info("export.xlsx.ok",
		"rows", len(records),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportToFile writes the workbook to path.
func (e *XLSXExporter) ExportToFile(records []domain.DrugRecord, path string) error {
	data, err := e.Export(records)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
