package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/markreg/caseflow/internal/domain/entity"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// RegisterWriter renders the case register as an XLSX workbook
type RegisterWriter struct {
	logger *zap.Logger
}

// NewRegisterWriter creates a new RegisterWriter
func NewRegisterWriter(logger *zap.Logger) *RegisterWriter {
	return &RegisterWriter{logger: logger}
}

var registerHeader = []string{
	"ID", "Client", "Phone", "Email", "Brand", "Person type",
	"Status", "Classes", "Operator", "Checker", "Lawyer", "Created",
}

// Write renders the cases into a single-sheet workbook and returns its bytes
func (w *RegisterWriter) Write(cases []*entity.Case) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)

	for col, title := range registerHeader {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return nil, fmt.Errorf("failed to build header cell: %w", err)
		}
		if err := f.SetCellValue(sheet, cell, title); err != nil {
			return nil, fmt.Errorf("failed to set header cell: %w", err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	if err == nil {
		last, _ := excelize.CoordinatesToCellName(len(registerHeader), 1)
		_ = f.SetCellStyle(sheet, "A1", last, headerStyle)
	}

	for i, c := range cases {
		row := i + 2
		values := []interface{}{
			c.ID, c.ClientName, c.ClientPhone, c.ClientEmail, c.BrandName, string(c.PersonType),
			c.Status.String(), joinClasses(c.Classes),
			c.AssignedOperator, c.AssignedChecker, c.AssignedLawyer,
			c.CreatedAt.Format("2006-01-02 15:04"),
		}
		for col, val := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return nil, fmt.Errorf("failed to build cell: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, val); err != nil {
				return nil, fmt.Errorf("failed to set cell: %w", err)
			}
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		w.logger.Error("Failed to write workbook", zap.Error(err))
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}

	w.logger.Info("Case register exported", zap.Int("cases", len(cases)))
	return buf.Bytes(), nil
}

func joinClasses(classes []int) string {
	parts := make([]string, len(classes))
	for i, cl := range classes {
		parts[i] = strconv.Itoa(cl)
	}
	return strings.Join(parts, ", ")
}
