package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/mvarga/claimsdesk/internal/core/domain"
)

const sheetName = "Analýzy"

// Exporter writes a claim's generated reports into an XLSX workbook for
// handlers who archive decisions outside the system.
type Exporter struct{}

func New() *Exporter {
	return &Exporter{}
}

func (e *Exporter) Export(w io.Writer, claim *domain.Claim, reports []domain.Report) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := []any{
		"Poistná udalosť", "Klient", "Typ poistenia", "Dokument",
		"Zhrnutie", "Relevantnosť", "Výluky", "Odporúčanie", "Odôvodnenie", "Vytvorené",
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header row: %w", err)
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetRowStyle(sheetName, 1, 1, style); err != nil {
		return fmt.Errorf("style header row: %w", err)
	}

	for i, report := range reports {
		row := []any{
			claim.ClaimNumber,
			claim.ClientName,
			claim.ClaimType,
			report.DocumentID,
			report.Content.Summary,
			report.Content.RelevanceAnalysis,
			report.Content.ExclusionsAnalysis,
			report.Content.Recommendation,
			report.Content.Justification,
			report.CreatedAt.Format("2006-01-02 15:04"),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("write report row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(sheetName, "E", "I", 60); err != nil {
		return fmt.Errorf("set column widths: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}
