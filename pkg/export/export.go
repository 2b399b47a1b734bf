// Package export renders the current document view as delimited text or a
// spreadsheet. Pure projection of already-validated store state; nothing
// here mutates anything.
package export

import (
	"encoding/csv"
	"io"
	"strconv"
	"strings"

	"leaseintake/models"

	"github.com/xuri/excelize/v2"
)

// Columns is the export header, shared by both formats.
var Columns = []string{
	"filename", "datasets", "status", "reviewed", "quality_score",
	"name", "surname", "address_street", "address_house_number",
	"address_zip_code", "address_city", "cold_rent", "warm_rent",
	"deposit", "contract_term_months", "notice_period_months",
	"rent_increase_type", "date", "is_active", "landlord_entity",
}

// Row is one export line: the document plus its dataset names resolved.
type Row struct {
	Filename     string
	DatasetNames []string
	Status       models.DocumentStatus
	Reviewed     bool
	QualityScore *int
	Data         *models.ExtractedData
}

// Rows resolves dataset names for every document in view order. Documents
// without extracted data still export, with the lease columns blank.
func Rows(docs []*models.Document, datasets []*models.Dataset) []Row {
	names := make(map[string]string, len(datasets))
	for _, ds := range datasets {
		names[ds.ID] = ds.Name
	}
	rows := make([]Row, 0, len(docs))
	for _, doc := range docs {
		row := Row{
			Filename:     doc.Filename,
			Status:       doc.Status,
			Reviewed:     doc.IsReviewed,
			QualityScore: doc.QualityScore,
			Data:         doc.ExtractedData,
		}
		for _, dsID := range doc.DatasetIDs {
			if name, ok := names[dsID]; ok {
				row.DatasetNames = append(row.DatasetNames, name)
			}
		}
		rows = append(rows, row)
	}
	return rows
}

func (r Row) cells() []string {
	cells := []string{
		r.Filename,
		strings.Join(r.DatasetNames, "; "),
		string(r.Status),
		strconv.FormatBool(r.Reviewed),
		optInt(r.QualityScore),
	}
	d := r.Data
	if d == nil {
		return append(cells, make([]string, len(Columns)-len(cells))...)
	}
	return append(cells,
		d.Name,
		d.Surname,
		d.AddressStreet,
		d.AddressHouseNumber,
		d.AddressZipCode,
		d.AddressCity,
		strconv.Itoa(d.ColdRent),
		strconv.Itoa(d.WarmRent),
		optInt(d.Deposit),
		optInt(d.ContractTermMonths),
		optInt(d.NoticePeriodMonths),
		d.RentIncreaseType,
		d.Date,
		strconv.FormatBool(d.IsActive),
		d.LandlordEntity,
	)
}

func optInt(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

// WriteCSV streams rows as comma-delimited text with a header line.
func WriteCSV(w io.Writer, rows []Row) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Columns); err != nil {
		return err
	}
	for _, row := range rows {
		if err := cw.Write(row.cells()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// XLSX builds a single-sheet workbook with the same cells as the CSV.
func XLSX(rows []Row) (*excelize.File, error) {
	f := excelize.NewFile()
	const sheet = "Documents"
	idx, err := f.NewSheet(sheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, err
	}

	header := make([]any, len(Columns))
	for i, col := range Columns {
		header[i] = col
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cells := row.cells()
		line := make([]any, len(cells))
		for j, c := range cells {
			line[j] = c
		}
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheet, addr, &line); err != nil {
			return nil, err
		}
	}
	return f, nil
}
