// Package export renders leads as a spreadsheet for sales follow-up.
package export

import (
	"io"
	"regexp"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/octobees/catering-leads/internal/entity"
)

const (
	// SheetName is the single worksheet in every export.
	SheetName = "Leads"
	// ContentType is the MIME type of the workbook.
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

type column struct {
	header string
	width  float64
	value  func(*entity.Lead) string
}

var columns = []column{
	{"Company", 30, func(l *entity.Lead) string { return l.Company }},
	{"URL", 40, func(l *entity.Lead) string { return entity.Deref(l.URL) }},
	{"Company Description", 50, func(l *entity.Lead) string { return entity.Deref(l.CompanyDescription) }},
	{"Lead Status", 12, func(*entity.Lead) string { return "" }},
	{"Contact First Name", 15, func(l *entity.Lead) string { return entity.Deref(l.ContactFirstName) }},
	{"Contact Last Name", 15, func(l *entity.Lead) string { return entity.Deref(l.ContactLastName) }},
	{"Contact Title", 20, func(l *entity.Lead) string { return entity.Deref(l.ContactTitle) }},
	{"Contact Email", 35, func(l *entity.Lead) string { return entity.Deref(l.ContactEmail) }},
	{"Contact Phone Number", 18, func(l *entity.Lead) string { return entity.Deref(l.ContactPhone) }},
	{"Address", 30, func(l *entity.Lead) string { return entity.Deref(l.Address) }},
	{"Address Line 2", 15, func(l *entity.Lead) string { return entity.Deref(l.AddressLine2) }},
	{"City", 18, func(l *entity.Lead) string { return entity.Deref(l.City) }},
	{"State", 8, func(l *entity.Lead) string { return entity.Deref(l.State) }},
	{"Zipcode", 10, func(l *entity.Lead) string { return entity.Deref(l.Zipcode) }},
	{"Country", 10, func(l *entity.Lead) string { return l.Country }},
	{"Distance to campus", 20, func(l *entity.Lead) string { return entity.Deref(l.DistanceDisplay) }},
	{"Facebook Link", 50, func(l *entity.Lead) string { return entity.Deref(l.FacebookLink) }},
}

var unsafeFilenameChars = regexp.MustCompile(`(?i)[^a-z0-9]`)

// Headers returns the column titles in order.
func Headers() []string {
	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.header
	}
	return headers
}

// Workbook builds a one-sheet workbook with a header row and one row per lead.
// Nil leads are skipped.
func Workbook(leads []*entity.Lead) (*xlsx.File, error) {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(SheetName)
	if err != nil {
		return nil, eris.Wrap(err, "export: add sheet")
	}

	header := sheet.AddRow()
	for i, col := range columns {
		header.AddCell().SetString(col.header)
		sheet.SetColWidth(i, i, col.width)
	}

	for _, lead := range leads {
		if lead == nil {
			continue
		}
		row := sheet.AddRow()
		for _, col := range columns {
			row.AddCell().SetString(col.value(lead))
		}
	}
	return f, nil
}

// WriteXLSX streams the workbook for leads to w.
func WriteXLSX(w io.Writer, leads []*entity.Lead) error {
	f, err := Workbook(leads)
	if err != nil {
		return err
	}
	if err := f.Write(w); err != nil {
		return eris.Wrap(err, "export: write workbook")
	}
	return nil
}

// Filename names an export: leads_<school>_<YYYY-MM-DD>.xlsx, with every
// character of the school name outside [A-Za-z0-9] replaced by "_".
func Filename(schoolName string, now time.Time) string {
	date := now.UTC().Format("2006-01-02")
	schoolName = strings.TrimSpace(schoolName)
	if schoolName == "" {
		return "leads_" + date + ".xlsx"
	}
	return "leads_" + unsafeFilenameChars.ReplaceAllString(schoolName, "_") + "_" + date + ".xlsx"
}
