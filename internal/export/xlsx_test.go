package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/octobees/catering-leads/internal/entity"
)

func rowStrings(row *xlsx.Row) []string {
	out := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		out[i] = cell.String()
	}
	return out
}

func TestWriteXLSX(t *testing.T) {
	leads := []*entity.Lead{
		{
			Company:         "Prairie Catering Co",
			URL:             entity.StringPtr("https://prairiecatering.com"),
			ContactEmail:    entity.StringPtr("sales@prairiecatering.com"),
			ContactPhone:    entity.StringPtr("(217) 555-0100"),
			Address:         entity.StringPtr("12 Oak St"),
			City:            entity.StringPtr("Springfield"),
			State:           entity.StringPtr("IL"),
			Zipcode:         entity.StringPtr("62701"),
			Country:         "USA",
			DistanceDisplay: entity.StringPtr("3.5 miles"),
			FacebookLink:    entity.StringPtr("https://facebook.com/prairie"),
		},
		nil,
		{Company: "Route 66 Diner", Country: "USA"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, leads))

	f, err := xlsx.OpenBinary(buf.Bytes())
	require.NoError(t, err)
	require.Len(t, f.Sheets, 1)
	sheet := f.Sheets[0]
	assert.Equal(t, SheetName, sheet.Name)
	require.Len(t, sheet.Rows, 3)

	assert.Equal(t, Headers(), rowStrings(sheet.Rows[0]))
	assert.Len(t, Headers(), 17)
	assert.Equal(t, []string{
		"Prairie Catering Co", "https://prairiecatering.com", "", "", "", "", "",
		"sales@prairiecatering.com", "(217) 555-0100", "12 Oak St", "", "Springfield",
		"IL", "62701", "USA", "3.5 miles", "https://facebook.com/prairie",
	}, rowStrings(sheet.Rows[1]))

	last := rowStrings(sheet.Rows[2])
	assert.Equal(t, "Route 66 Diner", last[0])
	assert.Equal(t, "USA", last[14])
}

func TestWorkbookEmpty(t *testing.T) {
	f, err := Workbook(nil)
	require.NoError(t, err)
	sheet, ok := f.Sheet[SheetName]
	require.True(t, ok)
	assert.Len(t, sheet.Rows, 1)
}

func TestFilename(t *testing.T) {
	now := time.Date(2026, 3, 9, 23, 30, 0, 0, time.UTC)

	assert.Equal(t, "leads_2026-03-09.xlsx", Filename("", now))
	assert.Equal(t, "leads_2026-03-09.xlsx", Filename("   ", now))
	assert.Equal(t, "leads_Lincoln_High_School__Springfield_2026-03-09.xlsx", Filename("Lincoln High School, Springfield", now))
	assert.Equal(t, "leads_St__Mary_s_2026-03-09.xlsx", Filename("St. Mary's", now))
}
