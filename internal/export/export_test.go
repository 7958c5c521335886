package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/buyside-cli/internal/model"
)

func exportFixture(n int) []model.ScoredBuyer {
	out := make([]model.ScoredBuyer, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, model.ScoredBuyer{
			Buyer: model.BuyerRecord{
				ID:         fmt.Sprintf("b%03d", i),
				Name:       fmt.Sprintf("Buyer %03d", i),
				Kind:       model.KindStrategic,
				HQCountry:  "United States",
				SectorText: "industrial software",
				Revenue:    125_500_000,
			},
			Composite: 90 - i,
		})
	}
	return out
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportFixture(3)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4)
	assert.Equal(t, header, records[0])
	assert.Equal(t, "Buyer 000", records[1][0])
	assert.Equal(t, "strategic", records[1][1])
	assert.Equal(t, "$125.50M", records[1][4])
	assert.Equal(t, "90", records[1][5])
}

func TestWriteCSVCapsRows(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, exportFixture(80)))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, Limit+1)
	assert.Equal(t, "Buyer 049", records[Limit][0])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buyers.xlsx")
	require.NoError(t, WriteXLSX(path, exportFixture(2)))

	file, err := xlsx.OpenFile(path)
	require.NoError(t, err)
	require.Len(t, file.Sheets, 1)

	sheet := file.Sheets[0]
	assert.Equal(t, "Buyers", sheet.Name)
	require.Len(t, sheet.Rows, 3)
	assert.Equal(t, "Name", sheet.Rows[0].Cells[0].Value)
	assert.Equal(t, "Buyer 001", sheet.Rows[2].Cells[0].Value)
	assert.Equal(t, "89", sheet.Rows[2].Cells[5].Value)
}

func TestFormatRevenue(t *testing.T) {
	assert.Equal(t, "$0.00M", FormatRevenue(0))
	assert.Equal(t, "$1.25M", FormatRevenue(1_250_000))
	assert.Equal(t, "$2,500.00M", FormatRevenue(2_500_000_000))
}
