// Package export serializes ranked buyer lists for hand-off to advisors.
// Only the top entries are exported; the full result set stays in the app.
package export

import (
	"encoding/csv"
	"io"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/sells-group/buyside-cli/internal/model"
)

// Limit caps exported rows.
const Limit = 50

var header = []string{"Name", "Kind", "Location", "Sector", "Revenue", "Match Score"}

var printer = message.NewPrinter(language.English)

// FormatRevenue renders a dollar revenue as $X.XXM.
func FormatRevenue(v int64) string {
	return printer.Sprintf("$%.2fM", float64(v)/1_000_000)
}

func rows(results []model.ScoredBuyer) [][]string {
	n := len(results)
	if n > Limit {
		n = Limit
	}
	out := make([][]string, 0, n)
	for _, sb := range results[:n] {
		b := sb.Buyer
		out = append(out, []string{
			b.Name,
			string(b.Kind),
			b.HQCountry,
			b.SectorText,
			FormatRevenue(b.Revenue),
			strconv.Itoa(sb.Composite),
		})
	}
	return out
}

// WriteCSV writes the header and up to Limit ranked rows.
func WriteCSV(w io.Writer, results []model.ScoredBuyer) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return eris.Wrap(err, "export: write csv header")
	}
	for _, row := range rows(results) {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write csv row")
		}
	}
	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush csv")
}

// WriteCSVFile writes a CSV export to path.
func WriteCSVFile(path string, results []model.ScoredBuyer) error {
	f, err := os.Create(path)
	if err != nil {
		return eris.Wrapf(err, "export: create %s", path)
	}
	defer f.Close()
	return WriteCSV(f, results)
}

// WriteXLSX writes an XLSX export to path.
func WriteXLSX(path string, results []model.ScoredBuyer) error {
	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Buyers")
	if err != nil {
		return eris.Wrap(err, "export: add sheet")
	}

	hr := sheet.AddRow()
	for _, h := range header {
		hr.AddCell().Value = h
	}
	for _, row := range rows(results) {
		xr := sheet.AddRow()
		for _, v := range row {
			xr.AddCell().Value = v
		}
	}

	return eris.Wrapf(file.Save(path), "export: save %s", path)
}
