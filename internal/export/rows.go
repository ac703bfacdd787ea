// Package export turns result tables into downloadable files.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

// TableRowSelector finds the data rows of the results table
const TableRowSelector = ".results-table tbody tr"

// RowsFromDocument reads every row of the results table in doc. A page
// without the table yields no rows.
func RowsFromDocument(doc *goquery.Document) []domain.ResultRow {
	var rows []domain.ResultRow

	doc.Find(TableRowSelector).Each(func(_ int, tr *goquery.Selection) {
		cells := tr.ChildrenFiltered("td")
		row := domain.ResultRow{Cells: cells.Length()}

		if row.Cells > 0 {
			first := cells.Eq(0)
			row.Hash = first.AttrOr("data-hash", "")
			if row.Hash == "" {
				row.Hash = strings.TrimSpace(first.Text())
			}
		}
		if row.Cells > 1 {
			row.Plaintext = strings.TrimSpace(cells.Eq(1).Text())
		}
		if row.Cells > 2 {
			if href, ok := cells.Eq(2).Find("a").First().Attr("href"); ok {
				row.TaskID = lastSegment(href)
			}
		}
		if row.Cells > 3 {
			row.CrackedAt = strings.TrimSpace(cells.Eq(3).Text())
		}

		rows = append(rows, row)
	})

	return rows
}

// RowsFromHTML parses a saved results page and reads its table
func RowsFromHTML(r io.Reader) ([]domain.ResultRow, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to parse results page: %w", err)
	}

	return RowsFromDocument(doc), nil
}

// RowsFromResults builds rows from stored results
func RowsFromResults(results []*domain.Result) []domain.ResultRow {
	rows := make([]domain.ResultRow, 0, len(results))
	for _, r := range results {
		rows = append(rows, r.Row())
	}
	return rows
}

func lastSegment(href string) string {
	if i := strings.LastIndex(href, "/"); i >= 0 {
		return href[i+1:]
	}
	return href
}
