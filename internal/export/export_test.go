package export

import (
	"bytes"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

const table = `<table class="results-table"><thead><tr><th>Hash</th></tr></thead><tbody>
<tr>
  <td data-hash="5f4dcc3b5aa765d61d8327deb882cf99"><code>5f4dcc3b…</code></td>
  <td> password </td>
  <td><a href="/tasks/6f1c7a52-0d3e-4b8e-9a51-6f2b1d2d8c11">task</a></td>
  <td>2024-05-01 10:00:00</td>
</tr>
<tr>
  <td>e10adc3949ba59abbe56e057f20f883e</td>
  <td>say "hi"</td>
  <td>no link</td>
  <td>2024-05-02 11:30:00</td>
</tr>
<tr><td>short</td><td>row</td></tr>
</tbody></table>`

func load(t *testing.T, s string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	require.NoError(t, err)
	return doc
}

func TestRowsFromDocument(t *testing.T) {
	rows := RowsFromDocument(load(t, table))
	require.Len(t, rows, 3)

	assert.Equal(t, domain.ResultRow{
		Hash:      "5f4dcc3b5aa765d61d8327deb882cf99",
		Plaintext: "password",
		TaskID:    "6f1c7a52-0d3e-4b8e-9a51-6f2b1d2d8c11",
		CrackedAt: "2024-05-01 10:00:00",
		Cells:     4,
	}, rows[0])

	assert.Equal(t, "e10adc3949ba59abbe56e057f20f883e", rows[1].Hash)
	assert.Empty(t, rows[1].TaskID)
	assert.Equal(t, 2, rows[2].Cells)

	assert.Empty(t, RowsFromDocument(load(t, `<p>no table</p>`)))
}

func TestCSV(t *testing.T) {
	out, err := CSV(RowsFromDocument(load(t, table)))
	require.NoError(t, err)

	want := "Hash,Plaintext,Task ID,Cracked At\n" +
		`"5f4dcc3b5aa765d61d8327deb882cf99","password","6f1c7a52-0d3e-4b8e-9a51-6f2b1d2d8c11","2024-05-01 10:00:00"` + "\n" +
		`"e10adc3949ba59abbe56e057f20f883e","say "hi"","","2024-05-02 11:30:00"` + "\n"
	assert.Equal(t, want, string(out))
}

func TestTXT(t *testing.T) {
	out, err := TXT(RowsFromDocument(load(t, table)))
	require.NoError(t, err)

	want := "5f4dcc3b5aa765d61d8327deb882cf99:password\n" +
		"e10adc3949ba59abbe56e057f20f883e:say \"hi\"\n" +
		"short:row\n"
	assert.Equal(t, want, string(out))
}

func TestEmptyExport(t *testing.T) {
	for _, f := range []Format{FormatCSV, FormatTXT, FormatXLSX} {
		t.Run(string(f), func(t *testing.T) {
			file, err := Encode(f, nil)
			assert.ErrorIs(t, err, ErrNoResults)
			assert.Nil(t, file)
		})
	}

	assert.Equal(t, "No results to export", ErrNoResults.Error())
}

func TestEncode(t *testing.T) {
	taskID := uuid.New()
	results := []*domain.Result{
		{ID: 1, TaskID: taskID, HashValue: "abc123", Plaintext: "secretpw", CrackedAt: time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)},
	}
	rows := RowsFromResults(results)

	tests := []struct {
		format   Format
		name     string
		mimeType string
	}{
		{format: FormatCSV, name: "hashcat-results.csv", mimeType: "text/csv"},
		{format: FormatTXT, name: "hashcat-results.txt", mimeType: "text/plain"},
		{format: FormatXLSX, name: "hashcat-results.xlsx", mimeType: MimeXLSX},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			file, err := Encode(tt.format, rows)
			require.NoError(t, err)
			assert.Equal(t, tt.name, file.Name)
			assert.Equal(t, tt.mimeType, file.ContentType)
			assert.NotEmpty(t, file.Data)
		})
	}

	file, err := Encode(FormatXLSX, rows)
	require.NoError(t, err)

	xf, err := excelize.OpenReader(bytes.NewReader(file.Data))
	require.NoError(t, err)
	defer xf.Close()

	got, err := xf.GetRows("Results")
	require.NoError(t, err)
	assert.Equal(t, [][]string{
		Header,
		{"abc123", "secretpw", taskID.String(), "2024-03-04 05:06:07"},
	}, got)
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(" CSV ")
	require.NoError(t, err)
	assert.Equal(t, FormatCSV, f)

	_, err = ParseFormat("pdf")
	assert.Error(t, err)
}

func TestClearFilters(t *testing.T) {
	form := url.Values{
		"hash_value": {"5f4d"},
		"plaintext":  {"pass"},
		"task_id":    {"6f1c7a52"},
		"per_page":   {"50"},
	}

	cleared, next := ClearFilters(form)

	for k := range form {
		assert.Equal(t, "", cleared.Get(k), k)
	}
	assert.Equal(t, "/results?hash_value=&plaintext=&task_id=&per_page=", next)

	_, next = ClearFilters(nil)
	assert.Equal(t, "/results?hash_value=&plaintext=&task_id=", next)
}
