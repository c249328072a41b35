package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
)

// createTestXLSX creates a minimal valid XLSX workbook in memory with one
// sheet per entry of sheets (name -> sheet XML).
func createTestXLSX(t *testing.T, sheetNames []string, sheetXMLs []string, sharedStrings string) []byte {
	t.Helper()

	buf := new(bytes.Buffer)
	w := zip.NewWriter(buf)

	var sheetDecls, relDecls strings.Builder
	for i, name := range sheetNames {
		sheetDecls.WriteString(fmt.Sprintf(`<sheet name="%s" sheetId="%d" r:id="rId%d"/>`, name, i+1, i+1))
		relDecls.WriteString(fmt.Sprintf(`<Relationship Id="rId%d" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/worksheet" Target="worksheets/sheet%d.xml"/>`, i+1, i+1))
	}

	wb, _ := w.Create("xl/workbook.xml")
	wb.Write([]byte(`<?xml version="1.0"?>
<workbook xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" xmlns:r="http://schemas.openxmlformats.org/officeDocument/2006/relationships">
<sheets>` + sheetDecls.String() + `</sheets>
</workbook>`))

	rels, _ := w.Create("xl/_rels/workbook.xml.rels")
	rels.Write([]byte(`<?xml version="1.0"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` + relDecls.String() + `</Relationships>`))

	if sharedStrings != "" {
		sst, _ := w.Create("xl/sharedStrings.xml")
		sst.Write([]byte(sharedStrings))
	}

	for i, sheetXML := range sheetXMLs {
		sheet, _ := w.Create(fmt.Sprintf("xl/worksheets/sheet%d.xml", i+1))
		sheet.Write([]byte(sheetXML))
	}

	require.NoError(t, w.Close())
	return buf.Bytes()
}

func testFile() domain.SourceFile {
	return domain.SourceFile{Name: "budget.xlsx", ParentFolder: "water-project"}
}

func TestSupportedExtensions(t *testing.T) {
	e := New()
	assert.Equal(t, []string{".xlsx", ".xls"}, e.SupportedExtensions())
}

func TestExtract_SheetMarkersAndRows(t *testing.T) {
	sheet := `<?xml version="1.0"?>
<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main">
<sheetData>
<row r="1"><c r="A1" t="s"><v>0</v></c><c r="B1" t="s"><v>1</v></c></row>
<row r="2"><c r="A2" t="s"><v>2</v></c><c r="B2"><v>20000</v></c></row>
<row r="3"><c r="A3"/><c r="B3"/></row>
</sheetData>
</worksheet>`

	sst := `<?xml version="1.0"?>
<sst xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main" count="3" uniqueCount="3">
<si><t>Category</t></si><si><t>Amount</t></si><si><t>Staff</t></si>
</sst>`

	content := createTestXLSX(t, []string{"Budget"}, []string{sheet}, sst)

	e := New()
	doc, err := e.Extract(context.Background(), testFile(), content)
	require.NoError(t, err)

	assert.Contains(t, doc.Text, "File: budget.xlsx")
	assert.Contains(t, doc.Text, "Location: water-project")
	assert.Contains(t, doc.Text, "Sheet: Budget")
	assert.Contains(t, doc.Text, "Category | Amount")
	assert.Contains(t, doc.Text, "Staff | 20000")
	// The all-blank row contributes nothing.
	assert.NotContains(t, doc.Text, " | \n | ")
	assert.Equal(t, []string{"Budget"}, doc.SheetNames)
}

func TestExtract_MultipleSheets(t *testing.T) {
	sheetA := `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData><row><c><v>1</v></c></row></sheetData></worksheet>`
	sheetB := `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData><row><c><v>2</v></c></row></sheetData></worksheet>`

	content := createTestXLSX(t, []string{"Overview", "Detail"}, []string{sheetA, sheetB}, "")

	e := New()
	doc, err := e.Extract(context.Background(), testFile(), content)
	require.NoError(t, err)

	assert.Equal(t, []string{"Overview", "Detail"}, doc.SheetNames)
	overviewIdx := strings.Index(doc.Text, "Sheet: Overview")
	detailIdx := strings.Index(doc.Text, "Sheet: Detail")
	require.GreaterOrEqual(t, overviewIdx, 0)
	require.GreaterOrEqual(t, detailIdx, 0)
	assert.Less(t, overviewIdx, detailIdx, "sheets should appear in workbook order")
}

func TestExtract_RowCap(t *testing.T) {
	var rows strings.Builder
	for i := 0; i < MaxRowsPerSheet+10; i++ {
		rows.WriteString(fmt.Sprintf(`<row><c><v>%d</v></c></row>`, i))
	}
	sheet := `<worksheet xmlns="http://schemas.openxmlformats.org/spreadsheetml/2006/main"><sheetData>` +
		rows.String() + `</sheetData></worksheet>`

	content := createTestXLSX(t, []string{"Big"}, []string{sheet}, "")

	e := New()
	doc, err := e.Extract(context.Background(), testFile(), content)
	require.NoError(t, err)

	assert.Contains(t, doc.Text, fmt.Sprintf("[Note: Truncated after %d rows]", MaxRowsPerSheet))
	assert.NotContains(t, doc.Text, fmt.Sprintf("\n%d\n", MaxRowsPerSheet+5))
}

func TestExtract_InvalidArchive(t *testing.T) {
	e := New()
	_, err := e.Extract(context.Background(), testFile(), []byte("not a zip"))
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtractionFailed)
}
