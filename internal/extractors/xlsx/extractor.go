// Package xlsx extracts tabular text from spreadsheet workbooks.
package xlsx

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/veldt-labs/grantrag-cli/internal/core/domain"
	"github.com/veldt-labs/grantrag-cli/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.Extractor = (*Extractor)(nil)

// MaxRowsPerSheet caps how many rows of a sheet are emitted. Rows beyond
// the cap are replaced by a single truncation marker.
const MaxRowsPerSheet = 1000

// Extractor handles XLSX workbooks.
type Extractor struct{}

// New creates a new XLSX extractor.
func New() *Extractor {
	return &Extractor{}
}

// SupportedExtensions returns the extensions this extractor handles.
func (e *Extractor) SupportedExtensions() []string {
	return []string{".xlsx", ".xls"}
}

// Extract emits a "Sheet: <name>" marker per sheet followed by its
// non-blank rows, cells stringified and joined by " | ". Sheet names are
// recorded as structural metadata.
func (e *Extractor) Extract(_ context.Context, file domain.SourceFile, content []byte) (*domain.ExtractedDocument, error) {
	reader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("%w: not a valid xlsx archive: %w", domain.ErrExtractionFailed, err)
	}

	wb, err := parseWorkbook(reader)
	if err != nil {
		return nil, err
	}

	shared, err := parseSharedStrings(reader)
	if err != nil {
		return nil, err
	}

	lines := []string{
		fmt.Sprintf("File: %s", file.Name),
		fmt.Sprintf("Location: %s", file.ParentFolder),
	}

	sheetNames := make([]string, 0, len(wb.sheets))
	for _, sheet := range wb.sheets {
		sheetNames = append(sheetNames, sheet.name)
		lines = append(lines, fmt.Sprintf("\nSheet: %s", sheet.name))
		lines = append(lines, extractSheetRows(reader, sheet.path, shared)...)
	}

	return &domain.ExtractedDocument{
		Text:       strings.Join(lines, "\n"),
		SheetNames: sheetNames,
	}, nil
}

// sheetRef pairs a sheet's display name with its archive path.
type sheetRef struct {
	name string
	path string
}

type workbookInfo struct {
	sheets []sheetRef
}

// workbookXML represents xl/workbook.xml.
type workbookXML struct {
	Sheets struct {
		Sheets []struct {
			Name string `xml:"name,attr"`
			RID  string `xml:"id,attr"`
		} `xml:"sheet"`
	} `xml:"sheets"`
}

// relsXML represents xl/_rels/workbook.xml.rels.
type relsXML struct {
	Relationships []struct {
		ID     string `xml:"Id,attr"`
		Target string `xml:"Target,attr"`
	} `xml:"Relationship"`
}

// parseWorkbook reads the sheet list in workbook order and resolves each
// sheet's worksheet path through the workbook relationships.
func parseWorkbook(reader *zip.Reader) (*workbookInfo, error) {
	wbData, err := readArchiveFile(reader, "xl/workbook.xml")
	if err != nil {
		return nil, fmt.Errorf("%w: missing xl/workbook.xml", domain.ErrExtractionFailed)
	}

	var wb workbookXML
	if err := xml.Unmarshal(wbData, &wb); err != nil {
		return nil, fmt.Errorf("%w: parse workbook.xml: %w", domain.ErrExtractionFailed, err)
	}

	targets := make(map[string]string)
	if relsData, err := readArchiveFile(reader, "xl/_rels/workbook.xml.rels"); err == nil {
		var rels relsXML
		if err := xml.Unmarshal(relsData, &rels); err == nil {
			for _, rel := range rels.Relationships {
				targets[rel.ID] = rel.Target
			}
		}
	}

	info := &workbookInfo{}
	for i, sheet := range wb.Sheets.Sheets {
		target, ok := targets[sheet.RID]
		if !ok {
			// No relationship part; fall back to conventional naming.
			target = fmt.Sprintf("worksheets/sheet%d.xml", i+1)
		}
		target = strings.TrimPrefix(target, "/xl/")
		if !strings.HasPrefix(target, "worksheets/") {
			target = strings.TrimPrefix(target, "/")
		}
		info.sheets = append(info.sheets, sheetRef{
			name: sheet.Name,
			path: "xl/" + target,
		})
	}

	return info, nil
}

// sharedStringsXML represents xl/sharedStrings.xml. Rich-text strings
// carry their text in nested runs.
type sharedStringsXML struct {
	Items []struct {
		Text string `xml:"t"`
		Runs []struct {
			Text string `xml:"t"`
		} `xml:"r"`
	} `xml:"si"`
}

// parseSharedStrings reads the shared string table; absent is valid.
func parseSharedStrings(reader *zip.Reader) ([]string, error) {
	data, err := readArchiveFile(reader, "xl/sharedStrings.xml")
	if err != nil {
		return nil, nil
	}

	var sst sharedStringsXML
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil, fmt.Errorf("%w: parse sharedStrings.xml: %w", domain.ErrExtractionFailed, err)
	}

	strs := make([]string, len(sst.Items))
	for i, item := range sst.Items {
		if item.Text != "" {
			strs[i] = item.Text
			continue
		}
		var b strings.Builder
		for _, r := range item.Runs {
			b.WriteString(r.Text)
		}
		strs[i] = b.String()
	}
	return strs, nil
}

// sheetXML represents a worksheet's row data.
type sheetXML struct {
	Rows []struct {
		Cells []struct {
			Type   string `xml:"t,attr"`
			Value  string `xml:"v"`
			Inline struct {
				Text string `xml:"t"`
			} `xml:"is"`
		} `xml:"c"`
	} `xml:"sheetData>row"`
}

// extractSheetRows renders a sheet's non-blank rows up to MaxRowsPerSheet.
func extractSheetRows(reader *zip.Reader, path string, shared []string) []string {
	data, err := readArchiveFile(reader, path)
	if err != nil {
		return nil
	}

	var sheet sheetXML
	if err := xml.Unmarshal(data, &sheet); err != nil {
		return nil
	}

	var lines []string
	for i, row := range sheet.Rows {
		if i >= MaxRowsPerSheet {
			lines = append(lines, fmt.Sprintf("[Note: Truncated after %d rows]", MaxRowsPerSheet))
			break
		}

		cells := make([]string, 0, len(row.Cells))
		blank := true
		for _, cell := range row.Cells {
			value := cellValue(cell.Type, cell.Value, cell.Inline.Text, shared)
			if strings.TrimSpace(value) != "" {
				blank = false
			}
			cells = append(cells, value)
		}

		if !blank {
			lines = append(lines, strings.Join(cells, " | "))
		}
	}

	return lines
}

// cellValue stringifies a cell, resolving shared-string references.
func cellValue(cellType, value, inline string, shared []string) string {
	switch cellType {
	case "s":
		var idx int
		if _, err := fmt.Sscanf(value, "%d", &idx); err == nil && idx >= 0 && idx < len(shared) {
			return shared[idx]
		}
		return ""
	case "inlineStr":
		return inline
	default:
		return value
	}
}

// readArchiveFile reads one file from the zip archive.
func readArchiveFile(reader *zip.Reader, name string) ([]byte, error) {
	for _, f := range reader.File {
		if f.Name != name {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("file %s not in archive", name)
}
