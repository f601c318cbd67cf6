package converter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/nconklindev/tidysheet/internal/types"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"
)

// Workbook is the part of a decoded spreadsheet the converter needs: how many
// sheets it has, and the cells of the first one.
type Workbook struct {
	SheetCount int
	Sheet      string
	Rows       []types.Row
}

// Decoder reads spreadsheet bytes into a Workbook.
type Decoder interface {
	Decode(data []byte) (*Workbook, error)
}

var (
	zipSignature = []byte("PK\x03\x04")
	oleSignature = []byte{0xD0, 0xCF, 0x11, 0xE0, 0xA1, 0xB1, 0x1A, 0xE1}
)

// decoderFor picks a decoder from the container signature rather than the
// file name, so a renamed file is still read correctly.
func decoderFor(data []byte) (Decoder, error) {
	switch {
	case bytes.HasPrefix(data, zipSignature):
		return xlsxDecoder{}, nil
	case bytes.HasPrefix(data, oleSignature):
		return xlsDecoder{}, nil
	default:
		return nil, decodeFailed("payload is neither an xlsx nor an xls workbook", nil)
	}
}

type xlsxDecoder struct{}

func (xlsxDecoder) Decode(data []byte) (*Workbook, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, decodeFailed("invalid xlsx workbook", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return &Workbook{}, nil
	}

	r := &xlsxSheetReader{
		f:          f,
		sheet:      sheets[0],
		dateStyles: make(map[int]bool),
	}
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		r.date1904 = *props.Date1904
	}

	rows, err := r.readRows()
	if err != nil {
		return nil, err
	}

	return &Workbook{
		SheetCount: len(sheets),
		Sheet:      sheets[0],
		Rows:       usedRange(rows),
	}, nil
}

type xlsxSheetReader struct {
	f          *excelize.File
	sheet      string
	date1904   bool
	dateStyles map[int]bool
}

func (r *xlsxSheetReader) readRows() ([]types.Row, error) {
	rows, err := r.f.Rows(r.sheet)
	if err != nil {
		return nil, decodeFailed(fmt.Sprintf("reading sheet %q", r.sheet), err)
	}
	defer rows.Close()

	var grid []types.Row
	for rowNum := 1; rows.Next(); rowNum++ {
		cols, err := rows.Columns(excelize.Options{RawCellValue: true})
		if err != nil {
			return nil, decodeFailed(fmt.Sprintf("reading row %d", rowNum), err)
		}

		row := make(types.Row, len(cols))
		for i, raw := range cols {
			name, err := excelize.CoordinatesToCellName(i+1, rowNum)
			if err != nil {
				return nil, decodeFailed(fmt.Sprintf("addressing row %d", rowNum), err)
			}
			row[i] = r.cell(name, raw)
		}
		grid = append(grid, row)
	}

	if err := rows.Error(); err != nil {
		return nil, decodeFailed(fmt.Sprintf("reading sheet %q", r.sheet), err)
	}
	return grid, nil
}

// cell types one raw value using the cell's declared type and, for numbers,
// its number format.
func (r *xlsxSheetReader) cell(name, raw string) types.Cell {
	if raw == "" {
		return types.EmptyCell()
	}

	cellType, err := r.f.GetCellType(r.sheet, name)
	if err != nil {
		cellType = excelize.CellTypeUnset
	}

	switch cellType {
	case excelize.CellTypeBool:
		return types.BoolCell(raw == "1" || strings.EqualFold(raw, "true"))
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString,
		excelize.CellTypeFormula, excelize.CellTypeError:
		return types.TextCell(raw)
	case excelize.CellTypeDate:
		if t, ok := parseISODate(raw); ok {
			return types.DateTimeCell(t)
		}
		return types.TextCell(raw)
	}

	num, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return types.TextCell(raw)
	}
	if r.isDateStyle(name) {
		if t, err := excelize.ExcelDateToTime(num, r.date1904); err == nil {
			return types.DateTimeCell(t)
		}
	}
	return types.NumberCell(num)
}

func (r *xlsxSheetReader) isDateStyle(name string) bool {
	idx, err := r.f.GetCellStyle(r.sheet, name)
	if err != nil || idx == 0 {
		return false
	}
	if isDate, ok := r.dateStyles[idx]; ok {
		return isDate
	}

	isDate := false
	if style, err := r.f.GetStyle(idx); err == nil && style != nil {
		isDate = isBuiltinDateFormat(style.NumFmt) ||
			(style.CustomNumFmt != nil && isCustomDateFormat(*style.CustomNumFmt))
	}
	r.dateStyles[idx] = isDate
	return isDate
}

func isBuiltinDateFormat(id int) bool {
	switch {
	case id >= 14 && id <= 22:
		return true
	case id >= 27 && id <= 36:
		return true
	case id >= 45 && id <= 47:
		return true
	case id >= 50 && id <= 58:
		return true
	}
	return false
}

// isCustomDateFormat looks for date or time tokens outside quoted literals,
// bracketed sections and escaped characters.
func isCustomDateFormat(format string) bool {
	var b strings.Builder
	inQuote, inBracket := false, false
	for i := 0; i < len(format); i++ {
		ch := format[i]
		switch {
		case inQuote:
			inQuote = ch != '"'
		case inBracket:
			inBracket = ch != ']'
		case ch == '"':
			inQuote = true
		case ch == '[':
			inBracket = true
		case ch == '\\':
			i++
		default:
			b.WriteByte(ch)
		}
	}
	return strings.ContainsAny(strings.ToLower(b.String()), "ydhs")
}

func parseISODate(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

type xlsDecoder struct{}

// Decode reads a legacy BIFF workbook. The xls library reports cell values as
// formatted text, so non-blank cells come back as Text.
func (xlsDecoder) Decode(data []byte) (wb *Workbook, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			wb = nil
			err = decodeFailed("malformed xls workbook", fmt.Errorf("%v", rec))
		}
	}()

	book, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, decodeFailed("invalid xls workbook", err)
	}
	if book == nil {
		return nil, decodeFailed("xls container has no Workbook stream", nil)
	}

	count := book.NumSheets()
	if count == 0 {
		return &Workbook{}, nil
	}

	sheet := book.GetSheet(0)
	if sheet == nil {
		return nil, decodeFailed("first sheet could not be loaded", nil)
	}

	var grid []types.Row
	for i := 0; i <= int(sheet.MaxRow); i++ {
		src := sheetRow(sheet, i)
		if src == nil {
			grid = append(grid, types.Row{})
			continue
		}

		last := src.LastCol()
		row := make(types.Row, 0, last)
		for c := 0; c < last; c++ {
			if v := src.Col(c); v != "" {
				row = append(row, types.TextCell(v))
			} else {
				row = append(row, types.EmptyCell())
			}
		}
		grid = append(grid, row)
	}

	return &Workbook{
		SheetCount: count,
		Sheet:      sheet.Name,
		Rows:       usedRange(grid),
	}, nil
}

// sheetRow returns row i, or nil when the sheet holds no record for it.
// WorkSheet.Row panics on missing rows instead of returning nil.
func sheetRow(sheet *xls.WorkSheet, i int) (row *xls.Row) {
	defer func() {
		if recover() != nil {
			row = nil
		}
	}()
	return sheet.Row(i)
}

// usedRange crops the grid to the block that holds data: blank rows above
// and below it and blank columns to its left are dropped, so the first
// non-empty row becomes the header row. Blank rows inside the block stay.
func usedRange(rows []types.Row) []types.Row {
	rows = trimTrailingEmptyRows(rows)

	top := 0
	for top < len(rows) && rowIsEmpty(rows[top]) {
		top++
	}
	rows = rows[top:]

	left := -1
	for _, row := range rows {
		for i, c := range row {
			if c.IsEmpty() {
				continue
			}
			if left < 0 || i < left {
				left = i
			}
			break
		}
	}
	if left <= 0 {
		return rows
	}

	cropped := make([]types.Row, len(rows))
	for i, row := range rows {
		if len(row) > left {
			cropped[i] = row[left:]
		} else {
			cropped[i] = types.Row{}
		}
	}
	return cropped
}

func trimTrailingEmptyRows(rows []types.Row) []types.Row {
	end := len(rows)
	for end > 0 && rowIsEmpty(rows[end-1]) {
		end--
	}
	return rows[:end]
}

func rowIsEmpty(row types.Row) bool {
	for _, c := range row {
		if !c.IsEmpty() {
			return false
		}
	}
	return true
}
