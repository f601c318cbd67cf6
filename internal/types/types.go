package types

import (
	"math"
	"strconv"
	"strings"
	"time"
)

// Kind tags the value held by a Cell.
type Kind int

const (
	Empty Kind = iota
	Text
	Number
	Boolean
	DateTime
)

func (k Kind) String() string {
	switch k {
	case Text:
		return "text"
	case Number:
		return "number"
	case Boolean:
		return "boolean"
	case DateTime:
		return "datetime"
	default:
		return "empty"
	}
}

// Cell is one decoded spreadsheet value. The zero value is an empty cell.
type Cell struct {
	Kind Kind
	Str  string
	Num  float64
	Bool bool
	Time time.Time
}

func EmptyCell() Cell               { return Cell{} }
func TextCell(s string) Cell        { return Cell{Kind: Text, Str: s} }
func NumberCell(f float64) Cell     { return Cell{Kind: Number, Num: f} }
func BoolCell(b bool) Cell          { return Cell{Kind: Boolean, Bool: b} }
func DateTimeCell(t time.Time) Cell { return Cell{Kind: DateTime, Time: t} }

func (c Cell) IsEmpty() bool {
	return c.Kind == Empty
}

// String returns the textual form of the cell, as written to CSV.
func (c Cell) String() string {
	switch c.Kind {
	case Text:
		return c.Str
	case Number:
		return formatNumber(c.Num)
	case Boolean:
		if c.Bool {
			return "TRUE"
		}
		return "FALSE"
	case DateTime:
		if c.Time.Hour() == 0 && c.Time.Minute() == 0 && c.Time.Second() == 0 && c.Time.Nanosecond() == 0 {
			return c.Time.Format("2006-01-02")
		}
		return c.Time.Format("2006-01-02 15:04:05")
	default:
		return ""
	}
}

// formatNumber writes the shortest decimal form, switching to exponent form
// (1e+21, 1.5e-7) outside [1e-6, 1e21) the way spreadsheet text coercion does.
func formatNumber(f float64) string {
	abs := math.Abs(f)
	if abs == 0 || (abs >= 1e-6 && abs < 1e21) || math.IsInf(f, 0) || math.IsNaN(f) {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}

	mantissa, exp, _ := strings.Cut(strconv.FormatFloat(f, 'e', -1, 64), "e")
	digits := strings.TrimLeft(exp[1:], "0")
	return mantissa + "e" + exp[:1] + digits
}

// Row holds the cells of one sheet row in column order. Rows may be shorter
// or longer than the header row.
type Row []Cell

// At returns the cell in column i, or an empty cell when the row is shorter.
func (r Row) At(i int) Cell {
	if i < 0 || i >= len(r) {
		return Cell{}
	}
	return r[i]
}

// Dataset is the result of processing one uploaded spreadsheet.
type Dataset struct {
	Headers  []string
	Rows     []Row
	BaseName string
}

// Preview returns at most n leading rows.
func (d *Dataset) Preview(n int) []Row {
	if n < 0 {
		n = 0
	}
	if n > len(d.Rows) {
		n = len(d.Rows)
	}
	return d.Rows[:n]
}

// Hidden reports how many rows a preview of n rows leaves out.
func (d *Dataset) Hidden(n int) int {
	if n >= len(d.Rows) {
		return 0
	}
	if n < 0 {
		return len(d.Rows)
	}
	return len(d.Rows) - n
}

// Width is the number of columns the dataset spans: the header count, or the
// length of the widest row when a row runs past the headers.
func (d *Dataset) Width() int {
	width := len(d.Headers)
	for _, row := range d.Rows {
		if len(row) > width {
			width = len(row)
		}
	}
	return width
}

// Blob is an export artifact ready to be written or downloaded.
type Blob struct {
	Name      string
	MediaType string
	Data      []byte
}

type ConversionResult struct {
	InputFile   string
	OutputFile  string
	Headers     []string
	RowsWritten int
}
