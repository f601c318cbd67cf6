package types

import (
	"testing"
	"time"
)

func TestCellString(t *testing.T) {
	tests := []struct {
		name     string
		cell     Cell
		expected string
	}{
		{"Empty", EmptyCell(), ""},
		{"Text", TextCell(" as is "), " as is "},
		{"Integer", NumberCell(42), "42"},
		{"Decimal", NumberCell(1.5), "1.5"},
		{"Zero", NumberCell(0), "0"},
		{"Negative", NumberCell(-0.25), "-0.25"},
		{"Large but below exponent range", NumberCell(123456789012), "123456789012"},
		{"Just below 1e21", NumberCell(999999999999999900000), "999999999999999900000"},
		{"1e21", NumberCell(1e21), "1e+21"},
		{"Negative large", NumberCell(-2.5e22), "-2.5e+22"},
		{"Huge", NumberCell(1e100), "1e+100"},
		{"Smallest plain", NumberCell(0.000001), "0.000001"},
		{"Tiny", NumberCell(1.5e-7), "1.5e-7"},
		{"True", BoolCell(true), "TRUE"},
		{"False", BoolCell(false), "FALSE"},
		{"Date", DateTimeCell(time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)), "2024-01-15"},
		{"Date and time", DateTimeCell(time.Date(2024, 1, 15, 8, 30, 5, 0, time.UTC)), "2024-01-15 08:30:05"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cell.String(); got != tt.expected {
				t.Errorf("String() = %q; want %q", got, tt.expected)
			}
		})
	}
}

func TestRowAt(t *testing.T) {
	row := Row{TextCell("a")}
	if got := row.At(0); got != TextCell("a") {
		t.Errorf("At(0) = %v; want text a", got)
	}
	for _, i := range []int{-1, 1, 10} {
		if !row.At(i).IsEmpty() {
			t.Errorf("At(%d) = %v; want empty", i, row.At(i))
		}
	}
}

func TestDatasetWidth(t *testing.T) {
	tests := []struct {
		name     string
		ds       Dataset
		expected int
	}{
		{"Headers only", Dataset{Headers: []string{"a", "b"}}, 2},
		{"Short rows", Dataset{Headers: []string{"a", "b"}, Rows: []Row{{TextCell("x")}}}, 2},
		{"Wide row", Dataset{Headers: []string{"a"}, Rows: []Row{{}, {TextCell("x"), TextCell("y"), TextCell("z")}}}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ds.Width(); got != tt.expected {
				t.Errorf("Width() = %d; want %d", got, tt.expected)
			}
		})
	}
}

func TestDatasetPreview(t *testing.T) {
	ds := &Dataset{Rows: make([]Row, 25)}

	tests := []struct {
		n       int
		preview int
		hidden  int
	}{
		{10, 10, 15},
		{25, 25, 0},
		{40, 25, 0},
		{0, 0, 25},
		{-1, 0, 25},
	}

	for _, tt := range tests {
		if got := len(ds.Preview(tt.n)); got != tt.preview {
			t.Errorf("len(Preview(%d)) = %d; want %d", tt.n, got, tt.preview)
		}
		if got := ds.Hidden(tt.n); got != tt.hidden {
			t.Errorf("Hidden(%d) = %d; want %d", tt.n, got, tt.hidden)
		}
	}
}
