package converter

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/nconklindev/tidysheet/internal/header"
	"github.com/nconklindev/tidysheet/internal/logger"
	"github.com/nconklindev/tidysheet/internal/types"
)

// Converter turns spreadsheet payloads into datasets with normalized headers
// and writes them back out as CSV. It keeps no state between calls.
type Converter struct {
	labels         *header.Normalizer
	keepDuplicates bool
	log            logger.Logger
}

type Option func(*Converter)

// WithTokenSource sets the token source used for blank header cells.
func WithTokenSource(ts header.TokenSource) Option {
	return func(c *Converter) { c.labels = header.New(ts) }
}

// WithKeepDuplicates leaves repeated header labels as they are instead of
// suffixing them with _2, _3...
func WithKeepDuplicates(keep bool) Option {
	return func(c *Converter) { c.keepDuplicates = keep }
}

func WithLogger(l logger.Logger) Option {
	return func(c *Converter) {
		if l != nil {
			c.log = l
		}
	}
}

func New(opts ...Option) *Converter {
	c := &Converter{
		labels: header.New(nil),
		log:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BuildDataset decodes the first sheet of a spreadsheet payload. Row 0
// becomes the normalized headers; every other row is kept as decoded.
func (c *Converter) BuildDataset(data []byte, fileName string) (*types.Dataset, error) {
	if len(data) == 0 {
		return nil, unreadable("file is empty", nil)
	}

	dec, err := decoderFor(data)
	if err != nil {
		c.log.Warn("Unrecognized spreadsheet payload", "file", fileName, "bytes", len(data))
		return nil, err
	}

	wb, err := dec.Decode(data)
	if err != nil {
		c.log.Warn("Spreadsheet decode failed", "file", fileName, "error", err.Error())
		return nil, err
	}
	if wb.SheetCount == 0 {
		return nil, decodeFailed("workbook contains no sheets", nil)
	}
	if len(wb.Rows) == 0 {
		return nil, decodeFailed("empty sheet", nil)
	}

	headers := c.labels.NormalizeRow(wb.Rows[0])
	if !c.keepDuplicates {
		var renamed int
		headers, renamed = header.Uniquify(headers)
		if renamed > 0 {
			c.log.Info("Renamed duplicate headers", "file", fileName, "renamed", renamed)
		}
	}

	ds := &types.Dataset{
		Headers:  headers,
		Rows:     wb.Rows[1:],
		BaseName: BaseName(fileName),
	}

	c.log.Info("Dataset built",
		"file", fileName,
		"sheet", wb.Sheet,
		"sheets", wb.SheetCount,
		"columns", len(ds.Headers),
		"rows", len(ds.Rows),
	)
	return ds, nil
}

// Load reads a spreadsheet from disk, checks its type and builds a dataset.
func (c *Converter) Load(path string) (*types.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, unreadable(fmt.Sprintf("reading %s", filepath.Base(path)), err)
	}

	name := filepath.Base(path)
	if err := AcceptUpload(name, DetectMediaType(data)); err != nil {
		c.log.Warn("Rejected upload", "file", name)
		return nil, err
	}

	return c.BuildDataset(data, name)
}

// Save exports ds and writes the CSV into dir.
func (c *Converter) Save(ds *types.Dataset, dir string) (string, error) {
	blob, err := c.Export(ds)
	if err != nil {
		return "", err
	}

	path, err := WriteBlob(dir, blob)
	if err != nil {
		c.log.Error("Export write failed", "dir", dir, "error", err.Error())
		return "", err
	}

	c.log.Info("Export written", "path", path, "bytes", len(blob.Data), "rows", len(ds.Rows))
	return path, nil
}

// Convert loads inputFile and writes <base>_normalized.csv into outputDir,
// or next to the input when outputDir is empty.
func (c *Converter) Convert(inputFile, outputDir string) (*types.ConversionResult, error) {
	ds, err := c.Load(inputFile)
	if err != nil {
		return nil, err
	}

	if outputDir == "" {
		outputDir = filepath.Dir(inputFile)
	}

	outputFile, err := c.Save(ds, outputDir)
	if err != nil {
		return nil, err
	}

	return &types.ConversionResult{
		InputFile:   inputFile,
		OutputFile:  outputFile,
		Headers:     ds.Headers,
		RowsWritten: len(ds.Rows),
	}, nil
}

// BaseName strips the final extension from a file name. Names without an
// extension, or ending in a bare dot, are returned unchanged.
func BaseName(fileName string) string {
	idx := strings.LastIndexByte(fileName, '.')
	if idx < 0 || idx == len(fileName)-1 {
		return fileName
	}
	if strings.ContainsRune(fileName[idx+1:], '/') {
		return fileName
	}
	return fileName[:idx]
}
