package converter

import (
	"fmt"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

const (
	XLSXMediaType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	XLSMediaType  = "application/vnd.ms-excel"
)

// AllowedExtensions lists the file extensions accepted as uploads.
var AllowedExtensions = []string{".xlsx", ".xls"}

// AcceptUpload rejects files that are neither declared as a spreadsheet media
// type nor named with a spreadsheet extension.
func AcceptUpload(fileName, mediaType string) error {
	if base, _, err := mime.ParseMediaType(mediaType); err == nil {
		if base == XLSXMediaType || base == XLSMediaType {
			return nil
		}
	}

	for _, ext := range AllowedExtensions {
		if strings.HasSuffix(fileName, ext) {
			return nil
		}
	}

	return &ProcessingError{
		Type:    UnsupportedType,
		Message: fmt.Sprintf("%s is not an Excel file (.xlsx or .xls)", fileName),
	}
}

// DetectMediaType sniffs the media type of a payload from its content.
func DetectMediaType(data []byte) string {
	return mimetype.Detect(data).String()
}
