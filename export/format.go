package export

import (
	"fmt"
	"strings"
)

// Format is an output artifact type.
type Format string

const (
	PDF  Format = "pdf"
	DOCX Format = "docx"
	PNG  Format = "png"
)

// Formats lists the supported formats in preference order.
func Formats() []Format { return []Format{PDF, DOCX, PNG} }

// ParseFormat accepts a format name with or without a leading dot. Empty means PDF.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case "":
		return PDF, nil
	case PDF, DOCX, PNG:
		return f, nil
	}
	return "", fmt.Errorf("unsupported export format %q", s)
}

func (f Format) Extension() string { return "." + string(f) }

func (f Format) ContentType() string {
	switch f {
	case DOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case PNG:
		return "image/png"
	default:
		return "application/pdf"
	}
}
