package parser

import (
	"encoding/json"
	"path/filepath"
	"strings"
)

// DetectByExtension picks a format from the file name. Anything that is not
// .json or .csv is treated as plain text.
func DetectByExtension(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON
	case ".csv":
		return FormatCSV
	}
	return FormatText
}

// DetectByContent sniffs the format from the text itself. Used only when no
// explicit format and no file extension is available.
func DetectByContent(text string) Format {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		if json.Valid([]byte(trimmed)) {
			return FormatJSON
		}
	}
	for _, line := range strings.Split(trimmed, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.Contains(line, "id,") && strings.Contains(line, "level") {
			return FormatCSV
		}
		break
	}
	return FormatText
}
