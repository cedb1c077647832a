// Package mdtable repairs the markdown tables that language models produce.
//
// Model output tends to drop separator rows, vary the number of cells per
// row, or answer with plain bullet lists where a table was asked for. The
// functions here turn that text into well-formed pipe tables that a
// CommonMark/GFM renderer and the DOCX exporter can both consume. None of
// them return errors: input that cannot be improved is passed through.
package mdtable

import (
	"regexp"
	"strings"
)

var separatorPattern = regexp.MustCompile(`^\|\s*[:\-]*-+[:\-]*(\s*\|\s*[:\-]*-+[:\-]*)*\s*\|?$`)

// IsTableLine reports whether line looks like a row of a pipe table: it
// starts with "|" once trimmed, or carries at least one interior pipe.
func IsTableLine(line string) bool {
	if strings.HasPrefix(strings.TrimSpace(line), "|") {
		return true
	}
	return strings.Contains(line, "|") && len(strings.Split(line, "|")) > 2
}

// IsSeparatorRow reports whether line is a header separator such as
// "|---|:-:|".
func IsSeparatorRow(line string) bool {
	return separatorPattern.MatchString(strings.TrimSpace(line))
}
