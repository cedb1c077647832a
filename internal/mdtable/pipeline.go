package mdtable

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// minNormalizeLen is the shortest text worth inspecting for tables.
const minNormalizeLen = 5

// stage is one step of the normalization pipeline.
type stage func(string) string

var pipeline = []stage{ConvertBulletPoints, FixTableFormat, EnsureTableSpacing}

// Normalize runs the full repair pipeline over text: list-to-table
// conversion, table repair, then table spacing. Text without a pipe is
// returned untouched. A panic anywhere in the pipeline is logged and the
// original text is returned, so rendering never fails on formatting.
func Normalize(text string) string {
	return normalizeWith(text, pipeline)
}

func normalizeWith(text string, stages []stage) (out string) {
	if len(text) < minNormalizeLen || !strings.Contains(text, "|") {
		return text
	}

	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("table normalization failed, using original text",
				zap.String("panic", fmt.Sprint(r)),
				zap.Int("length", len(text)),
			)
			out = text
		}
	}()

	out = text
	for _, s := range stages {
		out = s(out)
	}
	return out
}
