package google

import (
	"fmt"
	"strconv"
	"strings"

	"essenza/internal/ledger"
)

// toTable converts a values matrix (as returned by the Sheets API) into a
// ledger table; the first row is the header.
func toTable(values [][]interface{}) ledger.Table {
	matrix := make([][]string, len(values))
	for i, row := range values {
		matrix[i] = toStrings(row)
	}
	return ledger.NewTable(matrix)
}

// toStrings renders cells as text. Floats are written without exponent so
// 1500000 stays "1500000" rather than "1.5e+06".
func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case nil:
			out[i] = ""
		default:
			out[i] = strings.TrimSpace(fmt.Sprint(v))
		}
	}
	return out
}

// quoteSheet returns an A1 range covering a whole tab.
func quoteSheet(name string) string {
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.EqualFold(strings.TrimSpace(v), strings.TrimSpace(target)) {
			return i
		}
	}
	return -1
}
