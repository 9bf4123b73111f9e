package encoding

import "fmt"

// FormatMB renders a byte count as mebibytes with one decimal, e.g. "12.3MB".
func FormatMB(bytes int64) string {
	return fmt.Sprintf("%.1fMB", float64(bytes)/1024/1024)
}
