package dashboard

import (
	"path"
	"strconv"
	"strings"
)

// NoExtension keys files without an extension in the type histogram.
const NoExtension = "no extension"

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatFileSize renders bytes with binary prefixes and at most two
// decimals, trailing zeros dropped: 1536 is "1.5 KB".
func FormatFileSize(bytes int64) string {
	size := float64(bytes)
	order := 0
	for size >= 1024 && order < len(sizeUnits)-1 {
		order++
		size /= 1024
	}
	return strconv.FormatFloat(roundTo2(size), 'f', -1, 64) + " " + sizeUnits[order]
}

func roundTo2(f float64) float64 {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	r, _ := strconv.ParseFloat(s, 64)
	return r
}

// FileExtension is the lower-cased extension with its dot.
func FileExtension(name string) string {
	ext := strings.ToLower(path.Ext(name))
	if ext == "" || ext == "." {
		return NoExtension
	}
	return ext
}
