package harvest

import (
	"strconv"

	"mpdharvest/internal/models"

	"github.com/valyala/fasttemplate"
)

// DefaultLineFormat prints only the URL.
const DefaultLineFormat = "{url}"

// FormatLine renders one output line for the idx-th segment. Placeholders:
// {index} {url} {rep} {bandwidth} {number} {time} {kind}. Unknown
// placeholders are kept as they are.
func FormatLine(format string, idx int, seg models.Segment) string {
	return fasttemplate.ExecuteStringStd(format, "{", "}", map[string]interface{}{
		"index":     strconv.Itoa(idx),
		"url":       seg.URL,
		"rep":       seg.RepID,
		"bandwidth": strconv.FormatUint(seg.Bandwidth, 10),
		"number":    strconv.FormatUint(seg.Number, 10),
		"time":      strconv.FormatUint(seg.Time, 10),
		"kind":      seg.Kind(),
	})
}
