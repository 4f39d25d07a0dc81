package recorder

import (
	"time"

	"github.com/go-rod/recorder/lib/sanitize"
)

// TimestampLayout is the ISO 8601 layout used in the file names, always in UTC
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// Ext of the output video
const Ext = ".mp4"

// Filename for the video of url recorded at now, such as
//
//	httpsexample.com__2024-03-01T120000.000Z.mp4
//
// Only the url part is shortened when the name is too long, so recordings of
// the same url at different times never share a name.
func Filename(url string, now time.Time) string {
	suffix := sanitize.Filename("__" + now.UTC().Format(TimestampLayout) + Ext)

	base := sanitize.Filename(url)
	if base == "" && url != "" {
		// the url is a reserved device name, such as "con.example"
		base = sanitize.Filename("_" + url)
	}

	return sanitize.Cut(base, sanitize.MaxLength-len(suffix)) + suffix
}
