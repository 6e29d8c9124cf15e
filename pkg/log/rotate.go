package log

import (
	"io"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
)

// NewRotatingWriter returns a writer that appends to a dated log file in
// dir, named <prefix>_2006-01-02.log for the current day and rotated at
// midnight. A symlink named <prefix>_last.log points at the newest file.
// Files older than maxAge are pruned on rotation.
//
// The pipeline uses this as the sink for the training log, so one run
// per day lands in its own file and long experiments spanning midnight
// split cleanly.
func NewRotatingWriter(dir, prefix string, maxAge time.Duration) (io.WriteCloser, error) {
	base := filepath.Join(dir, prefix)
	return rotatelogs.New(
		base+"_%Y-%m-%d.log",
		rotatelogs.WithLinkName(base+"_last.log"),
		rotatelogs.WithMaxAge(maxAge),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
}
