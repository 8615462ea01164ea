package monitor

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/oshokin/ergomon/internal/domain/landmark"
)

const (
	// initialLineBuffer fits a 468 point frame.
	initialLineBuffer = 64 * 1024
	// maxLineSize bounds one NDJSON line.
	maxLineSize = 4 * 1024 * 1024
)

// FrameReader decodes NDJSON landmark frames, one JSON object per line.
type FrameReader struct {
	// scanner splits the input into lines.
	scanner *bufio.Scanner
	// line is the number of the last line read.
	line int
}

// NewFrameReader reads frames from r.
func NewFrameReader(r io.Reader) *FrameReader {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, initialLineBuffer), maxLineSize)

	return &FrameReader{
		scanner: scanner,
	}
}

// Next returns the next frame. Blank lines are skipped. It returns io.EOF at
// the end of input; a malformed line returns an error and the reader stays usable.
func (r *FrameReader) Next() (*landmark.Frame, error) {
	for r.scanner.Scan() {
		r.line++

		data := bytes.TrimSpace(r.scanner.Bytes())
		if len(data) == 0 {
			continue
		}

		frame := new(landmark.Frame)
		if err := json.Unmarshal(data, frame); err != nil {
			return nil, fmt.Errorf("decode frame on line %d: %w", r.line, err)
		}

		return frame, nil
	}

	if err := r.scanner.Err(); err != nil {
		return nil, fmt.Errorf("read frames: %w", err)
	}

	return nil, io.EOF
}

// Line returns the number of the last line read.
func (r *FrameReader) Line() int {
	return r.line
}

// replayEpoch anchors replayed frame timestamps.
var replayEpoch = time.Unix(0, 0).UTC()

// frameTime maps a frame timestamp in seconds onto the replay clock. Frames
// without a timestamp are spaced one frame period after the previous instant.
func frameTime(frame *landmark.Frame, previous time.Time, fps int) time.Time {
	if frame.Timestamp > 0 {
		return replayEpoch.Add(time.Duration(frame.Timestamp * float64(time.Second)))
	}

	return previous.Add(time.Second / time.Duration(max(1, fps)))
}
