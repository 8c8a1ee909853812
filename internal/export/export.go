// Package export writes fetched comments to a CSV or JSON file.
package export

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/andywolf/ytcomments/internal/comments"
)

// Supported output formats.
const (
	FormatCSV  = "csv"
	FormatJSON = "json"
)

// ErrUnsupportedFormat is returned by Save when the format is neither csv
// nor json. No file is written in that case.
var ErrUnsupportedFormat = errors.New("unsupported save format")

var csvHeader = []string{"Comment ID", "Author Channel ID", "Text"}

func csvRow(c comments.Comment) []string {
	return []string{c.CommentID, c.AuthorChannelID, c.Text}
}

// Filename returns "<videoID>-comments.<format>".
func Filename(videoID, format string) string {
	return videoID + "-comments." + format
}

// WriteCSV writes a header and one three-column row per comment. Reply
// texts are not included.
func WriteCSV(w io.Writer, list []comments.Comment) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, c := range list {
		if err := cw.Write(csvRow(c)); err != nil {
			return fmt.Errorf("failed to write CSV row for %s: %w", c.CommentID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV: %w", err)
	}
	return nil
}

// WriteJSON writes the full comment array with four-space indentation.
func WriteJSON(w io.Writer, list []comments.Comment) error {
	if list == nil {
		list = []comments.Comment{}
	}
	data, err := json.MarshalIndent(list, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to marshal comments: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write JSON: %w", err)
	}
	return nil
}

// Save writes list to dir/Filename(videoID, format) and returns the path.
// The file is written to a temporary name first and renamed into place, so
// a failed run never leaves a truncated file behind. The file keeps the
// temp file's 0600 mode.
func Save(dir, videoID, format string, list []comments.Comment) (string, error) {
	var write func(io.Writer, []comments.Comment) error
	switch format {
	case FormatCSV:
		write = WriteCSV
	case FormatJSON:
		write = WriteJSON
	default:
		return "", fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
	}

	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(dir, Filename(videoID, format))

	tmp, err := os.CreateTemp(dir, ".ytcomments-*.tmp")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once the rename has succeeded
		_ = os.Remove(tmpName)
	}()

	if err := write(tmp, list); err != nil {
		_ = tmp.Close()
		return "", err
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
