package output

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dshills/gatekeeper/internal/review"
)

// JSONWriter outputs the full review as JSON.
type JSONWriter struct{}

func (j *JSONWriter) Write(w io.Writer, rev *review.Review) error {
	data, err := json.MarshalIndent(rev, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing JSON: %w", err)
	}
	_, err = fmt.Fprintln(w)
	return err
}
