package output

import (
	"fmt"
	"io"

	"github.com/dshills/gatekeeper/internal/review"
)

// MarkdownWriter outputs the review's summary body, the same markdown that
// would be posted to the pull request.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, rev *review.Review) error {
	_, err := fmt.Fprintln(w, rev.SummaryMarkdown)
	return err
}
