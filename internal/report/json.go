package report

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/kestrelworks/chatsift/internal/pipeline"
)

// WriteJSON emits the full run result: records, per-conversation
// quality, the temporal profile and the aggregate summary.
func WriteJSON(w io.Writer, res *pipeline.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(res); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}
