package reporting

import (
	"fmt"
	"io"
	"sync"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"github.com/xkilldash9x/ebay-flow/internal/results"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// jsonDocument is the on-disk JSON form. It embeds the snapshot so the file
// can be read back with results.DecodeSnapshot.
type jsonDocument struct {
	Title string `json:"title"`
	*results.Snapshot
	DurationSeconds float64 `json:"duration_seconds"`
}

// JSONReporter writes the run as an indented JSON document.
type JSONReporter struct {
	writer io.WriteCloser
	opts   Options
	logger *zap.Logger

	mu   sync.Mutex
	snap *results.Snapshot
}

func NewJSONReporter(writer io.WriteCloser, opts Options) *JSONReporter {
	opts = opts.withDefaults()
	return &JSONReporter{writer: writer, opts: opts, logger: opts.Logger.Named("json_reporter")}
}

func (r *JSONReporter) Write(snap *results.Snapshot) error {
	if snap == nil {
		return fmt.Errorf("json reporter: nil snapshot")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.snap = snap
	return nil
}

func (r *JSONReporter) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.snap == nil {
		r.writer.Close()
		return fmt.Errorf("json reporter: nothing was written")
	}

	doc := jsonDocument{
		Title:           r.opts.Title,
		Snapshot:        r.snap,
		DurationSeconds: r.snap.DurationSeconds(),
	}

	encoder := json.NewEncoder(r.writer)
	encoder.SetIndent("", "  ")
	encodeErr := encoder.Encode(doc)
	closeErr := r.writer.Close()

	if encodeErr != nil {
		r.logger.Error("Failed to encode run to JSON.", zap.Error(encodeErr))
		return fmt.Errorf("failed to encode json report: %w", encodeErr)
	}
	if closeErr != nil {
		r.logger.Error("Failed to close output writer.", zap.Error(closeErr))
		return closeErr
	}
	return nil
}
