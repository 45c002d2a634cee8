package journal

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"

	"github.com/FinCodeAI/sol-tx/internal/execution"
)

// JSONLRecorder appends results as JSON lines for later analysis. Write
// failures are logged; they never affect the trade.
type JSONLRecorder struct {
	mu   sync.Mutex
	log  zerolog.Logger
	file *os.File
	enc  *json.Encoder
}

// NewJSONLRecorder creates/opens the target file and returns a recorder.
func NewJSONLRecorder(path string, log zerolog.Logger) (*JSONLRecorder, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONLRecorder{
		log:  log,
		file: file,
		enc:  json.NewEncoder(file),
	}, nil
}

// Record writes a single result to the underlying JSONL file.
func (r *JSONLRecorder) Record(res execution.Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return
	}
	if err := r.enc.Encode(res); err != nil {
		r.log.Error().Err(err).Str("request_id", res.RequestID).Msg("journal write failed")
	}
}

// Close flushes and closes the file handle.
func (r *JSONLRecorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

// Multi fans a result out to several recorders in order.
type Multi []execution.Recorder

// Record implements execution.Recorder.
func (m Multi) Record(res execution.Result) {
	for _, r := range m {
		if r != nil {
			r.Record(res)
		}
	}
}
