// Package audit keeps append-only newline-delimited JSON logs: one record
// per storm run and one record per captured turn.
package audit

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
	"github.com/secmon-lab/stormfront/pkg/utils/safe"
)

const maxLineSize = 4 * 1024 * 1024

// file appends JSON records to path, one per line
type file[T any] struct {
	path string
	mu   sync.Mutex
}

func (f *file[T]) append(ctx context.Context, record *T) error {
	raw, err := json.Marshal(record)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal log record")
	}
	raw = append(raw, '\n')

	f.mu.Lock()
	defer f.mu.Unlock()

	if dir := filepath.Dir(f.path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return goerr.Wrap(err, "failed to create log dir", goerr.V("dir", dir))
		}
	}

	fd, err := os.OpenFile(f.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return goerr.Wrap(err, "failed to open log file", goerr.V("path", f.path))
	}
	defer safe.Close(ctx, fd)

	if _, err := fd.Write(raw); err != nil {
		return goerr.Wrap(err, "failed to append log record", goerr.V("path", f.path))
	}
	return nil
}

// read returns all well-formed records. Malformed lines are skipped and a
// missing file yields no records.
func (f *file[T]) read(ctx context.Context) ([]*T, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	fd, err := os.Open(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to open log file", goerr.V("path", f.path))
	}
	defer safe.Close(ctx, fd)

	return decodeLines[T](ctx, fd, f.path)
}

func decodeLines[T any](ctx context.Context, r io.Reader, source string) ([]*T, error) {
	logger := logging.From(ctx)

	var records []*T
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var record T
		if err := json.Unmarshal(line, &record); err != nil {
			logger.Debug("skip malformed log line", "source", source, "line", lineNo, "error", err)
			continue
		}
		records = append(records, &record)
	}
	if err := scanner.Err(); err != nil {
		return records, goerr.Wrap(err, "failed to scan log file", goerr.V("source", source))
	}
	return records, nil
}
