package usecase

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/service/compressor"
	"github.com/secmon-lab/stormfront/pkg/utils/safe"
)

// Digest compresses a continuous-context transcript file. Non-empty lines
// are joined with spaces, compressed semantically, and only the last
// maxChars characters of the rendering are kept. A missing file yields "".
func Digest(ctx context.Context, path string, engine *compressor.SemanticCompressor, maxChars int) (string, error) {
	fd, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", goerr.Wrap(err, "failed to open transcript", goerr.V("path", path))
	}
	defer safe.Close(ctx, fd)

	var lines []string
	scanner := bufio.NewScanner(fd)
	scanner.Buffer(make([]byte, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		if line := strings.TrimSpace(scanner.Text()); line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return "", goerr.Wrap(err, "failed to read transcript", goerr.V("path", path))
	}
	if len(lines) == 0 {
		return "", nil
	}

	rendered, _ := engine.Compress(strings.Join(lines, " "))
	return lastRunes(rendered, maxChars), nil
}

func lastRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[len(runes)-n:])
}

// RenderHistory formats captured turns as PROMPT/RESPONSE blocks
func RenderHistory(entries []*model.CaptureEntry) string {
	blocks := make([]string, 0, len(entries))
	for _, e := range entries {
		blocks = append(blocks, fmt.Sprintf("PROMPT: %s\nRESPONSE: %s", e.Prompt, e.Output))
	}
	return strings.Join(blocks, "\n")
}
