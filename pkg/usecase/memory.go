package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/domain/model/config"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
)

const (
	memoryStreamHeader = "--- SYSTEM MEMORY STREAM ---\n"
	memoryStreamFooter = "\n----------------------------\n"
)

// FormatTurn renders one prompt/output pair as stored in recent history
func FormatTurn(prompt, output string) string {
	return fmt.Sprintf("USER: %s\nAICO: %s", prompt, output)
}

// CompressionFailureMarker is stored in the summary when the compressor fails
func CompressionFailureMarker(err error) string {
	return fmt.Sprintf("[COMPRESSION_FAILED: %s]", err.Error())
}

// RollingMemory is a bounded recent-history buffer backed by an
// append-only summary. Calls are serialized; separate processes sharing one
// repository must coordinate themselves.
type RollingMemory struct {
	repo       interfaces.MemoryStateRepository
	compressor interfaces.Compressor
	budget     int
	keep       int
	now        func() time.Time

	mu sync.Mutex
}

// MemoryOption configures RollingMemory
type MemoryOption func(*RollingMemory)

// WithMemoryClock replaces time.Now for block headers
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(m *RollingMemory) {
		m.now = now
	}
}

// NewRollingMemory creates the memory over repo
func NewRollingMemory(repo interfaces.MemoryStateRepository, compressor interfaces.Compressor, cfg config.Memory, opts ...MemoryOption) (*RollingMemory, error) {
	if repo == nil {
		return nil, goerr.New("memory state repository is required")
	}
	if compressor == nil {
		return nil, goerr.New("compressor is required")
	}
	if cfg.ContextWindowMax <= 0 {
		return nil, goerr.New("context window must be positive", goerr.V("context_window_max", cfg.ContextWindowMax))
	}
	if cfg.KeepRecent < 0 {
		return nil, goerr.New("keep_recent must not be negative", goerr.V("keep_recent", cfg.KeepRecent))
	}

	m := &RollingMemory{
		repo:       repo,
		compressor: compressor,
		budget:     cfg.ContextWindowMax,
		keep:       cfg.KeepRecent,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

func historySize(history []string) int {
	return utf8.RuneCountInString(strings.Join(history, "\n"))
}

// AppendTurn adds a turn and compresses older turns once the history
// exceeds the character budget. A compressor failure stores a visible
// marker instead of the summary; the turn itself is never lost.
func (m *RollingMemory) AppendTurn(ctx context.Context, prompt, output string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.repo.Load(ctx)
	if err != nil {
		return goerr.Wrap(err, "failed to load memory state")
	}

	state.RecentHistory = append(state.RecentHistory, FormatTurn(prompt, output))

	if size := historySize(state.RecentHistory); size > m.budget && len(state.RecentHistory) > m.keep {
		cut := len(state.RecentHistory) - m.keep
		older := state.RecentHistory[:cut]
		logger := logging.From(ctx)
		logger.Info("memory budget exceeded, compressing",
			"size", size,
			"budget", m.budget,
			"turns", len(older))

		chunk, err := m.compressor.Compress(ctx, strings.Join(older, "\n"))
		if err != nil {
			logger.Warn("compression failed, storing marker", "error", err)
			chunk = CompressionFailureMarker(err)
		}

		state.Summary += fmt.Sprintf("\n[MEM_BLOCK_%d] %s", m.now().Unix(), chunk)
		kept := make([]string, m.keep)
		copy(kept, state.RecentHistory[cut:])
		state.RecentHistory = kept
	}

	if err := m.repo.Save(ctx, state); err != nil {
		return goerr.Wrap(err, "failed to save memory state")
	}
	return nil
}

// GetContext renders the summary in a delimited block followed by the recent
// turns, or an empty string for an empty memory.
func (m *RollingMemory) GetContext(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.repo.Load(ctx)
	if err != nil {
		return "", goerr.Wrap(err, "failed to load memory state")
	}
	return RenderContext(state), nil
}

// RenderContext formats state the way GetContext does
func RenderContext(state *model.MemoryState) string {
	var b strings.Builder
	if state.Summary != "" {
		b.WriteString(memoryStreamHeader)
		b.WriteString(state.Summary)
		b.WriteString(memoryStreamFooter)
	}
	if len(state.RecentHistory) > 0 {
		b.WriteString(strings.Join(state.RecentHistory, "\n"))
	}
	return b.String()
}

// State returns the persisted state
func (m *RollingMemory) State(ctx context.Context) (*model.MemoryState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, err := m.repo.Load(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load memory state")
	}
	return state, nil
}

// Wipe resets summary and history. It cannot be undone.
func (m *RollingMemory) Wipe(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.repo.Save(ctx, model.NewMemoryState()); err != nil {
		return goerr.Wrap(err, "failed to wipe memory state")
	}
	logging.From(ctx).Info("memory wiped")
	return nil
}
