package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/stormfront/pkg/domain/interfaces"
	"github.com/secmon-lab/stormfront/pkg/domain/model"
	"github.com/secmon-lab/stormfront/pkg/utils/errutil"
	"github.com/secmon-lab/stormfront/pkg/utils/logging"
)

// AskResult is the outcome of one conversational turn
type AskResult struct {
	Run *model.RunResult
	// Prompt is the text sent to the storm, including memory context
	Prompt    string
	Committed bool
	// CommitErr is set when the policy accepted the run but memory could not
	// store it. The run and its capture entry are still valid.
	CommitErr error
}

// Session runs prompts against the storm with rolling memory context.
// Ask calls are serialized because memory has a single writer.
type Session struct {
	storm   *Storm
	memory  *RollingMemory
	capture interfaces.CaptureLog
	policy  CommitPolicy
	now     func() time.Time

	mu sync.Mutex
}

// SessionOption configures Session
type SessionOption func(*Session)

// WithCaptureLog records every turn in log, committed or not
func WithCaptureLog(log interfaces.CaptureLog) SessionOption {
	return func(s *Session) {
		s.capture = log
	}
}

// WithCommitPolicy replaces the default commit policy
func WithCommitPolicy(policy CommitPolicy) SessionOption {
	return func(s *Session) {
		s.policy = policy
	}
}

// NewSession creates a session. The default policy is
// DefaultCommitPolicy with the storm's DCX threshold.
func NewSession(storm *Storm, memory *RollingMemory, opts ...SessionOption) (*Session, error) {
	if storm == nil {
		return nil, goerr.New("storm is required")
	}
	if memory == nil {
		return nil, goerr.New("rolling memory is required")
	}

	s := &Session{
		storm:  storm,
		memory: memory,
		policy: DefaultCommitPolicy(storm.Config().DCXThreshold),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// ComposePrompt prepends memory context to prompt
func ComposePrompt(memoryContext, prompt string) string {
	if strings.TrimSpace(memoryContext) == "" {
		return prompt
	}
	return memoryContext + "\nUSER: " + prompt
}

// Ask runs prompt with the current memory context. The turn is committed to
// memory only if the commit policy accepts the run.
func (s *Session) Ask(ctx context.Context, prompt string) (*AskResult, error) {
	if strings.TrimSpace(prompt) == "" {
		return nil, goerr.New("prompt is empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	memoryContext, err := s.memory.GetContext(ctx)
	if err != nil {
		return nil, err
	}
	composed := ComposePrompt(memoryContext, prompt)

	run, err := s.storm.Run(ctx, composed)
	if err != nil {
		return nil, err
	}

	result := &AskResult{
		Run:    run,
		Prompt: composed,
	}

	if s.capture != nil {
		entry := &model.CaptureEntry{
			Timestamp: s.now().UTC(),
			Prompt:    prompt,
			Output:    run.Text,
		}
		if err := s.capture.AppendCapture(ctx, entry); err != nil {
			_ = errutil.Handle(ctx, err, "failed to write capture log")
		}
	}

	if !s.policy.ShouldCommit(run) {
		logging.From(ctx).Info("turn not committed to memory",
			"run_id", run.ID,
			"frozen", run.Frozen,
			"confidence", run.Confidence)
		return result, nil
	}

	if err := s.memory.AppendTurn(ctx, prompt, run.Text); err != nil {
		result.CommitErr = goerr.Wrap(err, "failed to commit turn", goerr.V("run_id", run.ID))
		_ = errutil.Handle(ctx, result.CommitErr, "failed to commit turn to memory")
		return result, nil
	}
	result.Committed = true

	return result, nil
}

// Memory returns the session's rolling memory
func (s *Session) Memory() *RollingMemory {
	return s.memory
}
