package intelligence

import (
	"errors"
	"fmt"
	"strings"
)

// PipelineConfig bounds the extraction and followup stages.
type PipelineConfig struct {
	MaxRepairs      int
	ContextMaxItems int
	ContextMaxChars int
	MessageMaxChars int
	EmailMinChars   int
	MessageMinChars int
	Signature       string
}

// DefaultPipelineConfig returns the stock pipeline bounds.
func DefaultPipelineConfig() PipelineConfig {
	p := DefaultFollowupPolicy()
	return PipelineConfig{
		MaxRepairs:      2,
		ContextMaxItems: 5,
		ContextMaxChars: 2000,
		MessageMaxChars: p.MessageMaxChars,
		EmailMinChars:   p.EmailMinChars,
		MessageMinChars: p.MessageMinChars,
	}
}

// FollowupPolicy derives the channel length rules from the config.
func (c PipelineConfig) FollowupPolicy() FollowupPolicy {
	return FollowupPolicy{
		EmailMinChars:   c.EmailMinChars,
		MessageMinChars: c.MessageMinChars,
		MessageMaxChars: c.MessageMaxChars,
	}
}

// PromptBuilder returns a builder honoring the configured message ceiling.
func (c PipelineConfig) PromptBuilder() PromptBuilder {
	return NewPromptBuilder(c.MessageMaxChars, c.Signature)
}

var (
	// ErrExtractionFailed marks a terminal extraction failure. Nothing is
	// persisted when extraction fails.
	ErrExtractionFailed = errors.New("extraction failed")

	// ErrFollowupFailed marks a terminal followup failure for one channel.
	ErrFollowupFailed = errors.New("followup generation failed")
)

// ExtractionFailedError carries the last problems seen before extraction
// gave up. Cause is the gateway error or the last validation error.
type ExtractionFailedError struct {
	Attempts     int
	LastProblems []string
	Cause        error
}

func (e *ExtractionFailedError) Error() string {
	return failureMessage(ErrExtractionFailed.Error(), e.Attempts, e.LastProblems, e.Cause)
}

func (e *ExtractionFailedError) Unwrap() error { return e.Cause }

func (e *ExtractionFailedError) Is(target error) bool { return target == ErrExtractionFailed }

// Channel names a followup output.
type Channel string

const (
	ChannelEmail   Channel = "email"
	ChannelMessage Channel = "message"
)

// FollowupFailedError reports which channel could not be generated.
type FollowupFailedError struct {
	Channel      Channel
	Attempts     int
	LastProblems []string
	Cause        error
}

func (e *FollowupFailedError) Error() string {
	return failureMessage(fmt.Sprintf("%s (%s)", ErrFollowupFailed.Error(), e.Channel), e.Attempts, e.LastProblems, e.Cause)
}

func (e *FollowupFailedError) Unwrap() error { return e.Cause }

func (e *FollowupFailedError) Is(target error) bool { return target == ErrFollowupFailed }

func failureMessage(head string, attempts int, problems []string, cause error) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s after %d attempt(s)", head, attempts)
	if len(problems) > 0 {
		b.WriteString(": ")
		b.WriteString(strings.Join(problems, "; "))
	} else if cause != nil {
		b.WriteString(": ")
		b.WriteString(cause.Error())
	}
	return b.String()
}
