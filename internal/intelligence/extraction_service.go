package intelligence

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/llm"
)

// ExtractionService turns raw conversation text into a validated record.
type ExtractionService interface {
	Extract(ctx context.Context, in domain.ConversationInput, history domain.ClientHistory) (*domain.InteractionRecord, error)
}

type extractionService struct {
	loop    RepairLoop[*domain.InteractionRecord]
	prompts PromptBuilder
}

// NewExtractionService creates an ExtractionService backed by an LLM client.
func NewExtractionService(client llm.LLMClient, cfg PipelineConfig, logger *slog.Logger) ExtractionService {
	return &extractionService{
		loop: RepairLoop[*domain.InteractionRecord]{
			Client:     client,
			MaxRepairs: cfg.MaxRepairs,
			Logger:     logger,
		},
		prompts: cfg.PromptBuilder(),
	}
}

func (s *extractionService) Extract(ctx context.Context, in domain.ConversationInput, history domain.ClientHistory) (*domain.InteractionRecord, error) {
	if strings.TrimSpace(in.ClientID) == "" {
		return nil, fmt.Errorf("extract: client id is required")
	}

	prompt, err := s.prompts.Build(TaskExtraction, ExtractionPayload{
		RawText: in.RawText,
		Date:    in.Timestamp,
		History: history,
	})
	if err != nil {
		return nil, err
	}

	rec, _, err := s.loop.Run(ctx, prompt, parseRecord)
	if err != nil {
		return nil, asExtractionFailed(err)
	}

	rec.ClientID = in.ClientID
	rec.RawText = in.RawText
	rec.Date = in.Timestamp
	if err := rec.CheckInvariants(); err != nil {
		return nil, &ExtractionFailedError{Attempts: 1, Cause: err}
	}
	return rec, nil
}

func parseRecord(raw string) (*domain.InteractionRecord, error) {
	obj, err := llm.ExtractObject(raw)
	if err != nil {
		return nil, err
	}
	return ValidateRecord(obj)
}

func asExtractionFailed(err error) error {
	var loopErr *LoopError
	if errors.As(err, &loopErr) {
		return &ExtractionFailedError{
			Attempts:     loopErr.Attempts,
			LastProblems: loopErr.Problems,
			Cause:        loopErr.Cause,
		}
	}
	return &ExtractionFailedError{Cause: err}
}
