package intelligence

import (
	"context"
	"errors"
	"log/slog"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/llm"
)

// FollowupService generates the email and short message for one interaction.
type FollowupService interface {
	Generate(ctx context.Context, client domain.Client, record domain.InteractionRecord, history domain.ClientHistory) (*domain.FollowupContent, error)
}

type followupService struct {
	loop    RepairLoop[string]
	prompts PromptBuilder
	policy  FollowupPolicy
}

// NewFollowupService creates a FollowupService backed by an LLM client.
func NewFollowupService(client llm.LLMClient, cfg PipelineConfig, logger *slog.Logger) FollowupService {
	return &followupService{
		loop: RepairLoop[string]{
			Client:     client,
			MaxRepairs: cfg.MaxRepairs,
			Logger:     logger,
		},
		prompts: cfg.PromptBuilder(),
		policy:  cfg.FollowupPolicy(),
	}
}

// Generate runs the email channel and then the message channel. Each is
// validated on its own; the first channel to fail ends generation.
func (s *followupService) Generate(ctx context.Context, client domain.Client, record domain.InteractionRecord, history domain.ClientHistory) (*domain.FollowupContent, error) {
	payload := FollowupPayload{
		Client:  client,
		Record:  record,
		History: historyBefore(history, record),
	}

	email, err := s.channel(ctx, ChannelEmail, TaskEmailFollowup, payload, func(raw string) (string, error) {
		text := llm.CleanText(raw)
		return text, ValidateEmailText(text, s.policy)
	})
	if err != nil {
		return nil, err
	}

	message, err := s.channel(ctx, ChannelMessage, TaskMessageFollowup, payload, func(raw string) (string, error) {
		text := llm.CleanText(raw)
		return text, ValidateMessageText(text, s.policy)
	})
	if err != nil {
		return nil, err
	}

	return &domain.FollowupContent{
		InteractionID: record.ID,
		EmailText:     email,
		MessageText:   message,
	}, nil
}

func (s *followupService) channel(ctx context.Context, ch Channel, task Task, payload FollowupPayload, parse ParseFunc[string]) (string, error) {
	prompt, err := s.prompts.Build(task, payload)
	if err != nil {
		return "", err
	}
	text, _, err := s.loop.Run(ctx, prompt, parse)
	if err != nil {
		var loopErr *LoopError
		if errors.As(err, &loopErr) {
			return "", &FollowupFailedError{
				Channel:      ch,
				Attempts:     loopErr.Attempts,
				LastProblems: loopErr.Problems,
				Cause:        loopErr.Cause,
			}
		}
		return "", &FollowupFailedError{Channel: ch, Cause: err}
	}
	return text, nil
}

// historyBefore removes the record itself and the version it replaces from
// the context used to write its followup.
func historyBefore(h domain.ClientHistory, record domain.InteractionRecord) domain.ClientHistory {
	if record.ID == "" {
		return h
	}
	out := domain.ClientHistory{ClientID: h.ClientID, Truncated: h.Truncated, Items: make([]domain.InteractionRecord, 0, len(h.Items))}
	for _, r := range h.Items {
		if r.ID == record.ID || r.ID == record.SupersedesID {
			continue
		}
		out.Items = append(out.Items, r)
	}
	return out
}
