package api

import (
	"time"

	"github.com/alexanderramin/dealnotes/internal/app"
	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/service"
)

const dateOnly = "2006-01-02"

type clientView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Company   string    `json:"company,omitempty"`
	Email     string    `json:"email,omitempty"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newClientView(c *domain.Client) clientView {
	return clientView{
		ID:        c.ID,
		Name:      c.Name,
		Company:   c.Company,
		Email:     c.Email,
		Active:    c.Active,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

type duplicateView struct {
	Client     clientView `json:"client"`
	Score      float64    `json:"score"`
	EmailMatch bool       `json:"email_match"`
}

func newDuplicateView(c service.DuplicateCandidate) duplicateView {
	return duplicateView{Client: newClientView(c.Client), Score: c.Score, EmailMatch: c.EmailMatch}
}

type interactionView struct {
	ID            string    `json:"id"`
	ClientID      string    `json:"client_id"`
	Date          time.Time `json:"date"`
	RawText       string    `json:"raw_text"`
	Summary       string    `json:"summary"`
	DealStage     string    `json:"deal_stage"`
	Objections    []string  `json:"objections"`
	InterestLevel string    `json:"interest_level"`
	NextAction    string    `json:"next_action"`
	FollowupDate  string    `json:"followup_date,omitempty"`
	Version       int       `json:"version"`
	SupersedesID  string    `json:"supersedes_id,omitempty"`
}

func newInteractionView(r *domain.InteractionRecord) interactionView {
	v := interactionView{
		ID:            r.ID,
		ClientID:      r.ClientID,
		Date:          r.Date,
		RawText:       r.RawText,
		Summary:       r.Summary,
		DealStage:     string(r.DealStage),
		Objections:    r.Objections,
		InterestLevel: string(r.InterestLevel),
		NextAction:    r.NextAction,
		Version:       r.Version,
		SupersedesID:  r.SupersedesID,
	}
	if v.Objections == nil {
		v.Objections = []string{}
	}
	if r.FollowupDate != nil {
		v.FollowupDate = r.FollowupDate.Format(dateOnly)
	}
	return v
}

type followupView struct {
	ID            string    `json:"id"`
	InteractionID string    `json:"interaction_id"`
	Email         string    `json:"email"`
	Message       string    `json:"message"`
	CreatedAt     time.Time `json:"created_at"`
}

func newFollowupView(f *domain.FollowupContent) *followupView {
	if f == nil {
		return nil
	}
	return &followupView{
		ID:            f.ID,
		InteractionID: f.InteractionID,
		Email:         f.EmailText,
		Message:       f.MessageText,
		CreatedAt:     f.CreatedAt,
	}
}

// ingestView is the body of a pipeline run. FollowupError is set only on a
// partial result, where the interaction was saved without its followup.
type ingestView struct {
	Interaction   interactionView `json:"interaction"`
	Followup      *followupView   `json:"followup,omitempty"`
	FollowupError *errorBody      `json:"followup_error,omitempty"`
	Partial       bool            `json:"partial"`
	HistoryItems  int             `json:"history_items"`
}

func newIngestView(res *app.IngestResult) ingestView {
	v := ingestView{
		Interaction:  newInteractionView(res.Interaction),
		Followup:     newFollowupView(res.Followup),
		Partial:      res.Partial(),
		HistoryItems: len(res.History.Items),
	}
	if res.FollowupErr != nil {
		body := errorBodyFor(res.FollowupErr, statusFor(res.FollowupErr))
		v.FollowupError = &body
	}
	return v
}

type timelineEntryView struct {
	InteractionID string    `json:"interaction_id"`
	Date          time.Time `json:"date"`
	DealStage     string    `json:"deal_stage"`
	InterestLevel string    `json:"interest_level"`
	Summary       string    `json:"summary"`
	NextAction    string    `json:"next_action"`
	FollowupDate  string    `json:"followup_date,omitempty"`
	HasFollowup   bool      `json:"has_followup"`
}

func newTimelineView(entries []domain.TimelineEntry) []timelineEntryView {
	out := make([]timelineEntryView, 0, len(entries))
	for _, e := range entries {
		v := timelineEntryView{
			InteractionID: e.InteractionID,
			Date:          e.Date,
			DealStage:     string(e.DealStage),
			InterestLevel: string(e.InterestLevel),
			Summary:       e.Summary,
			NextAction:    e.NextAction,
			HasFollowup:   e.HasFollowup,
		}
		if e.FollowupDate != nil {
			v.FollowupDate = e.FollowupDate.Format(dateOnly)
		}
		out = append(out, v)
	}
	return out
}

type statsView struct {
	ClientID          string     `json:"client_id"`
	TotalInteractions int        `json:"total_interactions"`
	FirstContact      *time.Time `json:"first_contact,omitempty"`
	LastContact       *time.Time `json:"last_contact,omitempty"`
	StagesSeen        []string   `json:"stages_seen"`
}

func newStatsView(s domain.ClientStats) statsView {
	v := statsView{
		ClientID:          s.ClientID,
		TotalInteractions: s.TotalInteractions,
		FirstContact:      s.FirstContact,
		LastContact:       s.LastContact,
		StagesSeen:        make([]string, 0, len(s.StagesSeen)),
	}
	for _, st := range s.StagesSeen {
		v.StagesSeen = append(v.StagesSeen, string(st))
	}
	return v
}

type dueView struct {
	InteractionID string `json:"interaction_id"`
	ClientID      string `json:"client_id"`
	ClientName    string `json:"client_name,omitempty"`
	FollowupDate  string `json:"followup_date"`
	NextAction    string `json:"next_action"`
	DealStage     string `json:"deal_stage"`
	Overdue       bool   `json:"overdue"`
}

type statusView struct {
	GeneratedAt     time.Time `json:"generated_at"`
	ModelEnabled    bool      `json:"model_enabled"`
	ModelAvailable  bool      `json:"model_available"`
	Endpoint        string    `json:"endpoint"`
	Model           string    `json:"model"`
	ActiveClients   int       `json:"active_clients"`
	InactiveClients int       `json:"inactive_clients"`
	DueFollowups    []dueView `json:"due_followups"`
	Warnings        []string  `json:"warnings,omitempty"`
}

func newStatusView(r *app.StatusResponse) statusView {
	v := statusView{
		GeneratedAt:     r.GeneratedAt,
		ModelEnabled:    r.Model.Enabled,
		ModelAvailable:  r.Model.Available,
		Endpoint:        r.Model.Endpoint,
		Model:           r.Model.Model,
		ActiveClients:   r.ActiveClients,
		InactiveClients: r.InactiveClients,
		DueFollowups:    make([]dueView, 0, len(r.DueFollowups)),
		Warnings:        r.Warnings,
	}
	for _, d := range r.DueFollowups {
		v.DueFollowups = append(v.DueFollowups, dueView{
			InteractionID: d.InteractionID,
			ClientID:      d.ClientID,
			ClientName:    d.ClientName,
			FollowupDate:  d.FollowupDate.Format(dateOnly),
			NextAction:    d.NextAction,
			DealStage:     d.DealStage,
			Overdue:       d.Overdue,
		})
	}
	return v
}
