package intelligence

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/llm"
)

// Task selects which prompt a PromptBuilder renders.
type Task string

const (
	TaskExtraction      Task = "extraction"
	TaskEmailFollowup   Task = "email_followup"
	TaskMessageFollowup Task = "message_followup"
)

// LLMTask maps a prompt task onto the gateway's per-task tuning.
func (t Task) LLMTask() llm.TaskType {
	switch t {
	case TaskEmailFollowup:
		return llm.TaskEmail
	case TaskMessageFollowup:
		return llm.TaskMessage
	default:
		return llm.TaskExtract
	}
}

// Prompt is a fully rendered system/user prompt pair.
type Prompt struct {
	Task   Task
	System string
	User   string
}

// ExtractionPayload is the input for TaskExtraction.
type ExtractionPayload struct {
	RawText string
	Date    time.Time
	History domain.ClientHistory
}

// FollowupPayload is the input for both followup tasks.
type FollowupPayload struct {
	Client  domain.Client
	Record  domain.InteractionRecord
	History domain.ClientHistory
}

const extractionSystemPrompt = `You are an expert sales CRM assistant. You read sales conversation notes and extract structured CRM data.

You must output ONLY a JSON object with exactly these keys:
{
  "summary": "2-3 sentence summary of what was discussed and the key outcomes",
  "deal_stage": "one of: %STAGES%",
  "objections": ["each concern or objection the client raised, as a separate string; [] if none"],
  "interest_level": "one of: %LEVELS%",
  "next_action": "specific, actionable next step (e.g. 'Send proposal by Friday')",
  "followup_date": "YYYY-MM-DD or null"
}

Rules:
1. deal_stage and interest_level MUST be copied exactly from the lists above.
2. interest_level: high = ready to buy, medium = interested or unclear, low = not interested.
3. Use "unknown" for deal_stage only when the notes give no signal at all.
4. Resolve relative dates ("next week", "Friday") against the conversation date.
5. Never invent facts that are not in the notes.
6. Output ONLY the JSON object, no markdown fences, no text before or after.`

const emailSystemPrompt = `You are a professional sales copywriter. You write personalized follow-up emails after client conversations.

The email must:
1. Reference specific points from the latest conversation.
2. Address the client's objections, if any.
3. Confirm the agreed next action.
4. Match the tone to the client's interest level (high = prompt and decisive, medium = friendly, low = gentle and low-pressure).
5. Be 3-5 short paragraphs.
6. End with a professional signature%SIGNATURE%.

Return ONLY the email body. No subject line, no markdown, no commentary.`

const messageSystemPrompt = `You are a sales assistant writing a short chat or SMS follow-up after a client conversation.

The message must:
- Be 2-4 conversational, friendly sentences.
- Reference the discussion and confirm the next step.
- Use urgency that fits the client's interest level.
- Have no formal salutation and no signature.
- Be at most %MAXCHARS% characters in total.

Return ONLY the message text.`

// PromptBuilder renders prompts for every pipeline task. Build is pure:
// identical inputs always produce identical prompts.
type PromptBuilder struct {
	MessageMaxChars int
	Signature       string
}

// NewPromptBuilder creates a PromptBuilder using the given message ceiling.
func NewPromptBuilder(messageMaxChars int, signature string) PromptBuilder {
	return PromptBuilder{MessageMaxChars: messageMaxChars, Signature: signature}
}

// Build renders the prompt for task. The payload must be an ExtractionPayload
// for TaskExtraction and a FollowupPayload for the followup tasks.
func (b PromptBuilder) Build(task Task, payload any) (Prompt, error) {
	switch task {
	case TaskExtraction:
		p, ok := payload.(ExtractionPayload)
		if !ok {
			return Prompt{}, fmt.Errorf("%s prompt: unexpected payload %T", task, payload)
		}
		return b.extraction(p), nil
	case TaskEmailFollowup, TaskMessageFollowup:
		p, ok := payload.(FollowupPayload)
		if !ok {
			return Prompt{}, fmt.Errorf("%s prompt: unexpected payload %T", task, payload)
		}
		if task == TaskEmailFollowup {
			return b.email(p), nil
		}
		return b.message(p), nil
	default:
		return Prompt{}, fmt.Errorf("unknown prompt task %q", task)
	}
}

func (b PromptBuilder) extraction(p ExtractionPayload) Prompt {
	system := strings.NewReplacer(
		"%STAGES%", joinStages(),
		"%LEVELS%", joinLevels(),
	).Replace(extractionSystemPrompt)

	var u strings.Builder
	if !p.Date.IsZero() {
		fmt.Fprintf(&u, "CONVERSATION DATE: %s\n\n", p.Date.Format("2006-01-02 (Monday)"))
	}
	u.WriteString("CLIENT CONTEXT:\n")
	if p.History.Empty() {
		u.WriteString("New client, no prior interactions.\n")
	} else {
		u.WriteString(RenderHistory(p.History))
	}
	u.WriteString("\nCONVERSATION NOTES:\n")
	u.WriteString(strings.TrimSpace(p.RawText))
	u.WriteString("\n\nReturn the JSON object now.")

	return Prompt{Task: TaskExtraction, System: system, User: u.String()}
}

func (b PromptBuilder) email(p FollowupPayload) Prompt {
	sig := ""
	if b.Signature != "" {
		sig = " signed exactly as:\n" + b.Signature
	}
	system := strings.Replace(emailSystemPrompt, "%SIGNATURE%", sig, 1)

	var u strings.Builder
	writeClientHeader(&u, p.Client)
	u.WriteString("\nHISTORY (oldest first):\n")
	writeHistoryOrNone(&u, p.History)
	u.WriteString("\nCURRENT INTERACTION:\n")
	writeRecord(&u, p.Record)
	u.WriteString("\nWrite the follow-up email now.")

	return Prompt{Task: TaskEmailFollowup, System: system, User: u.String()}
}

func (b PromptBuilder) message(p FollowupPayload) Prompt {
	limit := b.MessageMaxChars
	if limit <= 0 {
		limit = DefaultFollowupPolicy().MessageMaxChars
	}
	system := strings.Replace(messageSystemPrompt, "%MAXCHARS%", fmt.Sprint(limit), 1)

	var u strings.Builder
	writeClientHeader(&u, p.Client)
	u.WriteString("\nHISTORY (oldest first):\n")
	writeHistoryOrNone(&u, p.History)
	u.WriteString("\nCURRENT INTERACTION:\n")
	writeRecord(&u, p.Record)
	fmt.Fprintf(&u, "\nWrite the message now, at most %d characters.", limit)

	return Prompt{Task: TaskMessageFollowup, System: system, User: u.String()}
}

// BuildRepair extends base with the rejected output and the problems found
// in it, asking the model for a corrected answer in the same format.
func BuildRepair(base Prompt, previousOutput string, problems []string) Prompt {
	var u strings.Builder
	u.WriteString(base.User)
	u.WriteString("\n\nYOUR PREVIOUS RESPONSE:\n")
	u.WriteString(strings.TrimSpace(previousOutput))
	u.WriteString("\n\nIt was rejected for these reasons:\n")
	for _, p := range problems {
		u.WriteString("- ")
		u.WriteString(p)
		u.WriteByte('\n')
	}
	if base.Task == TaskExtraction {
		u.WriteString("\nFix every problem and return ONLY the corrected JSON object.")
	} else {
		u.WriteString("\nRewrite it to fix every problem. Return ONLY the corrected text.")
	}
	return Prompt{Task: base.Task, System: base.System, User: u.String()}
}

// RenderHistory renders interactions oldest first, so the most recent one
// is read last. Its length is what the context budget is measured against.
func RenderHistory(h domain.ClientHistory) string {
	var b strings.Builder
	for _, rec := range h.Items {
		fmt.Fprintf(&b, "- %s | stage: %s | interest: %s\n",
			rec.Date.Format("2006-01-02"), rec.DealStage.Label(), rec.InterestLevel.Label())
		fmt.Fprintf(&b, "  Summary: %s\n", rec.Summary)
		if len(rec.Objections) > 0 {
			fmt.Fprintf(&b, "  Objections: %s\n", strings.Join(rec.Objections, "; "))
		}
		if rec.NextAction != "" {
			fmt.Fprintf(&b, "  Next action: %s\n", rec.NextAction)
		}
	}
	return b.String()
}

func writeClientHeader(b *strings.Builder, c domain.Client) {
	fmt.Fprintf(b, "CLIENT: %s\n", c.Name)
	company := c.Company
	if company == "" {
		company = "Unknown"
	}
	fmt.Fprintf(b, "COMPANY: %s\n", company)
}

func writeHistoryOrNone(b *strings.Builder, h domain.ClientHistory) {
	if h.Empty() {
		b.WriteString("No prior interactions.\n")
		return
	}
	if h.Truncated > 0 {
		fmt.Fprintf(b, "(%d older interactions omitted)\n", h.Truncated)
	}
	b.WriteString(RenderHistory(h))
}

func writeRecord(b *strings.Builder, rec domain.InteractionRecord) {
	fmt.Fprintf(b, "Summary: %s\n", rec.Summary)
	fmt.Fprintf(b, "Deal stage: %s\n", rec.DealStage.Label())
	fmt.Fprintf(b, "Interest level: %s\n", rec.InterestLevel.Label())
	fmt.Fprintf(b, "Next action: %s\n", rec.NextAction)
	objections := "None"
	if len(rec.Objections) > 0 {
		objections = strings.Join(rec.Objections, "; ")
	}
	fmt.Fprintf(b, "Objections: %s\n", objections)
	if rec.FollowupDate != nil {
		fmt.Fprintf(b, "Follow-up date: %s\n", rec.FollowupDate.Format("2006-01-02"))
	}
}
