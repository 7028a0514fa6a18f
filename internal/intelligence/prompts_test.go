package intelligence

import (
	"strings"
	"testing"
	"time"

	"github.com/alexanderramin/dealnotes/internal/domain"
	"github.com/alexanderramin/dealnotes/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func historyRecord(id string, day int, summary string) domain.InteractionRecord {
	return domain.InteractionRecord{
		ID:            id,
		ClientID:      "c1",
		Date:          time.Date(2025, 1, day, 0, 0, 0, 0, time.UTC),
		Summary:       summary,
		DealStage:     domain.StageQualification,
		Objections:    []string{},
		InterestLevel: domain.InterestMedium,
		NextAction:    "Follow up",
		Version:       1,
	}
}

func TestPromptBuilder_ExtractionEmbedsVocabularyAndText(t *testing.T) {
	b := NewPromptBuilder(300, "")
	p, err := b.Build(TaskExtraction, ExtractionPayload{
		RawText: "Client loved the demo, wants pricing next week",
		Date:    time.Date(2025, 1, 3, 10, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, TaskExtraction, p.Task)
	for _, s := range domain.DealStages {
		assert.Contains(t, p.System, string(s))
	}
	for _, l := range domain.InterestLevels {
		assert.Contains(t, p.System, string(l))
	}
	for _, k := range recordKeys {
		assert.Contains(t, p.System, `"`+k+`"`)
	}
	assert.Contains(t, p.User, "Client loved the demo, wants pricing next week")
	assert.Contains(t, p.User, "2025-01-03 (Friday)")
	assert.Contains(t, p.User, "New client")
}

func TestPromptBuilder_IsDeterministic(t *testing.T) {
	b := NewPromptBuilder(280, "Sam, Acme Sales")
	payload := FollowupPayload{
		Client: domain.Client{Name: "Dana", Company: "Globex"},
		Record: historyRecord("r2", 5, "Demo went well"),
		History: domain.ClientHistory{Items: []domain.InteractionRecord{
			historyRecord("r1", 1, "Intro call"),
		}},
	}
	for _, task := range []Task{TaskEmailFollowup, TaskMessageFollowup} {
		first, err := b.Build(task, payload)
		require.NoError(t, err)
		second, err := b.Build(task, payload)
		require.NoError(t, err)
		assert.Equal(t, first, second)
	}
}

func TestPromptBuilder_FollowupChannels(t *testing.T) {
	b := NewPromptBuilder(280, "Sam, Acme Sales")
	rec := historyRecord("r2", 5, "Demo went well")
	rec.Objections = []string{"budget"}
	payload := FollowupPayload{
		Client: domain.Client{Name: "Dana"},
		Record: rec,
		History: domain.ClientHistory{Items: []domain.InteractionRecord{
			historyRecord("r0", 1, "Cold outreach"),
			historyRecord("r1", 2, "Intro call"),
		}},
	}

	email, err := b.Build(TaskEmailFollowup, payload)
	require.NoError(t, err)
	assert.Contains(t, email.System, "3-5 short paragraphs")
	assert.Contains(t, email.System, "Sam, Acme Sales")
	assert.Contains(t, email.User, "COMPANY: Unknown")
	assert.Contains(t, email.User, "Objections: budget")
	assert.Less(t, strings.Index(email.User, "Cold outreach"), strings.Index(email.User, "Intro call"),
		"history renders oldest first")

	msg, err := b.Build(TaskMessageFollowup, payload)
	require.NoError(t, err)
	assert.Contains(t, msg.System, "at most 280 characters")
	assert.Contains(t, msg.User, "at most 280 characters")
}

func TestPromptBuilder_PayloadMismatch(t *testing.T) {
	b := NewPromptBuilder(300, "")
	_, err := b.Build(TaskExtraction, FollowupPayload{})
	assert.Error(t, err)
	_, err = b.Build(TaskEmailFollowup, ExtractionPayload{})
	assert.Error(t, err)
	_, err = b.Build(Task("summarize"), ExtractionPayload{})
	assert.Error(t, err)
}

func TestBuildRepair_AppendsOutputAndProblems(t *testing.T) {
	base := Prompt{Task: TaskExtraction, System: "sys", User: "notes"}
	repaired := BuildRepair(base, `{"summary": }`, []string{"summary: required", "deal_stage: required"})

	assert.Equal(t, base.System, repaired.System)
	assert.True(t, strings.HasPrefix(repaired.User, "notes"))
	assert.Contains(t, repaired.User, `{"summary": }`)
	assert.Contains(t, repaired.User, "- summary: required")
	assert.Contains(t, repaired.User, "- deal_stage: required")
	assert.Contains(t, repaired.User, "JSON object")

	text := BuildRepair(Prompt{Task: TaskMessageFollowup, User: "u"}, "too long", []string{"message_text: too long"})
	assert.Contains(t, text.User, "corrected text")
}

func TestTask_LLMTask(t *testing.T) {
	assert.Equal(t, llm.TaskExtract, TaskExtraction.LLMTask())
	assert.Equal(t, llm.TaskEmail, TaskEmailFollowup.LLMTask())
	assert.Equal(t, llm.TaskMessage, TaskMessageFollowup.LLMTask())
}
