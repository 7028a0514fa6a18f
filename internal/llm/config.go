package llm

// TaskType identifies the kind of LLM task being performed.
type TaskType string

const (
	TaskExtract TaskType = "extract"
	TaskEmail   TaskType = "email"
	TaskMessage TaskType = "message"
)

// Tasks lists every task type with its own tuning block.
var Tasks = []TaskType{TaskExtract, TaskEmail, TaskMessage}

// TaskConfig holds per-task LLM parameters.
type TaskConfig struct {
	Temperature float64
	MaxTokens   int
	TimeoutMs   int // overrides global if > 0
	Stop        []string
}

// LLMConfig holds all configuration for the LLM subsystem.
type LLMConfig struct {
	Enabled    bool
	LogCalls   bool
	Endpoint   string
	Model      string
	TimeoutMs  int
	MaxRetries int
	Tasks      map[TaskType]TaskConfig
}

// DefaultConfig returns an LLMConfig with sensible defaults for a small
// local model. Extraction runs cold for stable JSON; followups run warmer.
func DefaultConfig() LLMConfig {
	return LLMConfig{
		Enabled:    true,
		LogCalls:   false,
		Endpoint:   "http://localhost:11434",
		Model:      "llama3.2",
		TimeoutMs:  30000,
		MaxRetries: 2,
		Tasks: map[TaskType]TaskConfig{
			TaskExtract: {Temperature: 0.1, MaxTokens: 1024, TimeoutMs: 30000, Stop: []string{"</s>", "User:", "Human:"}},
			TaskEmail:   {Temperature: 0.7, MaxTokens: 1024, TimeoutMs: 45000, Stop: []string{"</s>"}},
			TaskMessage: {Temperature: 0.7, MaxTokens: 256, TimeoutMs: 20000, Stop: []string{"</s>"}},
		},
	}
}

// TaskTimeout returns the effective timeout for a given task type.
// Uses the task-specific timeout if set, otherwise the global timeout.
func (c LLMConfig) TaskTimeout(task TaskType) int {
	if tc, ok := c.Tasks[task]; ok && tc.TimeoutMs > 0 {
		return tc.TimeoutMs
	}
	return c.TimeoutMs
}
