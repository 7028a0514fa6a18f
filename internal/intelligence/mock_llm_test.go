package intelligence

import (
	"context"
	"sync"

	"github.com/alexanderramin/dealnotes/internal/llm"
)

// mockLLMClient replays scripted responses in order. Once the script is
// exhausted the last entry repeats.
type mockLLMClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	requests  []llm.GenerateRequest
}

func scripted(responses ...string) *mockLLMClient {
	return &mockLLMClient{responses: responses}
}

func failing(err error) *mockLLMClient {
	return &mockLLMClient{errs: []error{err}}
}

func (m *mockLLMClient) Generate(_ context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	i := len(m.requests)
	m.requests = append(m.requests, req)

	if len(m.errs) > 0 {
		if err := m.errs[min(i, len(m.errs)-1)]; err != nil {
			return nil, err
		}
	}
	if len(m.responses) == 0 {
		return &llm.GenerateResponse{Text: "", Model: "llama3.2"}, nil
	}
	return &llm.GenerateResponse{Text: m.responses[min(i, len(m.responses)-1)], Model: "llama3.2"}, nil
}

func (m *mockLLMClient) Available(_ context.Context) bool { return len(m.errs) == 0 }

func (m *mockLLMClient) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func (m *mockLLMClient) request(i int) llm.GenerateRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.requests[i]
}
