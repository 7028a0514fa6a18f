package llm

import "context"

// DisabledClient stands in for the model when llm.enabled is false, so
// client and history commands keep working without a model server.
type DisabledClient struct{}

func (DisabledClient) Generate(context.Context, GenerateRequest) (*GenerateResponse, error) {
	return nil, ErrInferenceDisabled
}

func (DisabledClient) Available(context.Context) bool { return false }
