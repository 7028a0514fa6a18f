package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrInference indicates the inference backend was unreachable, errored,
	// or produced no usable output after retries.
	ErrInference = errors.New("inference failed")

	// ErrInferenceTimeout indicates a call exceeded its configured timeout.
	ErrInferenceTimeout = errors.New("inference timed out")

	// ErrOllamaUnavailable indicates the Ollama server is unreachable.
	ErrOllamaUnavailable = fmt.Errorf("%w: ollama server unavailable", ErrInference)

	// ErrRetryExhausted indicates all retry attempts have been exhausted.
	ErrRetryExhausted = fmt.Errorf("%w: retry attempts exhausted", ErrInference)

	// ErrModelNotFound indicates the configured model is not pulled on the
	// server.
	ErrModelNotFound = fmt.Errorf("%w: model not found", ErrInference)

	// ErrEmptyOutput indicates the model kept returning blank text.
	ErrEmptyOutput = fmt.Errorf("%w: empty model output", ErrInference)

	// ErrInferenceDisabled is returned by DisabledClient.
	ErrInferenceDisabled = fmt.Errorf("%w: inference is disabled (set llm.enabled)", ErrInference)

	// ErrInvalidOutput indicates the LLM response could not be parsed
	// into the expected structured format.
	ErrInvalidOutput = errors.New("invalid llm output format")
)
