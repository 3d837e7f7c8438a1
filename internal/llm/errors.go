package llm

import "errors"

var (
	// ErrInference covers transport failures, non-success responses, and
	// exhausted retries against the model endpoint.
	ErrInference = errors.New("inference failed")
	// ErrEmptyResponse means the endpoint answered with no usable text.
	ErrEmptyResponse = errors.New("empty inference response")
)
