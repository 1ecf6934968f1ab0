// Package completion is the boundary to the external text/vision completion
// service. Callers describe what they want (a prompt, an optional image, the
// shape of the answer) and get back the service's JSON answer; backends in
// the sub-packages translate that request for a particular provider.
package completion

import (
	"context"
	"encoding/json"
	"errors"
)

var (
	// ErrNoOutput means the service answered without any structured output.
	ErrNoOutput = errors.New("completion returned no output")
	// ErrMalformedOutput means the output was not valid JSON for the schema.
	ErrMalformedOutput = errors.New("completion returned malformed output")
)

// Client performs a single completion call.
type Client interface {
	Complete(ctx context.Context, req Request) (json.RawMessage, error)
}

// ClientFunc adapts a function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (json.RawMessage, error)

func (f ClientFunc) Complete(ctx context.Context, req Request) (json.RawMessage, error) {
	return f(ctx, req)
}

type Request struct {
	// Name identifies the prompt in logs and is used as the tool/schema name by
	// backends that need one.
	Name   string
	Prompt string
	Image  *Image
	Schema Schema
}

// Image is sent inline with the prompt.
type Image struct {
	Data     []byte
	MIMEType string
}
