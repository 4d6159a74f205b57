package ports

import (
	"context"
	"encoding/json"
)

// InterpretInput holds everything the LLM needs to generate an interpretation.
// Endpoint, APIKey and Model are already resolved by the caller.
type InterpretInput struct {
	Endpoint   string
	APIKey     string
	Model      string
	Spread     string
	SpreadName string
	Question   string
	Cards      []CardInput
}

// CardInput is a simplified card representation for the LLM prompt.
type CardInput struct {
	Name        string
	Position    string
	Orientation string
}

// InterpretOutput is the completion returned by the LLM.
type InterpretOutput struct {
	Text  string
	Model string
	Usage json.RawMessage
}

// Interpreter generates a tarot interpretation via an LLM.
type Interpreter interface {
	Interpret(ctx context.Context, in InterpretInput) (InterpretOutput, error)
}
