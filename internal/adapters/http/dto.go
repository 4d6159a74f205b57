package http

import (
	"encoding/json"

	"github.com/futalk/Tarot-Reading/internal/analysis"
	"github.com/futalk/Tarot-Reading/internal/app"
	"github.com/futalk/Tarot-Reading/internal/domain"
)

// AIReadingRequest is the body of POST /api/ai-reading.
type AIReadingRequest struct {
	Cards       []CardRequest `json:"cards"`
	Spread      string        `json:"spread"`
	Question    string        `json:"question"`
	APIEndpoint string        `json:"apiEndpoint"`
	APIKey      string        `json:"apiKey"`
	Model       string        `json:"model"`
}

// CardRequest is a card as the client laid it out.
type CardRequest struct {
	Name       string `json:"name"`
	IsReversed bool   `json:"isReversed"`
	Position   string `json:"position"`
}

// AIReadingResponse is the success body of POST /api/ai-reading.
type AIReadingResponse struct {
	Success         bool            `json:"success"`
	Interpretation  string          `json:"interpretation"`
	Model           string          `json:"model"`
	Usage           json.RawMessage `json:"usage,omitempty"`
	UsingDefaultKey bool            `json:"usingDefaultKey"`
	Cached          bool            `json:"cached"`
}

// DrawRequest is the body of POST /v1/readings.
type DrawRequest struct {
	Spread   string `json:"spread"`
	Count    int    `json:"count"`
	Question string `json:"question"`
	Cut      string `json:"cut"`
	Picks    []int  `json:"picks"`
}

// DrawResponse is a drawn reading with its evaluation.
type DrawResponse struct {
	Success  bool            `json:"success"`
	Reading  domain.Reading  `json:"reading"`
	Analysis analysis.Result `json:"analysis"`
}

// AnalyzeRequest is the body of POST /v1/readings/analyze.
type AnalyzeRequest struct {
	Spread   string        `json:"spread"`
	Question string        `json:"question"`
	Cards    []CardRequest `json:"cards"`
}

type AnalyzeResponse struct {
	Success  bool            `json:"success"`
	Analysis analysis.Result `json:"analysis"`
}

type YesNoRequest struct {
	Question string `json:"question"`
}

type YesNoResponse struct {
	Success bool `json:"success"`
	domain.YesNoResult
}

type DailyResponse struct {
	Success bool `json:"success"`
	domain.DailyCard
}

type ReadingsResponse struct {
	Success  bool             `json:"success"`
	Readings []domain.Reading `json:"readings"`
}

type SpreadsResponse struct {
	Success bool            `json:"success"`
	Spreads []domain.Spread `json:"spreads"`
}

type CardResponse struct {
	Success bool        `json:"success"`
	Card    domain.Card `json:"card"`
}

type ProvidersResponse struct {
	Success   bool                    `json:"success"`
	Providers []domain.ProviderPreset `json:"providers"`
}

// ErrorResponse is the failure body of every route.
type ErrorResponse struct {
	Success    bool   `json:"success"`
	Error      string `json:"error"`
	Hint       string `json:"hint,omitempty"`
	RetryAfter int    `json:"retryAfter,omitempty"`
	Details    any    `json:"details,omitempty"`
}

func toReadingCards(in []CardRequest) []app.ReadingCard {
	out := make([]app.ReadingCard, len(in))
	for i, c := range in {
		out[i] = app.ReadingCard{Name: c.Name, IsReversed: c.IsReversed, Position: c.Position}
	}
	return out
}
