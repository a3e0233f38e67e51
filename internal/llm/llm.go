// Package llm wraps the hosted text-interpretation collaborator behind a
// one-method interface so the resolver and the hosted valuation strategy can
// be tested without network access.
package llm

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// Client sends a prompt to a remote interpreter and returns its text reply.
type Client interface {
	Complete(ctx context.Context, system, prompt string) (string, error)
}

// Anthropic implements Client with the official SDK.
type Anthropic struct {
	client sdk.Client
	model  string
}

// NewAnthropic builds a client. A missing credential or model identifier is a
// configuration error, not something to retry at runtime.
func NewAnthropic(apiKey, model string) (*Anthropic, error) {
	if apiKey == "" {
		return nil, eris.New("llm: api key is required")
	}
	if model == "" {
		return nil, eris.New("llm: model identifier is required")
	}
	return &Anthropic{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

func (a *Anthropic) Complete(ctx context.Context, system, prompt string) (string, error) {
	params := sdk.MessageNewParams{
		Model:     sdk.Model(a.model),
		MaxTokens: 1024,
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	}
	if system != "" {
		params.System = []sdk.TextBlockParam{{Text: system}}
	}

	msg, err := a.client.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "llm: create message")
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return sb.String(), nil
}
