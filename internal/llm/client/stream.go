package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// chatModelFactory builds a vendor chat model for one call. Adapters keep no
// per-model state so a single adapter serves every model of its provider.
type chatModelFactory func(ctx context.Context, modelName string) (model.BaseChatModel, error)

// toSchemaMessages maps roles one to one.
func toSchemaMessages(msgs []ChatMessage) []*schema.Message {
	out := make([]*schema.Message, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, &schema.Message{Role: schema.RoleType(m.Role), Content: m.Content})
	}
	return out
}

func requestOptions(req StreamRequest) []model.Option {
	var opts []model.Option
	if req.Temperature != nil {
		opts = append(opts, model.WithTemperature(float32(*req.Temperature)))
	}
	if req.MaxTokens != nil && *req.MaxTokens > 0 {
		opts = append(opts, model.WithMaxTokens(*req.MaxTokens))
	}
	return opts
}

func streamWith(ctx context.Context, vendor string, newChatModel chatModelFactory, input []*schema.Message, req StreamRequest, onUpdate UpdateFunc) error {
	if strings.TrimSpace(req.Model) == "" {
		return fmt.Errorf("model is required")
	}

	chatModel, err := newChatModel(ctx, req.Model)
	if err != nil {
		return &ProviderError{Provider: vendor, Err: err}
	}

	reader, err := chatModel.Stream(ctx, input, requestOptions(req)...)
	if err != nil {
		return &ProviderError{Provider: vendor, Err: err}
	}
	if reader == nil {
		return &ProviderError{Provider: vendor, Err: fmt.Errorf("model returned nil stream reader")}
	}

	if err := accumulate(reader, onUpdate); err != nil {
		return &ProviderError{Provider: vendor, Err: err}
	}
	return nil
}

// accumulate drains reader and reports the running text after every
// non-empty chunk.
func accumulate(reader *schema.StreamReader[*schema.Message], onUpdate UpdateFunc) error {
	defer reader.Close()

	var current strings.Builder
	for {
		msg, err := reader.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if msg == nil || msg.Content == "" {
			continue
		}
		current.WriteString(msg.Content)
		if onUpdate != nil {
			onUpdate(current.String())
		}
	}
}
