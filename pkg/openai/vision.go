package openai

import (
	"context"
	"fmt"
	"os"

	"github.com/sashabaranov/go-openai"
)

type IVision interface {
	AnalyzeImage(ctx context.Context, base64Image string, prompt string) (string, error)
}

type visionService struct {
	client *openai.Client
	model  string
}

func NewVision() IVision {
	apiKey := os.Getenv("OPENAI_API_KEY")
	model := os.Getenv("OPENAI_VISION_MODEL")

	if model == "" {
		model = openai.GPT4oMini
	}

	return &visionService{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

func (v *visionService) AnalyzeImage(ctx context.Context, base64Image string, prompt string) (string, error) {
	if prompt == "" {
		prompt = "Analyze this image and provide details in JSON format."
	}

	resp, err := v.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: v.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role: openai.ChatMessageRoleUser,
					MultiContent: []openai.ChatMessagePart{
						{
							Type: openai.ChatMessagePartTypeText,
							Text: prompt,
						},
						{
							Type: openai.ChatMessagePartTypeImageURL,
							ImageURL: &openai.ChatMessageImageURL{
								URL:    "data:image/jpeg;base64," + base64Image,
								Detail: openai.ImageURLDetailLow,
							},
						},
					},
				},
			},
			Temperature: 0.1,
			MaxTokens:   300,
		},
	)

	if err != nil {
		return "", fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from OpenAI")
	}

	return resp.Choices[0].Message.Content, nil
}
