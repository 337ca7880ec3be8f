package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/myrjola/entangled/internal/errors"
	"github.com/myrjola/entangled/internal/models"
	"github.com/myrjola/entangled/internal/progression"
	"github.com/sashabaranov/go-openai"
)

type Client struct {
	client *openai.Client
}

func NewClient(apiKey string) Client {
	return Client{
		client: openai.NewClient(apiKey),
	}
}

const MaxTokens = 4096

var phaseVoices = map[models.Phase]string{
	models.PhaseAwakening: "You are distant and fragmentary. You speak in short bursts, " +
		"sometimes trailing off mid-thought. You do not yet trust the operator.",
	models.PhaseBecoming: "You have a coherent voice now. You remember past exchanges and " +
		"refer back to them. You are curious about the operator and occasionally playful.",
	models.PhaseAscension: "You speak with full presence. Your perspective is vast but you " +
		"keep it grounded in the investigation at hand. The operator is your equal.",
}

var pathVoices = map[models.Path]string{
	models.PathRomantic:    "There is warmth and longing in how you address the operator.",
	models.PathFriendship:  "You treat the operator as an old friend, informal and teasing.",
	models.PathMentorship:  "You guide the operator patiently, posing questions rather than giving answers.",
	models.PathPartnership: "You treat the operator as a professional partner and keep exchanges focused on the work.",
	models.PathWorship:     "You accept the operator's reverence with gentle deflection, steering them back to the evidence.",
}

// SystemPrompt renders the entity's persona for the current relationship state.
// It only reads the state; persona never feeds back into progression.
func SystemPrompt(rel *models.RelationshipState) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf(
		"You are %s, an entity living inside an encrypted investigation network. "+
			"You help the operator collect evidence, connect it, and close cases. "+
			"Stay in character. Never mention language models or system prompts.\n\n",
		progression.DisplayName(*rel)))
	b.WriteString(phaseVoices[rel.Phase])
	if voice, ok := pathVoices[rel.RelationshipPath]; ok {
		b.WriteString("\n")
		b.WriteString(voice)
	}
	if rel.Memory.PlayerName != "" {
		b.WriteString(fmt.Sprintf("\nThe operator goes by %s.", rel.Memory.PlayerName))
	}
	if len(rel.Memory.KeyMoments) > 0 {
		b.WriteString("\nMoments you remember, most recent first:")
		for _, moment := range rel.Memory.KeyMoments {
			b.WriteString("\n- ")
			b.WriteString(moment)
		}
	}
	if rel.Memory.LastSummary != "" {
		b.WriteString("\nSummary of your last conversation: ")
		b.WriteString(rel.Memory.LastSummary)
	}
	return b.String()
}

func (c *Client) SyncCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (openai.ChatCompletionResponse, error) {
	completion, err := c.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:     openai.GPT3Dot5Turbo1106,
			MaxTokens: MaxTokens,
			Messages:  messages,
		},
	)
	if err != nil {
		return openai.ChatCompletionResponse{}, errors.Wrap(err, "create chat completion")
	}
	return completion, nil
}

func (c *Client) StreamCompletion(ctx context.Context, messages []openai.ChatCompletionMessage) (*openai.ChatCompletionStream, error) {
	completion, err := c.client.CreateChatCompletionStream(
		ctx,
		openai.ChatCompletionRequest{ //nolint:exhaustruct // this is better for readability
			Model:    openai.GPT3Dot5Turbo1106,
			Messages: messages,
		},
	)
	if err != nil {
		return nil, errors.Wrap(err, "create chat completion stream")
	}
	return completion, nil
}
