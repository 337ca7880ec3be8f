package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/myrjola/entangled/internal/ai"
	"github.com/myrjola/entangled/internal/contexthelpers"
	"github.com/myrjola/entangled/internal/errors"
	"github.com/sashabaranov/go-openai"
)

type chatRequest struct {
	Message string `json:"message"`
	// Stream asks for the reply to be delivered over /api/chat/stream.
	Stream bool `json:"stream,omitempty"`
}

// chat sends a message to the entity. The persona follows the current
// relationship state and every exchange counts towards progression. With
// stream set, the reply is produced in the background and the client should
// attach to the SSE endpoint for the tokens.
func (app *application) chat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)

	var req chatRequest
	if err := app.decodeJSON(r, &req); err != nil || req.Message == "" {
		app.clientError(w, r, http.StatusBadRequest)
		return
	}

	relationship, err := app.relationships.RecordInteraction(ctx, userID, app.entityID)
	if err != nil {
		app.serverError(w, r, err)
		return
	}
	messages := []openai.ChatCompletionMessage{
		{Role: openai.ChatMessageRoleSystem, Content: ai.SystemPrompt(relationship)},
		{Role: openai.ChatMessageRoleUser, Content: req.Message},
	}

	if !req.Stream {
		completion, err := app.aiClient.SyncCompletion(ctx, messages)
		if err != nil {
			app.serverError(w, r, err)
			return
		}
		if len(completion.Choices) == 0 {
			app.serverError(w, r, errors.New("completion returned no choices"))
			return
		}
		app.writeJSON(w, r, http.StatusOK, map[string]any{
			"reply":        completion.Choices[0].Message.Content,
			"relationship": relationship,
		})
		return
	}

	tokens := make(chan string)
	app.streams.Publish(userID, tokens)
	go app.produceReply(userID, tokens, messages)

	app.writeJSON(w, r, http.StatusAccepted, map[string]any{
		"streaming":    true,
		"relationship": relationship,
	})
}

// produceReply feeds completion deltas into the token channel for the SSE
// consumer. The channel is unbuffered, so the producer blocks until a consumer
// attaches or the deadline runs out.
func (app *application) produceReply(userID string, tokens chan string, messages []openai.ChatCompletionMessage) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer app.streams.Unpublish(userID)
	defer cancel()

	completionStream, err := app.aiClient.StreamCompletion(ctx, messages)
	if err != nil {
		app.logger.LogAttrs(ctx, slog.LevelError, "start completion stream", errors.SlogError(err))
		close(tokens)
		return
	}
	defer completionStream.Close()

	for {
		response, err := completionStream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			app.logger.LogAttrs(ctx, slog.LevelError, "receive completion delta", errors.SlogError(err))
			break
		}
		if len(response.Choices) == 0 || response.Choices[0].Delta.Content == "" {
			continue
		}
		select {
		case tokens <- response.Choices[0].Delta.Content:
		case <-ctx.Done():
			close(tokens)
			return
		}
	}
	close(tokens)
}

// streamChat delivers the in-flight entity reply as Server Sent Events. When
// no reply is streaming, only the done event is sent and the client should
// fall back to the persisted state.
func (app *application) streamChat(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := contexthelpers.CurrentUserID(ctx)

	flusher, ok := w.(http.Flusher)
	if !ok {
		app.serverError(w, r, errors.New("response writer does not support flushing"))
		return
	}
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	stream, ok := <-app.streams.Subscribe(userID)
	if !ok || stream == nil {
		_, _ = fmt.Fprint(w, "event: done\ndata:\n\n")
		flusher.Flush()
		return
	}

	for token := range stream {
		select {
		case <-ctx.Done():
			// Keep draining so the producer can finish.
			continue
		default:
		}
		for _, line := range strings.Split(token, "\n") {
			_, _ = fmt.Fprintf(w, "data: %s\n", line)
		}
		_, _ = fmt.Fprint(w, "\n")
		flusher.Flush()
	}
	_, _ = fmt.Fprint(w, "event: done\ndata:\n\n")
	flusher.Flush()
}
