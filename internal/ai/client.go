// Package ai wraps the Gemini API behind three narrow capabilities:
// summarization, answer generation, and text embeddings. Callers depend on
// interfaces they define themselves, so this client can be swapped for a
// fake in tests.
package ai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"google.golang.org/genai"

	"secondbrain/internal/apperr"
)

type Client struct {
	genai      *genai.Client
	model      string
	embedModel string
	embedDim   int32
	log        *slog.Logger
}

func New(ctx context.Context, apiKey, model, embedModel string, embedDim int32, log *slog.Logger) (*Client, error) {
	if log == nil {
		log = slog.Default()
	}

	gc, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	return &Client{
		genai:      gc,
		model:      model,
		embedModel: embedModel,
		embedDim:   embedDim,
		log:        log,
	}, nil
}

type SummarizeInput struct {
	Title       string
	Description string
	Content     string
}

type Summary struct {
	Summary    string   `json:"summary"`
	KeyPoints  []string `json:"key_points"`
	Tags       []string `json:"tags"`
	IsFallback bool     `json:"-"`
	Model      string   `json:"-"`
}

const summarizePrompt = `You summarize saved web content for a personal knowledge base.
Given the article below, respond with ONLY a JSON object of this exact shape:
{"summary": "<3-5 sentence prose summary>", "key_points": ["<up to 5 key points>"], "tags": ["<up to 6 lowercase topic tags>"]}

Title: %TITLE%
Description: %DESC%

Article:
%CONTENT%`

// Summarize produces a prose summary, key points and topic tags. Content is
// truncated before sending; callers treat any error as non-fatal.
func (c *Client) Summarize(ctx context.Context, in SummarizeInput) (*Summary, error) {
	prompt := strings.NewReplacer(
		"%TITLE%", in.Title,
		"%DESC%", in.Description,
		"%CONTENT%", clip(in.Content, 12000),
	).Replace(summarizePrompt)

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr[float32](0.3),
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		return nil, apperr.Upstream("summarization failed", err)
	}

	var sum Summary
	if err := json.Unmarshal([]byte(stripFences(resp.Text())), &sum); err != nil {
		return nil, apperr.Upstream("summarizer returned malformed output", err)
	}
	if len(sum.KeyPoints) > 5 {
		sum.KeyPoints = sum.KeyPoints[:5]
	}
	if len(sum.Tags) > 6 {
		sum.Tags = sum.Tags[:6]
	}
	sum.Model = c.model

	c.log.Debug("summary generated", "model", c.model, "tags", len(sum.Tags))
	return &sum, nil
}

const answerSystem = `You are a helpful assistant that answers questions from the user's personal knowledge base.
Answer ONLY from the provided context. If the information is insufficient, say so clearly.
Cite sources by position, e.g. "According to Source 1...". Use markdown. If sources conflict, mention both perspectives.`

// Answer generates a grounded answer for the question given an assembled
// context block of ranked sources.
func (c *Client) Answer(ctx context.Context, question, contextBlock string) (string, error) {
	prompt := "**Question:** " + question +
		"\n\n**Available information from the knowledge base:**\n" + contextBlock +
		"\n\n**Provide a comprehensive answer based only on the information above:**"

	resp, err := c.genai.Models.GenerateContent(ctx, c.model, genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:       genai.Ptr[float32](0.3),
			TopP:              genai.Ptr[float32](0.9),
			MaxOutputTokens:   1500,
			SystemInstruction: genai.NewContentFromText(answerSystem, genai.RoleUser),
		})
	if err != nil {
		return "", apperr.Upstream("answer generation failed", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", apperr.Upstream("answer generation returned no text", nil)
	}
	return text, nil
}

// Embed converts text into a vector of the configured dimensionality.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.genai.Models.EmbedContent(ctx, c.embedModel, genai.Text(clip(text, 8000)),
		&genai.EmbedContentConfig{OutputDimensionality: genai.Ptr(c.embedDim)})
	if err != nil {
		return nil, apperr.Upstream("failed to generate embedding", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, apperr.Upstream("empty embedding response", nil)
	}
	return resp.Embeddings[0].Values, nil
}

func (c *Client) EmbedModel() string { return c.embedModel }

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

// stripFences removes a markdown code fence if the model wrapped its JSON in
// one despite the response MIME type.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(s, "```")
	}
	return strings.TrimSpace(s)
}
