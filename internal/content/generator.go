// Package content generates platform-specific captions, hashtags, and
// engagement copy with the Gemini API. Every entry point degrades to a
// deterministic fallback when no API key is configured or the model
// response cannot be used, so automation never blocks on the AI side.
package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"google.golang.org/genai"
)

// DefaultModelName is the default Gemini model to use.
// Can be overridden via GEMINI_MODEL.
const DefaultModelName = "gemini-2.5-flash"

// PlatformPost is the generated copy for one platform.
type PlatformPost struct {
	Title    string   `json:"title,omitempty"`
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags,omitempty"`
	Tags     []string `json:"tags,omitempty"`
}

// GeneratedContent maps platform identifiers to generated copy.
type GeneratedContent map[string]PlatformPost

// Analysis scores a piece of content for automation decisions.
type Analysis struct {
	Sentiment            string   `json:"sentiment"`
	Engagement           float64  `json:"engagement"`
	Relevance            float64  `json:"relevance"`
	Keywords             []string `json:"keywords,omitempty"`
	ActionRecommendation string   `json:"action_recommendation,omitempty"`
}

// neutralAnalysis is the fallback when the model is unavailable.
func neutralAnalysis() Analysis {
	return Analysis{Sentiment: "neutral", Engagement: 0.5, Relevance: 0.5}
}

// Generator wraps a Gemini client and model choice. A nil Generator is
// valid and always answers with fallbacks.
type Generator struct {
	client *genai.Client
	model  string
}

// NewGenerator creates a Generator. An empty apiKey returns a nil
// Generator (fallback-only mode) rather than an error: the pipeline is
// expected to run without AI configured.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		log.Info().Msg("No Gemini API key configured, content generation uses fallbacks")
		return nil, nil
	}
	if model == "" {
		model = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}
	return &Generator{client: client, model: model}, nil
}

// Available reports whether real model calls can be made.
func (g *Generator) Available() bool {
	return g != nil && g.client != nil
}

// generate runs one text prompt and returns the raw response text.
func (g *Generator) generate(ctx context.Context, prompt string, temperature float32, maxTokens int32) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		Temperature:     genai.Ptr(temperature),
		MaxOutputTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if resp == nil || resp.Text() == "" {
		return "", fmt.Errorf("received empty response from Gemini API")
	}
	return resp.Text(), nil
}

// GeneratePlatformContent produces per-platform captions and hashtags
// for a post. On any model problem it returns FallbackContent.
func (g *Generator) GeneratePlatformContent(ctx context.Context, title, description string, platforms []string) GeneratedContent {
	if !g.Available() {
		return FallbackContent(title, description, platforms)
	}

	prompt := fmt.Sprintf(`Generate platform-specific content for this social media post:

Title: %q
Description: %q
Platforms: %s

Return a JSON object keyed by platform. For each platform include:
- caption: string optimized for that platform's style and audience
- hashtags: array of hashtag strings
For youtube, include title and tags instead of hashtags.
Return only the JSON object.`, title, description, strings.Join(platforms, ", "))

	raw, err := g.generate(ctx, prompt, 0.7, 800)
	if err != nil {
		log.Warn().Err(err).Msg("Platform content generation failed, using fallback")
		return FallbackContent(title, description, platforms)
	}

	generated, err := ParseJSON[GeneratedContent](raw)
	if err != nil {
		log.Warn().Err(err).Msg("Could not parse generated platform content, using fallback")
		return FallbackContent(title, description, platforms)
	}
	return generated
}

// AnalyzeContent scores content for engagement automation. Falls back
// to a neutral analysis on any model problem.
func (g *Generator) AnalyzeContent(ctx context.Context, text string) Analysis {
	if !g.Available() {
		return neutralAnalysis()
	}

	prompt := fmt.Sprintf(`Analyze this social media content for engagement potential:

Content: %q

Return a JSON object with:
- sentiment: "positive", "negative", or "neutral"
- engagement: score from 0-1 (higher = more engaging)
- relevance: score from 0-1 (higher = more relevant to target audience)
- keywords: array of key topics
- action_recommendation: "like", "comment", "share", or "follow"`, text)

	raw, err := g.generate(ctx, prompt, 0.3, 300)
	if err != nil {
		log.Warn().Err(err).Msg("Content analysis failed, using neutral fallback")
		return neutralAnalysis()
	}

	analysis, err := ParseJSON[Analysis](raw)
	if err != nil {
		log.Warn().Err(err).Msg("Could not parse content analysis, using neutral fallback")
		return neutralAnalysis()
	}
	return analysis
}

// EngagementReply generates a short, natural response to someone else's
// post. Falls back to a canned reply.
func (g *Generator) EngagementReply(ctx context.Context, text, platform string) string {
	const fallback = "Great content! 👍"
	if !g.Available() {
		return fallback
	}

	prompt := fmt.Sprintf(`Generate a natural, engaging response for this %s content:

Content: %q

Requirements:
- Keep it short and authentic (under 50 characters)
- Use appropriate emojis
- Sound like a real person, not a bot
- Match the tone of the original content
- Don't be overly promotional

Return only the response text, no quotes or explanations.`, platform, text)

	raw, err := g.generate(ctx, prompt, 0.7, 100)
	if err != nil {
		log.Warn().Err(err).Msg("Engagement reply generation failed, using fallback")
		return fallback
	}
	return strings.TrimSpace(raw)
}

// FallbackContent is the deterministic copy used when the model is
// unavailable: the description (or title) verbatim, no hashtags.
func FallbackContent(title, description string, platforms []string) GeneratedContent {
	caption := description
	if caption == "" {
		caption = title
	}
	generated := make(GeneratedContent, len(platforms))
	for _, p := range platforms {
		post := PlatformPost{Caption: caption}
		if p == "youtube" || strings.HasPrefix(p, "youtube_") {
			post.Title = title
		}
		generated[p] = post
	}
	return generated
}
