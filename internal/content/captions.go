package content

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
)

// maxHashtags caps the hashtag list returned per request.
const maxHashtags = 20

// Caption is a generated caption for one platform.
type Caption struct {
	Caption        string `json:"caption"`
	Platform       string `json:"platform"`
	CharacterCount int    `json:"characterCount"`
}

// captionPrompts holds the per-platform caption generation templates.
// Each platform gets copy tuned to its audience; hashtags are always
// generated separately.
var captionPrompts = map[string]string{
	"facebook": `Create a Facebook post for a video about: %s
Target audience: %s
Tone: %s

Requirements:
- Engaging hook in first line
- Encourage comments and shares
- Include relevant emojis
- Keep under 250 characters
- End with a question or call-to-action
- Don't include any hashtags (they'll be generated separately)`,

	"instagram": `Create an Instagram caption for a video about: %s
Target audience: %s
Tone: %s

Requirements:
- Start with a compelling hook
- Tell a story or share insight
- Use relevant emojis throughout
- Include line breaks for readability
- End with engaging questions
- Don't include any hashtags (they'll be generated separately)`,

	"tiktok": `Create a TikTok caption for a video about: %s
Target audience: %s
Tone: %s

Requirements:
- Short and punchy (under 150 characters)
- Use trending language and slang
- Create curiosity or urgency
- Include relevant emojis
- Reference trends when appropriate
- Don't include any hashtags (they'll be generated separately)`,

	"youtube": `Create a YouTube video description for: %s
Target audience: %s
Tone: %s

Requirements:
- Detailed description (200-300 words)
- Include key points and takeaways
- SEO-friendly with relevant keywords
- Call-to-action for likes, comments, subscribe
- Professional but engaging tone
- Don't include any hashtags (they'll be generated separately)`,
}

// defaultTones holds each platform's default tone when none is given.
var defaultTones = map[string]string{
	"facebook":  "engaging",
	"instagram": "authentic",
	"tiktok":    "trendy",
	"youtube":   "informative",
}

// fallbackHashtags is the canned hashtag table used when the model is
// unavailable or returns nothing usable.
var fallbackHashtags = map[string][]string{
	"facebook":  {"#video", "#content", "#social", "#facebook", "#engagement"},
	"instagram": {"#video", "#content", "#instagram", "#reels", "#viral"},
	"tiktok":    {"#video", "#tiktok", "#fyp", "#viral", "#trending"},
	"youtube":   {"#video", "#youtube", "#content", "#subscribe", "#viral"},
}

// CaptionForPlatform generates a caption tuned to one platform. A
// custom prompt overrides the platform template. On model failure it
// returns a mock caption so the UI always has something to show.
func (g *Generator) CaptionForPlatform(ctx context.Context, platform, videoDescription, targetAudience, tone, customPrompt string) Caption {
	prompt := customPrompt
	if prompt == "" {
		template, ok := captionPrompts[platform]
		if !ok {
			template = captionPrompts["facebook"]
		}
		if targetAudience == "" {
			targetAudience = "general"
		}
		if tone == "" {
			tone = defaultTones[platform]
		}
		prompt = fmt.Sprintf(template, videoDescription, targetAudience, tone)
	}

	maxTokens := int32(400)
	if platform == "youtube" {
		maxTokens = 800
	}

	text := ""
	if g.Available() {
		raw, err := g.generate(ctx, prompt, 0.7, maxTokens)
		if err != nil {
			log.Warn().Err(err).Str("platform", platform).Msg("Caption generation failed, using mock caption")
		} else {
			text = strings.TrimSpace(raw)
		}
	}
	if text == "" {
		text = fmt.Sprintf("🎬 Check out this amazing %s! Perfect for %s. 🚀", videoDescription, platform)
	}

	return Caption{
		Caption:        text,
		Platform:       platform,
		CharacterCount: len(text),
	}
}

// Hashtags generates hashtags for a post. Output is capped at twenty
// tags; everything that doesn't start with '#' is dropped. Falls back
// to the per-platform canned table.
func (g *Generator) Hashtags(ctx context.Context, text, platform, niche string) []string {
	if niche == "" {
		niche = "general content"
	}

	if g.Available() {
		prompt := fmt.Sprintf(`Generate relevant hashtags for a %s post about %s.
Content: %q

Requirements:
- Generate 15-20 hashtags
- Mix of popular and niche-specific hashtags
- Include trending hashtags when relevant
- Format as comma-separated list
- No explanations, just hashtags
- Focus on content-relevant and platform-appropriate hashtags`, platform, niche, text)

		raw, err := g.generate(ctx, prompt, 0.7, 300)
		if err != nil {
			log.Warn().Err(err).Str("platform", platform).Msg("Hashtag generation failed, using fallback")
		} else if tags := ParseHashtags(raw); len(tags) > 0 {
			return tags
		}
	}

	if tags, ok := fallbackHashtags[platform]; ok {
		return tags
	}
	return fallbackHashtags["facebook"]
}

// ParseHashtags extracts hashtags from a comma-separated model
// response, keeping only tokens that start with '#'.
func ParseHashtags(raw string) []string {
	var tags []string
	for _, part := range strings.Split(raw, ",") {
		tag := strings.TrimSpace(part)
		if strings.HasPrefix(tag, "#") {
			tags = append(tags, tag)
		}
		if len(tags) == maxHashtags {
			break
		}
	}
	return tags
}

// platformGuidelines feed the content optimizer.
var platformGuidelines = map[string]string{
	"facebook":  "Facebook posts should be engaging, conversational, and encourage comments. Keep it under 250 characters for best engagement.",
	"instagram": "Instagram captions should be visually appealing, use emojis, tell a story, and include a call-to-action. Can be longer and more personal.",
	"tiktok":    "TikTok captions should be short, trendy, use popular sounds/challenges references, and create urgency or curiosity.",
	"youtube":   "YouTube descriptions should be detailed, include keywords for SEO, timestamps, and clear calls-to-action. Include links and channel information.",
}

// OptimizeContent rewrites existing copy to fit one platform's best
// practices. Returns the input unchanged when the model is unavailable.
func (g *Generator) OptimizeContent(ctx context.Context, text, platform, objective string) (string, error) {
	if !g.Available() {
		return text, nil
	}
	if objective == "" {
		objective = "maximize engagement"
	}

	prompt := fmt.Sprintf(`Optimize this content for %s:
Original content: %q

Platform guidelines: %s
Objective: %s

Return optimized content that follows platform best practices while maintaining the core message.`,
		platform, text, platformGuidelines[platform], objective)

	raw, err := g.generate(ctx, prompt, 0.7, 500)
	if err != nil {
		return "", fmt.Errorf("optimize content for %s: %w", platform, err)
	}
	return strings.TrimSpace(raw), nil
}
