package content

import (
	"context"
	"reflect"
	"testing"
)

func TestStripMarkdownFences(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"no fences", `{"a":1}`, `{"a":1}`},
		{"json fences", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fences", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"surrounding whitespace", "  ```json\n{\"a\":1}\n```  ", `{"a":1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripMarkdownFences(tt.input); got != tt.expected {
				t.Errorf("stripMarkdownFences(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestParseJSON(t *testing.T) {
	type payload struct {
		Sentiment  string  `json:"sentiment"`
		Engagement float64 `json:"engagement"`
	}

	tests := []struct {
		name    string
		raw     string
		want    payload
		wantErr bool
	}{
		{
			name: "plain object",
			raw:  `{"sentiment":"positive","engagement":0.8}`,
			want: payload{Sentiment: "positive", Engagement: 0.8},
		},
		{
			name: "fenced object",
			raw:  "```json\n{\"sentiment\":\"neutral\",\"engagement\":0.5}\n```",
			want: payload{Sentiment: "neutral", Engagement: 0.5},
		},
		{
			name: "object surrounded by prose",
			raw:  "Here is the analysis you asked for:\n{\"sentiment\":\"negative\",\"engagement\":0.2}\nHope that helps!",
			want: payload{Sentiment: "negative", Engagement: 0.2},
		},
		{
			name:    "no object at all",
			raw:     "I cannot analyze this content.",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseJSON[payload](tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseHashtags(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected []string
	}{
		{
			name:     "clean list",
			raw:      "#video, #content, #viral",
			expected: []string{"#video", "#content", "#viral"},
		},
		{
			name:     "drops non hashtag tokens",
			raw:      "Here are your tags: #video, content, #viral",
			expected: []string{"#video", "#viral"},
		},
		{
			name:     "nothing usable",
			raw:      "Sorry, I could not generate hashtags.",
			expected: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseHashtags(tt.raw); !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseHashtags(%q) = %v, want %v", tt.raw, got, tt.expected)
			}
		})
	}
}

func TestParseHashtagsCap(t *testing.T) {
	raw := ""
	for i := 0; i < 30; i++ {
		raw += "#tag, "
	}
	if got := ParseHashtags(raw); len(got) != maxHashtags {
		t.Errorf("expected cap of %d hashtags, got %d", maxHashtags, len(got))
	}
}

func TestFallbackContent(t *testing.T) {
	generated := FallbackContent("My Title", "A longer description", []string{"facebook", "youtube"})

	if generated["facebook"].Caption != "A longer description" {
		t.Errorf("facebook caption = %q", generated["facebook"].Caption)
	}
	if generated["facebook"].Title != "" {
		t.Error("facebook should not carry a title")
	}
	if generated["youtube"].Title != "My Title" {
		t.Errorf("youtube title = %q", generated["youtube"].Title)
	}
	if len(generated["facebook"].Hashtags) != 0 {
		t.Error("fallback content should not invent hashtags")
	}
}

func TestFallbackContentTitleOnly(t *testing.T) {
	generated := FallbackContent("Just a title", "", []string{"tiktok"})
	if generated["tiktok"].Caption != "Just a title" {
		t.Errorf("caption should fall back to the title, got %q", generated["tiktok"].Caption)
	}
}

func TestNilGeneratorFallbacks(t *testing.T) {
	var g *Generator
	ctx := context.Background()

	if g.Available() {
		t.Fatal("nil generator should not be available")
	}

	analysis := g.AnalyzeContent(ctx, "some post")
	if analysis.Sentiment != "neutral" || analysis.Engagement != 0.5 || analysis.Relevance != 0.5 {
		t.Errorf("nil generator analysis = %+v, want neutral fallback", analysis)
	}

	if reply := g.EngagementReply(ctx, "some post", "facebook"); reply != "Great content! 👍" {
		t.Errorf("nil generator reply = %q", reply)
	}

	caption := g.CaptionForPlatform(ctx, "tiktok", "a cooking demo", "", "", "")
	if caption.Platform != "tiktok" {
		t.Errorf("caption platform = %q", caption.Platform)
	}
	if caption.Caption == "" || caption.CharacterCount != len(caption.Caption) {
		t.Errorf("mock caption malformed: %+v", caption)
	}

	tags := g.Hashtags(ctx, "post text", "tiktok", "")
	if !reflect.DeepEqual(tags, fallbackHashtags["tiktok"]) {
		t.Errorf("nil generator hashtags = %v", tags)
	}

	optimized, err := g.OptimizeContent(ctx, "original copy", "instagram", "")
	if err != nil || optimized != "original copy" {
		t.Errorf("nil generator optimize = %q, %v", optimized, err)
	}
}
