package videoproc

// Transform is the geometry transformation applied when rendering a
// source video for a platform variant.
type Transform string

const (
	// TransformNone scales down to fit the variant's max bounds when
	// needed and otherwise passes dimensions through unchanged.
	TransformNone Transform = "none"

	// TransformCropToSquare center-crops to a square before scaling.
	TransformCropToSquare Transform = "cropToSquare"

	// TransformAddPadding letterboxes/pillarboxes the source into the
	// variant's target aspect ratio without cropping.
	TransformAddPadding Transform = "addPadding"
)

// PlatformConfig describes one platform variant's rendition constraints
// plus the transform directive chosen by the planner for a given source.
type PlatformConfig struct {
	MaxWidth     int       `json:"maxWidth"`
	MaxHeight    int       `json:"maxHeight"`
	AspectRatio  string    `json:"aspectRatio"`
	Formats      []string  `json:"formats"`
	MaxFileSize  int64     `json:"maxFileSize"`
	MaxDuration  int       `json:"maxDuration"`
	Transform    Transform `json:"transform,omitempty"`
	PaddingColor string    `json:"paddingColor,omitempty"`
}

// Platform variant identifiers. A variant is a named rendition profile;
// one platform can have several (e.g. instagram_feed vs instagram_reels).
const (
	VariantFacebook       = "facebook"
	VariantInstagramFeed  = "instagram_feed"
	VariantInstagramReels = "instagram_reels"
	VariantInstagramStory = "instagram_story"
	VariantTikTok         = "tiktok"
	VariantYouTubeShorts  = "youtube_shorts"
	VariantYouTubeRegular = "youtube_regular"
)

// PlatformSpecs is the static table of per-variant upload requirements.
// The planner copies entries out of this table and stamps a Transform on
// them; the table itself is never mutated.
var PlatformSpecs = map[string]PlatformConfig{
	VariantFacebook: {
		MaxWidth:    1920,
		MaxHeight:   1080,
		AspectRatio: "16:9",
		Formats:     []string{"mp4"},
		MaxFileSize: 4 * 1024 * 1024 * 1024, // 4GB
		MaxDuration: 240,                    // 4 minutes
	},
	VariantInstagramFeed: {
		MaxWidth:    1080,
		MaxHeight:   1080,
		AspectRatio: "1:1",
		Formats:     []string{"mp4"},
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxDuration: 60,                // 1 minute
	},
	VariantInstagramReels: {
		MaxWidth:    1080,
		MaxHeight:   1920,
		AspectRatio: "9:16",
		Formats:     []string{"mp4"},
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxDuration: 90,                // 1.5 minutes
	},
	VariantInstagramStory: {
		MaxWidth:    1080,
		MaxHeight:   1920,
		AspectRatio: "9:16",
		Formats:     []string{"mp4"},
		MaxFileSize: 100 * 1024 * 1024, // 100MB
		MaxDuration: 15,                // 15 seconds
	},
	VariantTikTok: {
		MaxWidth:    1080,
		MaxHeight:   1920,
		AspectRatio: "9:16",
		Formats:     []string{"mp4"},
		MaxFileSize: 500 * 1024 * 1024, // 500MB
		MaxDuration: 180,               // 3 minutes
	},
	VariantYouTubeShorts: {
		MaxWidth:    1080,
		MaxHeight:   1920,
		AspectRatio: "9:16",
		Formats:     []string{"mp4"},
		MaxFileSize: 15 * 1024 * 1024 * 1024, // 15GB
		MaxDuration: 60,                      // 1 minute
	},
	VariantYouTubeRegular: {
		MaxWidth:    1920,
		MaxHeight:   1080,
		AspectRatio: "16:9",
		Formats:     []string{"mp4"},
		MaxFileSize: 256 * 1024 * 1024 * 1024, // 256GB
		MaxDuration: 43200,                    // 12 hours
	},
}

// native returns the base config for a variant with Transform set to none.
func native(variant string) PlatformConfig {
	cfg := PlatformSpecs[variant]
	cfg.Transform = TransformNone
	return cfg
}

// cropped returns the base config with a center-crop-to-square directive.
func cropped(variant string) PlatformConfig {
	cfg := PlatformSpecs[variant]
	cfg.Transform = TransformCropToSquare
	return cfg
}

// padded returns the base config with a letterbox/pillarbox directive.
func padded(variant string) PlatformConfig {
	cfg := PlatformSpecs[variant]
	cfg.Transform = TransformAddPadding
	cfg.PaddingColor = "black"
	return cfg
}

// PlanPlatforms maps a camera format to the set of platform variants the
// pipeline offers for it, each with the transform the renderer should apply.
//
// The policy: variants whose orientation matches the source are offered
// untouched; mismatched orientations get a content-preserving letterbox or
// pillarbox rather than a destructive crop, with the one exception of the
// square Instagram feed, which is intentionally center-cropped. Formats
// outside the three canonical orientations get every variant's base config
// and rely on the renderer's scale-to-fit handling.
func PlanPlatforms(format CameraFormat, metadata VideoMetadata) map[string]PlatformConfig {
	configs := make(map[string]PlatformConfig)

	switch format {
	case FormatPortrait:
		// Native fit for TikTok, Instagram Reels, YouTube Shorts.
		configs[VariantTikTok] = native(VariantTikTok)
		configs[VariantInstagramReels] = native(VariantInstagramReels)
		configs[VariantYouTubeShorts] = native(VariantYouTubeShorts)
		configs[VariantInstagramFeed] = cropped(VariantInstagramFeed)
		configs[VariantFacebook] = padded(VariantFacebook)

	case FormatLandscapeHD, FormatLandscapeSD:
		// Native fit for Facebook and regular YouTube.
		configs[VariantFacebook] = native(VariantFacebook)
		configs[VariantYouTubeRegular] = native(VariantYouTubeRegular)
		configs[VariantInstagramFeed] = cropped(VariantInstagramFeed)
		configs[VariantTikTok] = padded(VariantTikTok)
		configs[VariantInstagramReels] = padded(VariantInstagramReels)

	case FormatSquare:
		// Native fit for the Instagram feed only.
		configs[VariantInstagramFeed] = native(VariantInstagramFeed)
		configs[VariantFacebook] = padded(VariantFacebook)
		configs[VariantTikTok] = padded(VariantTikTok)
		configs[VariantYouTubeRegular] = padded(VariantYouTubeRegular)

	default:
		// standard, ultrawide, ultra_portrait, custom: offer everything
		// with base configs; the renderer's scale-to-fit handles geometry.
		configs[VariantFacebook] = native(VariantFacebook)
		configs[VariantInstagramFeed] = native(VariantInstagramFeed)
		configs[VariantInstagramReels] = native(VariantInstagramReels)
		configs[VariantTikTok] = native(VariantTikTok)
		configs[VariantYouTubeRegular] = native(VariantYouTubeRegular)
		configs[VariantYouTubeShorts] = native(VariantYouTubeShorts)
	}

	return configs
}
