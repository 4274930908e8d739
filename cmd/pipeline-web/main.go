// Command pipeline-web serves the video pipeline HTTP API: upload,
// analysis, platform rendition processing, status polling, AI content
// generation, social publishing, the post library, and the automation
// agents.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/fpang/social-video-pipeline/internal/agents"
	"github.com/fpang/social-video-pipeline/internal/content"
	"github.com/fpang/social-video-pipeline/internal/logging"
	"github.com/fpang/social-video-pipeline/internal/pipeline"
	"github.com/fpang/social-video-pipeline/internal/posts"
	"github.com/fpang/social-video-pipeline/internal/s3util"
	"github.com/fpang/social-video-pipeline/internal/social"
	"github.com/fpang/social-video-pipeline/internal/store"
	"github.com/fpang/social-video-pipeline/internal/videoproc"
)

// CLI flags
var (
	portFlag       int
	uploadsDirFlag string
	storeFlag      string
	tableFlag      string
	modelFlag      string
)

var rootCmd = &cobra.Command{
	Use:   "pipeline-web",
	Short: "Web server for video analysis, transcoding, and publishing",
	Long: `Pipeline Web starts the HTTP server for the social video pipeline.
Upload a video, let the pipeline classify its camera format, render
platform-specific variants, and publish them to connected accounts.

Examples:
  pipeline-web
  pipeline-web --port 9090
  pipeline-web --store dynamo --table video-pipeline`,
	Run: runMain,
}

func init() {
	rootCmd.Flags().IntVar(&portFlag, "port", 3000, "Port to listen on")
	rootCmd.Flags().StringVar(&uploadsDirFlag, "uploads-dir", "uploads", "Directory for uploaded videos")
	rootCmd.Flags().StringVar(&storeFlag, "store", "file", "Analysis store backend: file or dynamo")
	rootCmd.Flags().StringVar(&tableFlag, "table", "video-pipeline", "DynamoDB table name (with --store dynamo)")
	rootCmd.Flags().StringVarP(&modelFlag, "model", "m", "", "Gemini model to use (default from GEMINI_MODEL)")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// server holds the wired application. Handlers hang off it; there are
// no package-level singletons.
type server struct {
	uploadsDir   string
	processedDir string
	store        store.AnalysisStore
	orchestrator *pipeline.Orchestrator
	runner       *pipeline.Runner
	generator    *content.Generator
	publisher    *social.Publisher
	posts        *posts.Library
	agents       *agents.Manager
}

func runMain(cmd *cobra.Command, args []string) {
	logging.Init()
	ctx := context.Background()

	uploadsDir, err := filepath.Abs(uploadsDirFlag)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid uploads directory")
	}
	processedDir := filepath.Join(uploadsDir, "processed")
	if err := os.MkdirAll(processedDir, 0o755); err != nil {
		log.Fatal().Err(err).Msg("Failed to create uploads directory")
	}

	if err := videoproc.CheckFFprobeAvailable(); err != nil {
		log.Warn().Err(err).Msg("ffprobe not found, uploads get fallback metadata")
	}
	if err := videoproc.CheckFFmpegAvailable(); err != nil {
		log.Warn().Err(err).Msg("ffmpeg not found, platform processing will fail")
	}

	analysisStore, mirror := buildStore(ctx, processedDir)

	generator, err := content.NewGenerator(ctx, os.Getenv("GEMINI_API_KEY"), geminiModel())
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create Gemini client")
	}

	publisher := social.NewPublisher(social.TokensFromEnv())

	srv := &server{
		uploadsDir:   uploadsDir,
		processedDir: processedDir,
		store:        analysisStore,
		orchestrator: pipeline.NewOrchestrator(analysisStore, &videoproc.FFmpegRenderer{}, uploadsDir, processedDir, mirror),
		runner:       pipeline.NewRunner(),
		generator:    generator,
		publisher:    publisher,
		posts:        posts.NewLibrary(publisher),
		agents:       agents.NewManager(generator, publisher),
	}

	handler := withLogging(withCORS(srv.routes()))

	httpSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", portFlag),
		Handler:      handler,
		ReadTimeout:  5 * time.Minute, // large uploads
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown: stop accepting requests, then drain the
	// background render runs and the agent scheduler.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Info().Msg("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpSrv.Shutdown(shutdownCtx)
		srv.runner.Shutdown(30 * time.Second)
		srv.agents.Shutdown()
	}()

	log.Info().Int("port", portFlag).Str("uploadsDir", uploadsDir).Str("store", storeFlag).Msg("Starting pipeline server")

	if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("Server failed")
	}
}

// buildStore selects the analysis store backend and the optional S3
// mirror from flags and environment.
func buildStore(ctx context.Context, processedDir string) (store.AnalysisStore, *s3util.Mirror) {
	var analysisStore store.AnalysisStore
	var mirror *s3util.Mirror

	bucket := os.Getenv("PIPELINE_S3_BUCKET")
	needsAWS := storeFlag == "dynamo" || bucket != ""

	if needsAWS {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to load AWS config")
		}
		if storeFlag == "dynamo" {
			analysisStore = store.NewDynamoStore(dynamodb.NewFromConfig(cfg), tableFlag)
			log.Info().Str("table", tableFlag).Msg("Using DynamoDB analysis store")
		}
		if bucket != "" {
			mirror = s3util.NewMirror(s3.NewFromConfig(cfg), bucket)
			log.Info().Str("bucket", bucket).Msg("S3 rendition mirroring enabled")
		}
	}

	if analysisStore == nil {
		if storeFlag != "file" && storeFlag != "dynamo" {
			log.Fatal().Str("store", storeFlag).Msg("Unknown store backend")
		}
		fileStore, err := store.NewFileStore(processedDir)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create file store")
		}
		analysisStore = fileStore
	}
	return analysisStore, mirror
}

// geminiModel resolves the model name from the flag or environment.
func geminiModel() string {
	if modelFlag != "" {
		return modelFlag
	}
	return logging.EnvOrDefault("GEMINI_MODEL", content.DefaultModelName)
}

// routes builds the API mux.
func (s *server) routes() http.Handler {
	mux := http.NewServeMux()

	// Upload and processing
	mux.HandleFunc("POST /api/upload/video", s.handleUploadVideo)
	mux.HandleFunc("GET /api/upload/files", s.handleListFiles)
	mux.HandleFunc("DELETE /api/upload/files/{filename}", s.handleDeleteFile)
	mux.HandleFunc("POST /api/upload/video/{filename}/process", s.handleProcessVideo)
	mux.HandleFunc("GET /api/upload/video/{filename}/status", s.handleVideoStatus)

	// AI content generation
	mux.HandleFunc("POST /api/ai/generate-content", s.handleGenerateContent)
	mux.HandleFunc("POST /api/ai/generate-hashtags", s.handleGenerateHashtags)
	mux.HandleFunc("POST /api/ai/optimize-content", s.handleOptimizeContent)

	// Social publishing
	mux.HandleFunc("GET /api/social/status", s.handleSocialStatus)
	mux.HandleFunc("POST /api/social/post-all", s.handlePostAll)
	mux.HandleFunc("POST /api/social/{platform}", s.handlePostPlatform)

	// Post library
	mux.HandleFunc("GET /api/posts", s.handleListPosts)
	mux.HandleFunc("POST /api/posts", s.handleCreatePost)
	mux.HandleFunc("GET /api/posts/{id}", s.handleGetPost)
	mux.HandleFunc("PUT /api/posts/{id}", s.handleUpdatePost)
	mux.HandleFunc("DELETE /api/posts/{id}", s.handleDeletePost)
	mux.HandleFunc("POST /api/posts/{id}/publish", s.handlePublishPost)

	// Automation agents
	mux.HandleFunc("GET /api/agents/status", s.handleAgentStatusAll)
	mux.HandleFunc("GET /api/agents/status/{agentName}", s.handleAgentStatus)
	mux.HandleFunc("POST /api/agents/start/{agentName}", s.handleAgentStart)
	mux.HandleFunc("POST /api/agents/stop/{agentName}", s.handleAgentStop)
	mux.HandleFunc("PUT /api/agents/config/{agentName}", s.handleAgentConfig)
	mux.HandleFunc("POST /api/agents/auto-posting/add-content", s.handleQueueAdd)
	mux.HandleFunc("GET /api/agents/auto-posting/queue", s.handleQueueGet)
	mux.HandleFunc("POST /api/agents/auto-posting/run", s.handleAutoPostingRun)
	mux.HandleFunc("POST /api/agents/engagement/add-target", s.handleEngagementAddTarget)
	mux.HandleFunc("GET /api/agents/engagement/targets", s.handleEngagementTargets)
	mux.HandleFunc("POST /api/agents/engagement/run", s.handleEngagementRun)
	mux.HandleFunc("POST /api/agents/following/add-keywords", s.handleFollowingAddKeywords)
	mux.HandleFunc("GET /api/agents/following/keywords", s.handleFollowingKeywords)
	mux.HandleFunc("POST /api/agents/following/run", s.handleFollowingRun)
	mux.HandleFunc("POST /api/agents/trigger-all", s.handleAgentsTriggerAll)
	mux.HandleFunc("GET /api/agents/analytics", s.handleAgentAnalytics)

	// Uploaded files and renditions are served directly.
	mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.uploadsDir))))

	return mux
}

// --- Middleware ---

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		if strings.HasPrefix(r.URL.Path, "/api/") {
			log.Info().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Dur("duration", time.Since(start)).
				Msg("API request")
		}
	})
}

func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && (strings.HasPrefix(origin, "http://localhost:") || strings.HasPrefix(origin, "http://127.0.0.1:")) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}
