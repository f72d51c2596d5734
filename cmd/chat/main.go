package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/philfry41/grok-playground/internal/config"
	"github.com/philfry41/grok-playground/internal/engine"
	"github.com/philfry41/grok-playground/internal/logger"
	"github.com/philfry41/grok-playground/internal/services"
	"github.com/philfry41/grok-playground/internal/storage"
	"github.com/philfry41/grok-playground/pkg/guard"
	"github.com/philfry41/grok-playground/pkg/scene"
)

var (
	sessionFlag string
	openerFlag  string
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive scene chat with edge guarding and state tracking",
	Long: `Runs an interactive storytelling session against the xAI API.
Generated passages are scanned for the blocked climax event and rolled
back to the last safe sentence when one slips through; scene state is
extracted each turn and fed back as a continuity directive.`,
	SilenceUsage: true,
	RunE:         runChat,
}

var edgelogCmd = &cobra.Command{
	Use:   "edgelog",
	Short: "Show recent edge trigger records",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		content, err := readEdgeLog(cfg.EdgeLogFile, edgeLogTailBytes)
		if err != nil {
			return err
		}
		if content == "" {
			fmt.Println("No edge triggers logged yet")
			return nil
		}
		fmt.Print(content)
		return nil
	},
}

var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List available text-to-speech voices",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		log := logger.Setup(cfg)
		tts, err := services.NewElevenLabsService(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsMaxLength, log)
		if err != nil {
			return err
		}
		voices, err := tts.Voices(cmd.Context())
		if err != nil {
			return err
		}
		for _, v := range voices {
			fmt.Printf("%s: %s\n", v.VoiceID, v.Name)
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&sessionFlag, "session", "", "session UUID to resume")
	rootCmd.Flags().StringVar(&openerFlag, "opener", "", "file whose contents open the scene")
	rootCmd.AddCommand(edgelogCmd, voicesCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg)

	llm, err := services.NewGrokService(cfg.XAIAPIKey, cfg.XAIModel, cfg.XAIBaseURL, cfg.XAIRetryMinimal, log)
	if err != nil {
		return err
	}

	var tts *services.ElevenLabsService
	if cfg.TTSEnabled() {
		tts, err = services.NewElevenLabsService(cfg.ElevenLabsAPIKey, cfg.ElevenLabsVoiceID, cfg.ElevenLabsMaxLength, log)
		if err != nil {
			return err
		}
	}

	g, err := guard.New(guard.Config{
		Matcher:        guard.MatcherConfig{Window: cfg.EdgeProximityWindow},
		TailSentences:  cfg.EdgeTailSentences,
		MinRepairWords: cfg.EdgeMinRepairWords,
	}, guard.NewFileAuditLog(cfg.EdgeLogFile), log)
	if err != nil {
		return err
	}

	var store storage.SessionStore
	if cfg.RedisURL != "" {
		store, err = storage.NewRedisStore(cfg.RedisURL, log)
	} else {
		store, err = storage.NewFileStore(cfg.SessionDir, log)
	}
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	tracker := scene.NewTracker(llm, log)
	eng := engine.New(llm, g, tracker, store, log, engine.Options{
		HistoryLimit: cfg.HistoryLimit,
		MaxTokens:    cfg.MaxTokens,
		Temperature:  cfg.Temperature,
		TopP:         cfg.TopP,
	})

	sess, err := resolveSession(cmd.Context(), eng)
	if err != nil {
		return err
	}

	ui := NewChatUI(eng, sess, tts, cfg)
	p := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running program: %w", err)
	}
	return nil
}

func resolveSession(ctx context.Context, eng *engine.Engine) (*engine.Session, error) {
	if sessionFlag == "" {
		return engine.NewSession(), nil
	}
	id, err := uuid.Parse(sessionFlag)
	if err != nil {
		return nil, fmt.Errorf("invalid session ID: %w", err)
	}
	return eng.LoadSession(ctx, id)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
