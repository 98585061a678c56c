package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	realtime "github.com/bt-bridge/openai-realtime-cli"
	"github.com/bt-bridge/openai-realtime-cli/agents"
	"github.com/bt-bridge/openai-realtime-cli/audio"
	"github.com/bt-bridge/openai-realtime-cli/shared"
	"github.com/bt-bridge/openai-realtime-cli/tools"
	"github.com/bt-bridge/openai-realtime-cli/transcript"
	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Log file configuration
const (
	logFileMaxSize    int  = 10 // MB
	logFileMaxBackups int  = 2
	logFileMaxAge     int  = 3 // days
	logFileCompress   bool = false
)

const printerIndentString = "│  "

var (
	flagModel        string
	flagVoice        string
	flagInstructions string
	flagBaseURL      string
	flagConfigFile   string
	flagTranscriptDB string
	flagLogFile      string
	flagMintTTL      int
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "realtime-cli",
		Short: "Voice conversations with the OpenAI realtime API from the terminal",
		Long: "realtime-cli talks to the OpenAI realtime API over a WebSocket: " +
			"push-to-talk or hands-free voice conversations, streamed audio playback " +
			"and function calling, all from the terminal.",
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&flagModel, "model", realtime.DefaultModel, "Realtime model to use")
	rootCmd.PersistentFlags().StringVar(&flagVoice, "voice", realtime.DefaultVoice, "Assistant voice")
	rootCmd.PersistentFlags().StringVar(&flagInstructions, "instructions", realtime.DefaultInstructions, "System instructions")
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "Override the realtime endpoint")
	rootCmd.PersistentFlags().StringVar(&flagConfigFile, "config", "", "YAML session config file (overrides voice/instructions flags)")
	rootCmd.PersistentFlags().StringVar(&flagTranscriptDB, "transcript-db", "", "SQLite file to record the conversation transcript")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "realtime-cli.log", "Log file path")

	rootCmd.AddCommand(manualCmd())
	rootCmd.AddCommand(streamCmd())
	rootCmd.AddCommand(devicesCmd())
	rootCmd.AddCommand(authCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func manualCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "manual",
		Short: "Push-to-talk conversation",
		Long:  "Start a conversation where you control turn boundaries: press r or space to record, enter to send typed text.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), realtime.TurnDetectionManual)
		},
	}
}

func streamCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stream",
		Short: "Hands-free conversation with server VAD",
		Long:  "Start a conversation where the microphone streams continuously and the API detects turns. Speaking over the assistant interrupts it.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSession(cmd.Context(), realtime.TurnDetectionServerVAD)
		},
	}
}

func runSession(ctx context.Context, mode realtime.TurnDetectionMode) error {
	logger := shared.NewFileLogger(
		flagLogFile, logFileMaxSize, logFileMaxBackups, logFileMaxAge, logFileCompress,
	).With(
		zap.String("component", "realtime-cli"),
		zap.String("version", shared.Version),
	)

	apiKey, err := shared.APIKey()
	if err != nil {
		return fmt.Errorf("resolving API key (set %s or run `realtime-cli auth set`): %w", shared.EnvKeyAPIKey, err)
	}

	cfg, err := loadSessionConfig(mode)
	if err != nil {
		return err
	}

	var store *transcript.Store
	if flagTranscriptDB != "" {
		store, err = transcript.Open(ctx, flagTranscriptDB)
		if err != nil {
			return err
		}
	}

	registry := tools.NewRegistry()
	clock, err := clockTool()
	if err != nil {
		return err
	}
	if err := registry.Register(clock); err != nil {
		return err
	}

	printer, err := shared.NewPrinter(printerIndentString, shared.NewWriteCloser(os.Stdout))
	if err != nil {
		return fmt.Errorf("creating printer: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	agent := new(agents.CLIAgent)
	done, err := agent.Spawn(ctx, logger, apiKey, flagModel, mode, cfg, registry, store, printer, baseURLArgs()...)
	if err != nil {
		return fmt.Errorf("spawning agent: %w", err)
	}
	defer func() {
		if err := agent.Close(); err != nil {
			logger.Error("closing agent", err)
		}
	}()

	runErr := make(chan error, 1)
	go func() {
		if mode == realtime.TurnDetectionManual {
			runErr <- agent.RunManual(ctx)
		} else {
			runErr <- agent.RunStreaming(ctx)
		}
	}()

	sig := make(chan os.Signal, 1)
	defer close(sig)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-runErr:
		if err != nil && err != context.Canceled {
			return err
		}
		return nil
	case <-done:
		logger.Info("session ended")
		return nil
	case <-sig:
		logger.Info("shutting down...")
		return nil
	}
}

func baseURLArgs() []string {
	if flagBaseURL == "" {
		return nil
	}
	return []string{flagBaseURL}
}

// loadSessionConfig builds the session config from flags, or from the YAML
// file when --config is given.
func loadSessionConfig(mode realtime.TurnDetectionMode) (*realtime.SessionConfig, error) {
	if flagConfigFile == "" {
		return realtime.DefaultSessionConfig(mode, flagInstructions, flagVoice), nil
	}
	data, err := os.ReadFile(flagConfigFile)
	if err != nil {
		return nil, fmt.Errorf("reading session config file: %w", err)
	}
	cfg := realtime.DefaultSessionConfig(mode, flagInstructions, flagVoice)
	if err := yaml.UnmarshalWithOptions(data, cfg, yaml.UseJSONUnmarshaler()); err != nil {
		return nil, fmt.Errorf("parsing session config file: %w", err)
	}
	return cfg, nil
}

func clockTool() (tools.Tool, error) {
	return tools.NewFuncTool(
		"get_time",
		"Get the current local date and time",
		&tools.JSONSchema{Type: "object"},
		func(_ context.Context, _ map[string]any) (string, error) {
			return time.Now().Format(time.RFC1123), nil
		},
	)
}

func devicesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			devices, err := audio.ListDevices()
			if err != nil {
				return err
			}
			for _, d := range devices {
				fmt.Println(d)
			}
			return nil
		},
	}
}

func authCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Manage the stored API key",
	}
	cmd.AddCommand(authSetCmd())
	cmd.AddCommand(authClearCmd())
	cmd.AddCommand(authMintCmd())
	return cmd
}

func authSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <api-key>",
		Short: "Store an API key in the OS keyring",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := shared.StoreAPIKey(args[0]); err != nil {
				return err
			}
			fmt.Println("API key stored.")
			return nil
		},
	}
}

func authClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Remove the API key from the OS keyring",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := shared.ClearAPIKey(); err != nil {
				return err
			}
			fmt.Println("API key cleared.")
			return nil
		},
	}
}

func authMintCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mint",
		Short: "Mint a short-lived client secret",
		Long:  "Exchange the stored API key for an ephemeral client secret that browser or mobile clients can use directly.",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := shared.NewFileLogger(
				flagLogFile, logFileMaxSize, logFileMaxBackups, logFileMaxAge, logFileCompress,
			).With(zap.String("component", "realtime-cli"))
			apiKey, err := shared.APIKey()
			if err != nil {
				return fmt.Errorf("resolving API key: %w", err)
			}
			secret, err := realtime.CreateClientSecret(
				cmd.Context(), logger, apiKey, realtime.DefaultRestBaseURL, flagMintTTL,
			)
			if err != nil {
				return err
			}
			fmt.Println(secret.Value)
			if secret.ExpiresAt > 0 {
				fmt.Fprintf(os.Stderr, "expires at %s\n", time.Unix(secret.ExpiresAt, 0).Format(time.RFC3339))
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&flagMintTTL, "ttl", 0, "Secret lifetime in seconds (0 for the API default)")
	return cmd
}
