package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"persona-agent/internal/config"
	"persona-agent/internal/core/domain"
	"persona-agent/internal/logging"
)

// defaultProfiles are processed when no URL is given.
var defaultProfiles = []string{
	"https://www.reddit.com/user/kojied/",
	"https://www.reddit.com/user/Hungry-Move-6603/",
	"https://www.reddit.com/user/mrinank67/",
}

var (
	cfgFile   string
	inputFile string
	verbose   bool
	console   bool

	v        = viper.New()
	logger   *zap.Logger
	settings *config.Settings
)

var rootCmd = &cobra.Command{
	Use:   "persona-agent [profile-url...]",
	Short: "Build cited user personas from Reddit activity",
	Long: `persona-agent fetches the newest posts and comments of each Reddit profile,
asks Gemini for a persona, and writes one <username>_persona.txt per user.
Every persona line cites the post or comment it was inferred from.

Without arguments the built-in sample profiles are processed.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional
		_ = godotenv.Load()

		var err error
		logger, err = logging.New(verbose, console)
		if err != nil {
			return err
		}

		settings, err = config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		config.BindEnv(v)
		settings.ApplyOverrides(v)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runBatch,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $XDG_CONFIG_HOME/persona-agent/config.toml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&console, "console", false, "human-readable log output")
	rootCmd.PersistentFlags().String("source", "", "activity source: reddit or fixture")
	rootCmd.PersistentFlags().String("fixtures-dir", "", "directory of <username>.json fixtures")
	rootCmd.PersistentFlags().Int("limit", 0, "max posts and max comments fetched per user")

	rootCmd.Flags().StringVarP(&inputFile, "input", "i", "", "file with one profile URL per line")
	rootCmd.Flags().StringP("output-dir", "o", "", "directory persona files are written to")

	_ = v.BindPFlag("fetch.source", rootCmd.PersistentFlags().Lookup("source"))
	_ = v.BindPFlag("fetch.fixtures_dir", rootCmd.PersistentFlags().Lookup("fixtures-dir"))
	_ = v.BindPFlag("fetch.limit", rootCmd.PersistentFlags().Lookup("limit"))
	_ = v.BindPFlag("output.dir", rootCmd.Flags().Lookup("output-dir"))

	rootCmd.AddCommand(promptCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	if err := settings.Validate(); err != nil {
		logger.Error("Invalid configuration", zap.Error(err))
		return err
	}

	inputs, err := collectInputs(args, inputFile)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := wire(ctx, settings, logger)
	if err != nil {
		logger.Error("Startup failed", zap.Error(err))
		return err
	}
	defer app.Close()

	logger.Info("Batch started",
		zap.String("run_id", app.runID),
		zap.Int("profiles", len(inputs)),
		zap.String("source", settings.Fetch.Source),
		zap.String("output_dir", settings.Output.Dir))

	outcomes := app.runner.Run(ctx, inputs)
	logSummary(logger, outcomes)
	return nil
}

// collectInputs merges positional URLs with the --input file.
func collectInputs(args []string, path string) ([]string, error) {
	inputs := append([]string(nil), args...)
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open input file: %w", err)
		}
		defer f.Close()
		lines, err := readInputs(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		inputs = append(inputs, lines...)
	}
	if len(inputs) == 0 {
		inputs = append(inputs, defaultProfiles...)
	}
	return inputs, nil
}

// readInputs returns non-blank lines, skipping # comments.
func readInputs(r io.Reader) ([]string, error) {
	var lines []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	return lines, scanner.Err()
}

func logSummary(logger *zap.Logger, outcomes []domain.Outcome) {
	counts := make(map[domain.OutcomeStatus]int)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	logger.Info("Batch finished",
		zap.Int("total", len(outcomes)),
		zap.Int(string(domain.OutcomeSaved), counts[domain.OutcomeSaved]),
		zap.Int(string(domain.OutcomeEmpty), counts[domain.OutcomeEmpty]),
		zap.Int(string(domain.OutcomeDegraded), counts[domain.OutcomeDegraded]),
		zap.Int(string(domain.OutcomeSkipped), counts[domain.OutcomeSkipped]),
		zap.Int(string(domain.OutcomeSinkFailed), counts[domain.OutcomeSinkFailed]))
}
