package cmd

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/skillgate/screener/internal/ai/gemini"
	"github.com/skillgate/screener/internal/interview"
	"github.com/skillgate/screener/internal/jobs"
	"github.com/skillgate/screener/internal/logger"
	"github.com/skillgate/screener/internal/questionbank"
	"github.com/skillgate/screener/internal/secrets"
	"github.com/skillgate/screener/internal/store"

	"github.com/google/uuid"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const inlineJobID = "inline"

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an interactive screening session in the terminal",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("questions", "q", "", "question bank file. Default is the built-in bank.")
	runCmd.Flags().String("session", "", "session id. Default is a random UUID.")

	viper.BindPFlag("questions-file", runCmd.Flags().Lookup("questions"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	lg.Info("starting the screener", zap.String("version", version))

	if config == nil {
		lg.Fatal("config is required")
	}

	if config.AI == nil || config.AI.Gemini == nil {
		lg.Fatal("gemini configuration is required under the ai section")
	}

	bank, err := questionbank.Load(viper.GetString("questions-file"))
	if err != nil {
		lg.Fatal("loading the question bank", zap.Error(err))
	}

	lg.Info("question bank loaded", zap.Strings("topics", bank.Topics()))

	extractor, judge, err := newGeminiAdapters(ctx, config.AI, bank.Topics(), lg)
	if err != nil {
		lg.Fatal(
			"building gemini adapters",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the 'ai.gemini.api-key-file' key in the configuration file"),
		)
	}

	source, jobID, closeSource, err := newJobSource(ctx, config)
	if err != nil {
		lg.Fatal("resolving the job posting source", zap.Error(err))
	}
	defer closeSource()

	engine := interview.NewEngine(
		store.NewMemory(),
		interview.NewOrchestrator(source, extractor, lg),
		interview.NewEvaluator(bank, judge, lg),
		lg,
	)

	sessionID, _ := cmd.Flags().GetString("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	if err := engine.StartSession(ctx, sessionID, jobID); err != nil {
		lg.Fatal("starting the session", zap.Error(err))
	}

	lg.Info("session started", zap.String("session_id", sessionID), zap.String("job_id", jobID))

	fmt.Println("Type 'start' to begin the interview. Type 'bye' to exit at any time.")

	if err := interviewLoop(ctx, engine, sessionID, lg); err != nil {
		lg.Fatal("exiting", zap.Error(err))
	}

	printFinalStatus(ctx, engine, sessionID, lg)
}

// interviewLoop runs one turn per candidate input until the session is done.
func interviewLoop(ctx context.Context, engine *interview.Engine, sessionID string, lg *zap.Logger) error {
	prompt := promptui.Prompt{Label: "You"}

	for {
		input, err := prompt.Run()
		if err != nil {
			return fmt.Errorf("reading candidate input: %w", err)
		}

		reply, done, err := engine.Advance(ctx, sessionID, input)
		if err != nil {
			if errors.Is(err, interview.ErrJudgeUnavailable) {
				// The attempt was not recorded; the same question stands.
				lg.Warn("answer could not be judged, asking again", zap.Error(err))
				fmt.Println("\nInterviewer: Sorry, I could not process that. Could you give your answer once more?")
				continue
			}
			return err
		}

		fmt.Printf("\nInterviewer: %s\n\n", reply)

		if done {
			return nil
		}
	}
}

func printFinalStatus(ctx context.Context, engine *interview.Engine, sessionID string, lg *zap.Logger) {
	session, err := engine.Session(ctx, sessionID)
	if err != nil {
		lg.Warn("reading final session state", zap.Error(err))
		return
	}

	fmt.Println("FINAL EVALUATION STATUS")
	for _, ev := range session.Evaluations {
		fmt.Printf("  %s: %s\n", ev.Skill, strings.ToUpper(string(ev.Verdict)))
		lg.Info("final verdict",
			zap.String("session_id", sessionID),
			zap.String("skill", ev.Skill),
			zap.String("verdict", string(ev.Verdict)),
		)
	}
}

func newGeminiAdapters(ctx context.Context, cfg *AIConfig, vocabulary []string, lg *zap.Logger) (*gemini.Extractor, *gemini.Judge, error) {
	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKeyFile := strings.TrimSpace(cfg.Gemini.APIKeyFile)
	if apiKeyFile == "" {
		apiKeyFile = strings.TrimSpace(viper.GetString("gemini-api-key-file"))
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: apiKeyFile,
	})
	if err != nil {
		return nil, nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model, lg)
	if err != nil {
		return nil, nil, err
	}

	// Model() reports the effective model, including the default applied when
	// the config leaves it empty.
	aiLogger := logger.WithCommonFields(lg, "gemini", generator.Model())

	extractor := gemini.NewExtractor(generator, vocabulary, aiLogger, cfg.Gemini.MaxLogLength)
	judge := gemini.NewJudge(generator, aiLogger, cfg.Gemini.MaxLogLength)

	return extractor, judge, nil
}

// newJobSource picks the posting source: an inline description from the
// config, or the job_postings table when a database is configured.
func newJobSource(ctx context.Context, config *Config) (interview.JobSource, string, func(), error) {
	noop := func() {}

	if config.Job == nil {
		return nil, "", noop, fmt.Errorf("job section is required in the configuration")
	}

	if strings.TrimSpace(config.Job.Description) != "" {
		return jobs.Static{inlineJobID: config.Job.Description}, inlineJobID, noop, nil
	}

	if strings.TrimSpace(config.Job.ID) == "" {
		return nil, "", noop, fmt.Errorf("either job.description or job.id is required")
	}

	url, err := databaseURL(config)
	if err != nil {
		return nil, "", noop, err
	}

	db, err := jobs.Connect(ctx, url)
	if err != nil {
		return nil, "", noop, err
	}

	return db, config.Job.ID, db.Close, nil
}

func databaseURL(config *Config) (string, error) {
	urlFile := ""
	if config != nil && config.Database != nil {
		urlFile = strings.TrimSpace(config.Database.URLFile)
	}
	if urlFile == "" {
		urlFile = strings.TrimSpace(viper.GetString("database-url-file"))
	}

	return secrets.Load(secrets.Source{
		Name: "database url",
		File: urlFile,
	})
}
