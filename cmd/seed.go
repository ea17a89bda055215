package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/skillgate/screener/internal/jobs"
	"github.com/skillgate/screener/internal/logger"
	"github.com/skillgate/screener/internal/secrets"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store a job posting in the database and print its id",
	Run: func(cmd *cobra.Command, _ []string) {
		seed(cmd)
	},
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().String("id", "", "posting id. Default is a new UUID.")
	seedCmd.Flags().String("title", "", "posting title")
	seedCmd.Flags().String("description", "", "posting description text")
	seedCmd.Flags().String("description-file", "", "file with the posting description. Takes precedence over --description.")
}

func seed(cmd *cobra.Command) {
	ctx := context.Background()

	lg, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		lg.Fatal("getting a config", zap.Error(err))
	}

	id, _ := cmd.Flags().GetString("id")
	title, _ := cmd.Flags().GetString("title")
	descValue, _ := cmd.Flags().GetString("description")
	descFile, _ := cmd.Flags().GetString("description-file")

	description, err := secrets.Load(secrets.Source{
		Name:  "job description",
		Value: descValue,
		File:  descFile,
	})
	if err != nil {
		lg.Fatal("reading the job description", zap.Error(err))
	}

	url, err := databaseURL(config)
	if err != nil {
		lg.Fatal("resolving the database url", zap.Error(err))
	}

	db, err := jobs.Connect(ctx, url)
	if err != nil {
		lg.Fatal("connecting to the database", zap.Error(err))
	}
	defer db.Close()

	stored, err := db.Upsert(ctx, id, title, description)
	if err != nil {
		lg.Fatal("storing the job posting", zap.Error(err))
	}

	lg.Info("job posting stored", zap.String("job_id", stored))
	fmt.Println(stored)
}
