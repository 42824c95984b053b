package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"

	"github.com/spigell/hh-matchmaker/internal/engine"
	"github.com/spigell/hh-matchmaker/internal/logger"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptShowReport   = "Show report"
	PromptPrintJSON    = "Print report as JSON"
	PromptReportToFile = "Dump report to file"
	PromptExit         = "Exit"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptShowReport, PromptPrintJSON, PromptReportToFile, PromptExit},
}

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score a candidate document against a requirement document",
	Run: func(cmd *cobra.Command, _ []string) {
		match(cmd)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().StringP("candidate", "c", "", "candidate document (json, yaml or toml)")
	matchCmd.Flags().StringP("requirement", "r", "", "requirement document (json, yaml or toml)")
	matchCmd.Flags().StringP("output", "o", outputText, "report format: text or json")
	matchCmd.Flags().IntP("precision", "p", 2, "decimal places in the report")
	matchCmd.Flags().BoolP("interactive", "i", false, "choose what to do with the report from a menu")
}

// match is the main command for the cli.
func match(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the hh-matchmaker", zap.String("version", version))

	candidate, err := readDocument(flagString(cmd, "candidate"))
	if err != nil {
		logger.Fatal("reading candidate document", zap.Error(err))
	}
	requirement, err := readDocument(flagString(cmd, "requirement"))
	if err != nil {
		logger.Fatal("reading requirement document", zap.Error(err))
	}

	models, err := newModels(ctx, config.Embedding, logger)
	if err != nil {
		logger.Fatal("preparing embedding models", zap.Error(err))
	}

	e := engine.New(models.Models,
		engine.WithLogger(logger),
		engine.WithLimits(config.Limits),
		engine.WithMaxLogLength(config.Embedding.MaxLogLength),
	)

	report, err := e.Match(ctx, candidate, requirement)
	if err != nil {
		logger.Fatal("matching", zap.Error(err), zap.String("hint", "pass --candidate and --requirement"))
	}
	models.logStats(logger)

	precision, _ := cmd.Flags().GetInt("precision")
	report = report.Rounded(precision)

	interactive, _ := cmd.Flags().GetBool("interactive")
	if !interactive {
		if err := writeReport(cmd.OutOrStdout(), report, flagString(cmd, "output")); err != nil {
			logger.Fatal("writing report", zap.Error(err))
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, cmd.OutOrStdout(), logger, report); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, w io.Writer, logger *zap.Logger, report engine.Report) error {
	switch action {
	case PromptShowReport:
		return writeReport(w, report, outputText)
	case PromptPrintJSON:
		return writeReport(w, report, outputJSON)
	case PromptReportToFile:
		filename, err := dumpReportToTmpFile(report)
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func flagString(cmd *cobra.Command, name string) string {
	value, _ := cmd.Flags().GetString(name)
	return strings.TrimSpace(value)
}

// readDocument loads a category document with a dedicated viper instance so
// the file format follows its extension. An empty path means no document.
func readDocument(path string) (engine.Document, error) {
	if path == "" {
		return nil, nil
	}

	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	doc, err := engine.DecodeDocument(v.AllSettings())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if doc == nil {
		doc = engine.Document{}
	}
	return doc, nil
}
