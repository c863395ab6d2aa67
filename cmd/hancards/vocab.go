package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/hancards/internal/config"
	"github.com/verte-zerg/hancards/internal/stats"
	"github.com/verte-zerg/hancards/internal/vocab"
)

func newVocabCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vocab",
		Short: "Manage the vocabulary table",
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List vocabulary words",
		Args:  cobra.NoArgs,
		RunE:  runVocabListCmd,
	}
	listCmd.Flags().IntVar(&vocabLevel, "level", 0, "only words at or below this level (0 = all)")

	importCmd := &cobra.Command{
		Use:   "import FILE",
		Short: "Import words from an .xlsx or .csv file",
		Args:  cobra.ExactArgs(1),
		RunE:  runVocabImportCmd,
	}
	importCmd.Flags().StringVar(&vocabSheet, "sheet", "", "workbook sheet (default: first sheet)")
	importCmd.Flags().BoolVar(&vocabForce, "force", false, "overwrite an existing vocabulary file")

	cmd.AddCommand(listCmd, importCmd)
	return cmd
}

func runVocabListCmd(cmd *cobra.Command, _ []string) error {
	if vocabLevel < 0 {
		return fmt.Errorf("--level must be >= 0")
	}
	entries, err := loadVocab()
	if err != nil {
		return err
	}
	if vocabLevel > 0 {
		entries = vocab.FilterByLevel(entries, vocabLevel)
	}
	if err := stats.RenderVocab(cmd.OutOrStdout(), entries); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logErrf("%d words, levels %v\n", len(entries), vocab.Levels(entries))
	return nil
}

func runVocabImportCmd(_ *cobra.Command, args []string) error {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	logger := stderrLogger(fileCfg)

	outPath := config.DefaultVocabPath()
	if !vocabForce {
		if _, err := os.Stat(outPath); err == nil {
			return fmt.Errorf("vocabulary already exists: %s (use --force to overwrite)", outPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat vocabulary: %w", err)
		}
	}

	opts := vocab.DefaultImportOptions()
	opts.Sheet = vocabSheet
	entries, result, err := vocab.Import(args[0], opts)
	for _, rowErr := range result.Errors {
		logger.Warn("skipped row", "file", args[0], "reason", rowErr)
	}
	if err != nil {
		return fmt.Errorf("failed to import %s: %w", args[0], err)
	}
	if err := vocab.WriteFile(outPath, entries); err != nil {
		return fmt.Errorf("failed to write %s: %w", outPath, err)
	}
	logErrf("Imported %d of %d rows (%d skipped)\n", result.Imported, result.Processed, result.Skipped)
	logErrf("Wrote %s\n", outPath)
	return nil
}
