package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"alfredoptarigan/skill-analyzer/internal/models"
	"alfredoptarigan/skill-analyzer/internal/services"
	"alfredoptarigan/skill-analyzer/internal/skills"
)

func (c *cli) newExtractCmd() *cobra.Command {
	var documentID string

	cmd := &cobra.Command{
		Use:   "extract FILE.pdf",
		Short: "Extract skills from a PDF resume and store them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, _, _, done, err := c.components(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			extraction, err := extractFile(cmd, components.Extraction, args[0], documentID)
			if err != nil {
				return err
			}

			return printJSON(cmd.OutOrStdout(), models.ExtractResponse{
				Success:       true,
				DocumentID:    extraction.DocumentID,
				MatchedSkills: extraction.MatchedSkills,
			})
		},
	}

	cmd.Flags().StringVar(&documentID, "id", "", "document id (default is the file name)")
	return cmd
}

func (c *cli) newIngestCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest DIR",
		Short: "Extract skills from every PDF under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, cfg, log, done, err := c.components(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			results, err := services.IngestDir(cmd.Context(), components.Extraction, args[0], cfg.Ingest.Concurrency, log)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			failed := 0
			for _, r := range results {
				if r.Err != nil {
					failed++
					fmt.Fprintf(out, "FAIL  %s: %v\n", r.Job.Path, r.Err)
					continue
				}
				fmt.Fprintf(out, "OK    %s: %s\n", r.Job.Path, strings.Join(r.Extraction.MatchedSkills, ", "))
			}
			fmt.Fprintf(out, "%d files, %d succeeded, %d failed\n", len(results), len(results)-failed, failed)

			if failed > 0 {
				return fmt.Errorf("%d of %d files failed", failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntP("workers", "w", 0, "number of concurrent workers (default from INGEST_CONCURRENCY)")
	_ = c.v.BindPFlag("workers", cmd.Flags().Lookup("workers"))
	return cmd
}

func (c *cli) newAnalyzeCmd() *cobra.Command {
	var pdfPath string

	cmd := &cobra.Command{
		Use:   "analyze DOCUMENT_ID POSITION",
		Short: "Analyze a stored extraction against a job position",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			components, _, _, done, err := c.components(cmd.Context())
			if err != nil {
				return err
			}
			defer done()

			analyzer, err := components.Analyzer()
			if err != nil {
				return err
			}

			if pdfPath != "" {
				if _, err := extractFile(cmd, components.Extraction, pdfPath, args[0]); err != nil {
					return err
				}
			}

			analysis, err := analyzer.Analyze(cmd.Context(), args[0], args[1])
			if err != nil {
				if f, ok := services.AsUpstreamFailure(err); ok && f.Text != "" {
					fmt.Fprintf(cmd.ErrOrStderr(), "upstream payload: %s\n", f.Text)
				}
				return err
			}

			return printJSON(cmd.OutOrStdout(), models.AnalysisResponse{Success: true, Result: analysis})
		},
	}

	cmd.Flags().StringVar(&pdfPath, "pdf", "", "extract this PDF under DOCUMENT_ID before analyzing")
	return cmd
}

func (c *cli) newLexiconCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lexicon",
		Short: "List the skill catalog by category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			lexicon, err := skills.Load(c.config().Lexicon.Path)
			if err != nil {
				return err
			}

			byCategory := make(map[string][]string)
			for _, term := range lexicon.Terms() {
				byCategory[term.Category] = append(byCategory[term.Category], term.Name)
			}

			out := cmd.OutOrStdout()
			for _, category := range lexicon.Categories() {
				fmt.Fprintf(out, "%s (%d): %s\n", category, len(byCategory[category]), strings.Join(byCategory[category], ", "))
			}
			return nil
		},
	}
}

func extractFile(cmd *cobra.Command, svc services.ExtractionService, path, documentID string) (*models.Extraction, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	return svc.Extract(cmd.Context(), services.ExtractInput{
		DocumentID: documentID,
		Filename:   filepath.Base(path),
		Data:       data,
	})
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
