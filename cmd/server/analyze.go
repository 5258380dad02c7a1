package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"resume-matcher/internal/app"
	"resume-matcher/internal/domain"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

var (
	jobFile    string
	skills     string
	chartOut   string
	analyzeCmd = &cobra.Command{
		Use:   "analyze <resume.pdf|resume.docx>",
		Short: "Score a local resume against a job description without storing anything",
		Args:  cobra.ExactArgs(1),
		RunE:  runAnalyze,
	}
)

func init() {
	analyzeCmd.Flags().StringVar(&jobFile, "job", "", "file holding the job description (required)")
	analyzeCmd.Flags().StringVar(&skills, "skills", "", "required skills appended to the job description")
	analyzeCmd.Flags().StringVar(&chartOut, "chart", "", "write the explanation chart PNG to this file")
	_ = analyzeCmd.MarkFlagRequired("job")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	resume, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read resume: %w", err)
	}
	description, err := os.ReadFile(jobFile)
	if err != nil {
		return fmt.Errorf("read job description: %w", err)
	}

	client, err := app.OpenRedis(cmd.Context(), cfg.Redis)
	if err != nil {
		return err
	}
	var rdb redis.UniversalClient
	if client != nil {
		defer client.Close()
		rdb = client
	}
	cfg.Explain.Enabled = cfg.Explain.Enabled && chartOut != ""

	an, err := app.NewAnalyzer(cmd.Context(), cfg, rdb, log)
	if err != nil {
		return err
	}
	job := &domain.Job{Title: filepath.Base(jobFile), Description: string(description), RequiredSkills: skills}
	res := an.Analyze(cmd.Context(), filepath.Base(args[0]), resume, job)

	if chartOut != "" && res.ChartBase64 != "" {
		if err := writeChart(chartOut, res.ChartBase64); err != nil {
			return err
		}
	}

	out := struct {
		Score    int      `json:"match_score"`
		Matched  []string `json:"matched_skills"`
		Missing  []string `json:"missing_skills"`
		Feedback string   `json:"ai_feedback"`
		Degraded bool     `json:"degraded"`
		Chart    bool     `json:"chart_written"`
	}{res.Score, res.Matched, res.Missing, res.Feedback, res.Degraded, chartOut != "" && res.ChartBase64 != ""}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeChart(path, b64 string) error {
	png, err := base64.StdEncoding.DecodeString(b64)
	if err != nil {
		return fmt.Errorf("decode chart: %w", err)
	}
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
