/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package benchmark

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"

	"chainguard.dev/agentbench/agents/evals/report"
)

// OverallFile is the CSV file every evaluation appends a row to.
const OverallFile = "data_overall.csv"

var overallHeader = []string{"model", "category", "accuracy", "correct", "total", "cost", "mean_latency", "p95_latency"}

// ScorePath is where the score of model on category is stored.
func ScorePath(scoreDir, model string, c Category) string {
	return filepath.Join(scoreDir, DirName(model), string(c)+"_score.json")
}

// WriteScore writes the summary line followed by one line per failed entry.
func WriteScore(scoreDir string, s Score) error {
	path := ScorePath(scoreDir, s.Model, s.Category)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	if err := enc.Encode(s); err != nil {
		return err
	}
	for _, e := range s.Entries {
		if e.Valid {
			continue
		}
		if err := enc.Encode(e); err != nil {
			return err
		}
	}
	return f.Close()
}

// AppendOverall appends the score to <scoreDir>/data_overall.csv, writing
// the header when the file is new.
func AppendOverall(scoreDir string, s Score) error {
	if err := os.MkdirAll(scoreDir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(scoreDir, OverallFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return err
	}

	w := csv.NewWriter(f)
	if info.Size() == 0 {
		if err := w.Write(overallHeader); err != nil {
			return err
		}
	}
	if err := w.Write([]string{
		s.Model,
		string(s.Category),
		strconv.FormatFloat(s.Accuracy, 'f', 4, 64),
		strconv.Itoa(s.Correct),
		strconv.Itoa(s.Total),
		strconv.FormatFloat(s.Cost, 'f', 6, 64),
		strconv.FormatFloat(s.MeanLatency, 'f', 3, 64),
		strconv.FormatFloat(s.P95Latency, 'f', 3, 64),
	}); err != nil {
		return err
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// Summary renders scores as a markdown table.
func Summary(w io.Writer, scores []Score) error {
	table := report.NewMarkdownTable([]string{"Model", "Category", "Accuracy", "Correct", "Cost ($)", "Mean latency (s)", "P95 latency (s)"}, w)
	for _, s := range scores {
		if err := table.Append([]string{
			s.Model,
			string(s.Category),
			fmt.Sprintf("%.2f%%", s.Accuracy*100),
			fmt.Sprintf("%d/%d", s.Correct, s.Total),
			fmt.Sprintf("%.4f", s.Cost),
			fmt.Sprintf("%.2f", s.MeanLatency),
			fmt.Sprintf("%.2f", s.P95Latency),
		}); err != nil {
			return err
		}
	}
	return table.Render()
}
