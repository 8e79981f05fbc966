/*
Copyright 2026 Chainguard, Inc.
SPDX-License-Identifier: Apache-2.0
*/

package benchmark

import (
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/chainguard-dev/clog"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"golang.org/x/sync/errgroup"
)

// ResultPath is where the results of model on category are stored.
func ResultPath(resultDir, model string, c Category) string {
	return filepath.Join(resultDir, DirName(model), string(c)+"_result.json")
}

// Generator sends test entries to a model and stores the results.
type Generator struct {
	Handler   Handler
	Model     string
	ResultDir string
	// Threads bounds the concurrent requests; values below one mean one.
	Threads int
	// Overwrite discards existing results instead of resuming.
	Overwrite bool
	// Progress receives a progress bar; nil hides it.
	Progress io.Writer
}

// GenerateStats summarizes one Generate call.
type GenerateStats struct {
	RunID     string
	Total     int
	Skipped   int
	Generated int
	Failed    int
}

// Generate runs every entry of c that has no successful result yet. Each
// result is appended as soon as it arrives, so an interrupted run resumes
// where it stopped. The file is rewritten sorted by id at the end.
func (g *Generator) Generate(ctx context.Context, c Category, entries []Entry) (GenerateStats, error) {
	stats := GenerateStats{RunID: uuid.NewString(), Total: len(entries)}
	log := clog.FromContext(ctx).With("model", g.Model, "category", c, "run_id", stats.RunID)
	path := ResultPath(g.ResultDir, g.Model, c)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return stats, err
	}

	done := map[string]bool{}
	if g.Overwrite {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return stats, err
		}
	} else {
		existing, err := readLinesIfExists[Result](path)
		if err != nil {
			return stats, err
		}
		for _, r := range existing {
			done[r.ID] = r.Error == ""
		}
	}

	var pending []Entry
	for _, e := range entries {
		if done[e.ID] {
			stats.Skipped++
			continue
		}
		pending = append(pending, e)
	}
	log.With("pending", len(pending), "skipped", stats.Skipped).Info("Generating results")
	if len(pending) == 0 {
		return stats, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return stats, err
	}
	defer f.Close()

	w := g.Progress
	if w == nil {
		w = io.Discard
	}
	bar := progressbar.NewOptions(len(pending),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetDescription(fmt.Sprintf("%s %s", g.Model, c)),
		progressbar.OptionSetWidth(40),
		progressbar.OptionShowCount(),
		progressbar.OptionSetRenderBlankState(true),
	)
	defer bar.Close()

	var mu sync.Mutex
	enc := json.NewEncoder(f)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(1, g.Threads))
	for _, e := range pending {
		eg.Go(func() error {
			res, err := g.Handler.Infer(ctx, e)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				log.With("id", e.ID, "error", err).Warn("Inference failed")
				res.ID, res.Error = e.ID, err.Error()
			}
			res.RunID = stats.RunID

			mu.Lock()
			defer mu.Unlock()
			if err := enc.Encode(res); err != nil {
				return fmt.Errorf("writing result %s: %w", e.ID, err)
			}
			if res.Error != "" {
				stats.Failed++
			}
			stats.Generated++
			_ = bar.Add(1)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return stats, err
	}
	if err := f.Close(); err != nil {
		return stats, err
	}
	if err := compact(path); err != nil {
		return stats, fmt.Errorf("compacting %s: %w", path, err)
	}
	log.With("generated", stats.Generated, "failed", stats.Failed).Info("Generated results")
	return stats, nil
}

// LoadResults reads a result file keyed by id. When an id appears more
// than once the last line wins.
func LoadResults(path string) (map[string]Result, error) {
	results, err := readLines[Result](path)
	if err != nil {
		return nil, err
	}
	out := make(map[string]Result, len(results))
	for _, r := range results {
		out[r.ID] = r
	}
	return out, nil
}

// compact rewrites a result file with one line per id, ordered by id.
func compact(path string) error {
	byID, err := LoadResults(path)
	if err != nil {
		return err
	}
	results := make([]Result, 0, len(byID))
	for _, r := range byID {
		results = append(results, r)
	}
	slices.SortFunc(results, func(a, b Result) int { return compareIDs(a.ID, b.ID) })

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())
	enc := json.NewEncoder(tmp)
	for _, r := range results {
		if err := enc.Encode(r); err != nil {
			tmp.Close()
			return err
		}
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// compareIDs orders ids like "simple_2" before "simple_10".
func compareIDs(a, b string) int {
	ap, an := splitID(a)
	bp, bn := splitID(b)
	if c := strings.Compare(ap, bp); c != 0 {
		return c
	}
	return cmp.Compare(an, bn)
}

func splitID(id string) (string, int) {
	i := strings.LastIndexByte(id, '_')
	if i < 0 {
		return id, -1
	}
	n, err := strconv.Atoi(id[i+1:])
	if err != nil {
		return id, -1
	}
	return id[:i], n
}
