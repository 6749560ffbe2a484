package core

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/claritylab/clarity/internal/contract"
	"github.com/claritylab/clarity/internal/outwriter"
	"github.com/claritylab/clarity/schema"
)

// ExecuteSample draws a fixed-size uniform sample from the filtered
// commit list. The draw is seeded, so repeated runs over the same
// input produce an identical sampled file.
func ExecuteSample(_ context.Context, cfg *contract.Config) error {
	start := time.Now()

	commits, err := ReadFilteredCommitsCSV(cfg.FilteredCSVPath)
	if err != nil {
		return err
	}

	sampled := sampleCommits(commits, cfg.SampleSize, cfg.SampleSeed)

	if err := WriteFilteredCommitsCSV(sampled, cfg.SampledCSVPath); err != nil {
		return err
	}
	outwriter.NoteArtifact("sampled commits", cfg.SampledCSVPath)

	fmt.Printf("Sampled %d of %d filtered commits (seed %d) in %v\n",
		len(sampled), len(commits), cfg.SampleSeed, time.Since(start))
	return nil
}

// sampleCommits returns n commits drawn uniformly without replacement,
// preserving input order. A list with at most n entries is returned
// whole.
func sampleCommits(commits []schema.FilteredCommit, n int, seed int64) []schema.FilteredCommit {
	if len(commits) <= n {
		return commits
	}

	rng := rand.New(rand.NewSource(seed))
	picked := rng.Perm(len(commits))[:n]
	sort.Ints(picked)

	sampled := make([]schema.FilteredCommit, 0, n)
	for _, i := range picked {
		sampled = append(sampled, commits[i])
	}
	return sampled
}
