package logging

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// RunStats summarizes the records of one run.
type RunStats struct {
	RunID   string
	Records int
	Errors  int
	First   time.Time
	Last    time.Time
}

// Stats summarizes a set of log files.
type Stats struct {
	Files   []string
	Total   int
	Invalid int
	ByLevel map[string]int
	Runs    []RunStats // Ordered by first record
}

// Stats reads every file in paths and counts matching records per level and per run.
// Lines that are not log records are counted as Invalid and otherwise ignored.
func (v *Viewer) Stats(paths []string) (*Stats, error) {
	stats := &Stats{ByLevel: make(map[string]int)}
	runs := make(map[string]*RunStats)

	for _, path := range paths {
		if err := v.collectStats(path, stats, runs); err != nil {
			return nil, err
		}
		stats.Files = append(stats.Files, filepath.Base(path))
	}

	for _, r := range runs {
		stats.Runs = append(stats.Runs, *r)
	}
	sort.Slice(stats.Runs, func(i, j int) bool {
		return stats.Runs[i].First.Before(stats.Runs[j].First)
	})

	return stats, nil
}

func (v *Viewer) collectStats(path string, stats *Stats, runs map[string]*RunStats) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		entry := v.parseLine(line)
		if !entry.IsValid {
			stats.Invalid++
			continue
		}
		if !v.matchesFilter(entry) {
			continue
		}

		stats.Total++
		stats.ByLevel[strings.ToUpper(entry.Level)]++

		if entry.RunID == "" {
			continue
		}
		r, ok := runs[entry.RunID]
		if !ok {
			r = &RunStats{RunID: entry.RunID, First: entry.Time}
			runs[entry.RunID] = r
		}
		r.Records++
		if LevelFromString(entry.Level) >= LevelFromString("error") {
			r.Errors++
		}
		if entry.Time.Before(r.First) {
			r.First = entry.Time
		}
		if entry.Time.After(r.Last) {
			r.Last = entry.Time
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read log file: %w", err)
	}
	return nil
}
