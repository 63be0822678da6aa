package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"slices"
	"strings"

	"eventsort/internal/pipeline"
)

// folderCount is the number of files placed (or planned) in one folder
// relative to the target root.
type folderCount struct {
	Folder string `json:"folder"`
	Files  int    `json:"files"`
}

// summaryDocument is the --json output: the run summary with per-folder
// totals alongside.
type summaryDocument struct {
	*pipeline.Summary
	Folders []folderCount `json:"folders"`
}

func writeSummaryJSON(out io.Writer, s *pipeline.Summary) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(summaryDocument{Summary: s, Folders: folderCounts(s)})
}

func renderSummary(p statusPrinter, s *pipeline.Summary) {
	kind, headline := summaryHeadline(s)
	p.line("Sort", kind, headline)
	if s.ManifestPath != "" {
		p.line("Manifest", statusInfo, s.ManifestPath)
	}
	if s.LogPath != "" {
		p.line("Log", statusInfo, s.LogPath)
	}
	fmt.Fprintln(p.out)

	fmt.Fprintln(p.out, countTable("Photos", "Metric", []countRow{
		{"Files scanned", s.Scan.Files},
		{"Images", s.Scan.Images},
		{"Not images", s.Scan.Skipped},
		{"Unreadable", s.Scan.Unreadable},
		{"Located", s.Located},
		{"Dated only", s.Dated},
		{"Undated", s.Undated},
	}))
	fmt.Fprintln(p.out, countTable("Epochs", "Metric", []countRow{
		{"Epochs", s.Epochs},
		{"Clustered", s.ClusteredEpochs},
		{"Too small", s.SmallEpochs},
		{"Clustering failed", s.FallbackEpochs},
		{"Clusters", s.Clusters},
		{"Noise photos", s.NoisePhotos},
	}))

	if s.DryRun {
		folders := folderCounts(s)
		rows := make([]countRow, len(folders))
		for i, f := range folders {
			rows[i] = countRow{f.Folder, f.Files}
		}
		fmt.Fprintln(p.out, countTable("Planned folders", "Folder", rows))
	}

	if len(s.Failures) > 0 {
		rows := make([][]string, 0, len(s.Failures))
		for _, f := range s.Failures {
			rows = append(rows, []string{f.Source, f.Destination, f.Error})
		}
		fmt.Fprintln(p.out, listTable("Failures", []string{"Source", "Destination", "Error"}, rows))
	}
}

func summaryHeadline(s *pipeline.Summary) (statusKind, string) {
	switch {
	case len(s.Failures) > 0:
		return statusError, fmt.Sprintf("%d copied, %d failed into %s", s.Copied, len(s.Failures), s.TargetDir)
	case s.DryRun:
		return statusInfo, fmt.Sprintf("dry run: %d planned into %s", s.Planned, s.TargetDir)
	case s.Overwrites > 0:
		return statusWarn, fmt.Sprintf("%d copied into %s, %d name collision(s) overwritten", s.Copied, s.TargetDir, s.Overwrites)
	default:
		return statusOK, fmt.Sprintf("%d copied into %s", s.Copied, s.TargetDir)
	}
}

// folderCounts tallies successful placements per destination folder, sorted
// by folder.
func folderCounts(s *pipeline.Summary) []folderCount {
	counts := make(map[string]int)
	for _, p := range s.Placements {
		if p.Err != nil {
			continue
		}
		dir := filepath.Dir(p.Destination)
		if rel, err := filepath.Rel(s.TargetDir, dir); err == nil {
			dir = rel
		}
		counts[filepath.ToSlash(dir)]++
	}
	out := make([]folderCount, 0, len(counts))
	for dir, n := range counts {
		out = append(out, folderCount{Folder: dir, Files: n})
	}
	slices.SortFunc(out, func(a, b folderCount) int { return strings.Compare(a.Folder, b.Folder) })
	return out
}
