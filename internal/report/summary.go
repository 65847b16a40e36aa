package report

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/hdrscope/hdrscope/internal/logging"
)

type Summary struct {
	Records         int          `json:"records"`
	Runs            int          `json:"runs"`
	Sites           int          `json:"sites"`
	Failed          int          `json:"failed"`
	TotalHeaders    int          `json:"total_headers"`
	StandardHeaders int          `json:"standard_headers"`
	CustomHeaders   int          `json:"custom_headers"`
	Start           time.Time    `json:"start"`
	End             time.Time    `json:"end"`
	TopSites        []CountItem  `json:"top_sites"`
	Stages          []StageTotal `json:"stages"`
	FailedSites     []string     `json:"failed_sites"`
}

type CountItem struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

type StageTotal struct {
	Stage   string `json:"stage"`
	Removed int    `json:"removed"`
}

type Reader struct {
	Since time.Time
	Site  string
}

func (r *Reader) Read(path string) ([]logging.RunRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return r.Decode(file)
}

func (r *Reader) Decode(in io.Reader) ([]logging.RunRecord, error) {
	var records []logging.RunRecord
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" {
			continue
		}
		var rec logging.RunRecord
		if err := json.Unmarshal([]byte(text), &rec); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !r.Since.IsZero() && rec.Timestamp.Before(r.Since) {
			continue
		}
		if r.Site != "" && rec.Site != r.Site {
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// Summarize aggregates run records. A site analyzed several times counts
// once in Sites and TopSites, using its latest record.
func Summarize(records []logging.RunRecord) Summary {
	var summary Summary
	if len(records) == 0 {
		return summary
	}

	summary.Start = records[0].Timestamp
	summary.End = records[0].Timestamp

	runs := map[string]struct{}{}
	latest := map[string]logging.RunRecord{}
	stageIndex := map[string]int{}

	for _, rec := range records {
		summary.Records++
		runs[rec.RunID] = struct{}{}
		if rec.Timestamp.Before(summary.Start) {
			summary.Start = rec.Timestamp
		}
		if rec.Timestamp.After(summary.End) {
			summary.End = rec.Timestamp
		}
		if prev, ok := latest[rec.Site]; !ok || !rec.Timestamp.Before(prev.Timestamp) {
			latest[rec.Site] = rec
		}

		if rec.Error != "" {
			continue
		}
		summary.TotalHeaders += rec.TotalHeaders
		summary.StandardHeaders += rec.StandardHeaders
		summary.CustomHeaders += rec.CustomHeaders
		for _, s := range rec.Stages {
			i, ok := stageIndex[s.Stage]
			if !ok {
				i = len(summary.Stages)
				stageIndex[s.Stage] = i
				summary.Stages = append(summary.Stages, StageTotal{Stage: s.Stage})
			}
			summary.Stages[i].Removed += s.Removed
		}
	}

	summary.Runs = len(runs)
	summary.Sites = len(latest)

	siteCounts := map[string]int{}
	for site, rec := range latest {
		if rec.Error != "" {
			summary.Failed++
			summary.FailedSites = append(summary.FailedSites, site)
			continue
		}
		siteCounts[site] = rec.CustomHeaders
	}
	sort.Strings(summary.FailedSites)
	summary.TopSites = topCounts(siteCounts, 10)

	return summary
}

func topCounts(counts map[string]int, n int) []CountItem {
	items := make([]CountItem, 0, len(counts))
	for key, count := range counts {
		items = append(items, CountItem{Key: key, Count: count})
	}
	if len(items) == 0 {
		return nil
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Count == items[j].Count {
			return items[i].Key < items[j].Key
		}
		return items[i].Count > items[j].Count
	})

	if len(items) > n {
		items = items[:n]
	}
	return items
}

func RenderText(summary Summary) string {
	var b strings.Builder
	printer.Fprintf(&b, "Sites: %d (failed %d)\n", summary.Sites, summary.Failed)
	printer.Fprintf(&b, "Runs: %d, records: %d\n", summary.Runs, summary.Records)
	printer.Fprintf(&b, "Headers: %d total, %d standard, %d custom\n", summary.TotalHeaders, summary.StandardHeaders, summary.CustomHeaders)

	writeCounts(&b, "Top sites by custom headers", summary.TopSites)
	writeStages(&b, summary.Stages)
	if len(summary.FailedSites) > 0 {
		fmt.Fprintf(&b, "Failed sites: %s\n", strings.Join(summary.FailedSites, ", "))
	}

	return b.String()
}

func RenderMarkdown(summary Summary) string {
	var b strings.Builder
	b.WriteString("# hdrscope Report\n\n")
	b.WriteString("## Totals\n\n")
	printer.Fprintf(&b, "- Sites: %d\n", summary.Sites)
	printer.Fprintf(&b, "- Failed: %d\n", summary.Failed)
	printer.Fprintf(&b, "- Runs: %d\n", summary.Runs)
	printer.Fprintf(&b, "- Headers: %d\n", summary.TotalHeaders)
	printer.Fprintf(&b, "- Standard headers: %d\n", summary.StandardHeaders)
	printer.Fprintf(&b, "- Custom headers: %d\n\n", summary.CustomHeaders)

	b.WriteString("## Top sites by custom headers\n\n")
	if len(summary.TopSites) == 0 {
		b.WriteString("- none\n\n")
	} else {
		for _, item := range summary.TopSites {
			printer.Fprintf(&b, "- %s: %d\n", item.Key, item.Count)
		}
		b.WriteString("\n")
	}

	b.WriteString("## Removed per stage\n\n")
	if len(summary.Stages) == 0 {
		b.WriteString("- none\n\n")
	} else {
		for _, s := range summary.Stages {
			printer.Fprintf(&b, "- %s: %d\n", s.Stage, s.Removed)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func RenderJSON(summary Summary) ([]byte, error) {
	return json.MarshalIndent(summary, "", "  ")
}

func writeCounts(b *strings.Builder, title string, items []CountItem) {
	if len(items) == 0 {
		fmt.Fprintf(b, "%s: none\n", title)
		return
	}
	fmt.Fprintf(b, "%s:\n", title)
	for _, item := range items {
		printer.Fprintf(b, "- %s: %d\n", item.Key, item.Count)
	}
}

func writeStages(b *strings.Builder, stages []StageTotal) {
	if len(stages) == 0 {
		b.WriteString("Removed per stage: none\n")
		return
	}
	b.WriteString("Removed per stage:\n")
	for _, s := range stages {
		printer.Fprintf(b, "- %s: %d\n", s.Stage, s.Removed)
	}
}
