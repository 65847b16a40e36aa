package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hdrscope/hdrscope/internal/funnel"
	"github.com/hdrscope/hdrscope/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecords() []logging.RunRecord {
	return []logging.RunRecord{
		{
			Timestamp: time.Unix(0, 0), RunID: "r1", Site: "a.com",
			TotalHeaders: 1200, StandardHeaders: 1000, CustomHeaders: 3,
			Stages: []logging.StageRemoval{{Stage: "standard_headers", Removed: 1000}, {Stage: "third_party", Removed: 150}},
		},
		{
			Timestamp: time.Unix(1, 0), RunID: "r1", Site: "b.com",
			TotalHeaders: 10, StandardHeaders: 5, CustomHeaders: 1,
			Stages: []logging.StageRemoval{{Stage: "standard_headers", Removed: 5}},
		},
		{Timestamp: time.Unix(2, 0), RunID: "r1", Site: "c.com", Error: "no capture"},
		{
			Timestamp: time.Unix(3, 0), RunID: "r2", Site: "b.com",
			TotalHeaders: 10, StandardHeaders: 5, CustomHeaders: 4,
		},
	}
}

func TestSummarize(t *testing.T) {
	summary := Summarize(sampleRecords())

	assert.Equal(t, 4, summary.Records)
	assert.Equal(t, 2, summary.Runs)
	assert.Equal(t, 3, summary.Sites)
	assert.Equal(t, 1, summary.Failed)
	assert.Equal(t, []string{"c.com"}, summary.FailedSites)
	assert.Equal(t, 1220, summary.TotalHeaders)
	assert.Equal(t, 8, summary.CustomHeaders)
	assert.Equal(t, time.Unix(0, 0), summary.Start)
	assert.Equal(t, time.Unix(3, 0), summary.End)
	assert.Equal(t, []CountItem{{Key: "b.com", Count: 4}, {Key: "a.com", Count: 3}}, summary.TopSites)
	assert.Equal(t, []StageTotal{{Stage: "standard_headers", Removed: 1005}, {Stage: "third_party", Removed: 150}}, summary.Stages)
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)
	assert.Zero(t, summary.Records)
	assert.Contains(t, RenderText(summary), "Top sites by custom headers: none")
	assert.Contains(t, RenderMarkdown(summary), "- none")
}

func TestRenderTextFormatsNumbers(t *testing.T) {
	text := RenderText(Summarize(sampleRecords()))
	assert.Contains(t, text, "Headers: 1,220 total")
	assert.Contains(t, text, "- standard_headers: 1,005")
	assert.Contains(t, text, "Failed sites: c.com")
}

func TestRenderJSON(t *testing.T) {
	data, err := RenderJSON(Summary{Sites: 1})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"sites": 1`)
}

func TestReaderFilters(t *testing.T) {
	var buf bytes.Buffer
	logger := logging.NewRunLogger(&buf)
	for _, rec := range sampleRecords() {
		require.NoError(t, logger.Write(rec))
	}
	buf.WriteString("\n")

	all, err := (&Reader{}).Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, all, 4)

	recent, err := (&Reader{Since: time.Unix(2, 0)}).Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, recent, 2)

	one, err := (&Reader{Site: "b.com"}).Decode(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Len(t, one, 2)

	_, err = (&Reader{}).Decode(strings.NewReader("{}\nnot json\n"))
	assert.ErrorContains(t, err, "line 2")
}

func TestRenderFunnel(t *testing.T) {
	r := &funnel.Report{
		Label: "Compound filtering statistics",
		Mode:  funnel.ModeCascading,
		Total: 1500,
		Stages: []funnel.StageStats{
			{Stage: funnel.StageStandard, Entering: 1500, Removed: 1400},
			{Stage: funnel.StageThirdParty, Entering: 100, Removed: 40},
		},
		Survived: 60,
	}

	text := RenderFunnelText(r)
	assert.Contains(t, text, "Total headers: 1,500")
	assert.Contains(t, text, "Survivors: 60")
	assert.Contains(t, text, "standard_headers")

	md := RenderFunnelMarkdown(r)
	assert.Contains(t, md, "| third_party | 100 | 40 |")
}

func TestSaveJSONAndWriteOutput(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "out.json")

	require.NoError(t, SaveJSON(path, map[string]int{"a": 1}))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))

	assert.Error(t, SaveJSON(path, nil))

	var buf bytes.Buffer
	require.NoError(t, WriteOutput(&buf, "", []byte("hello")))
	assert.Equal(t, "hello", buf.String())

	out := filepath.Join(dir, "sub", "report.txt")
	require.NoError(t, WriteOutput(&buf, out, []byte("file")))
	data, err = os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "file", string(data))
}
