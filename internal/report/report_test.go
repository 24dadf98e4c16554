package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photolink/internal/catalog"
	"photolink/internal/matcher"
)

var (
	started  = time.Date(2026, 5, 6, 7, 8, 9, 0, time.UTC)
	finished = started.Add(1500 * time.Millisecond)
)

func sampleEntries() []Entry {
	return []Entry{
		{Index: 0, ID: "1", State: catalog.StateResolvedLocal, Method: matcher.MethodDecorationStripped, Confidence: 0.95, Changed: true},
		{Index: 1, ID: "2", State: catalog.StateAlreadyLocal},
		{Index: 2, ID: "3", Name: "Mug", Ref: "https://x/ABUIAB.jpg", State: catalog.StatePlaceholder, Reason: matcher.ReasonNoSuitableMatch, Changed: true},
		{Index: 3, ID: "4", Ref: "", State: catalog.StatePlaceholder, Reason: matcher.ReasonNoToken, Changed: true},
		{Index: 4, ID: "5", State: catalog.StateResolvedLocal, Method: matcher.MethodExact, Confidence: 1},
		{Index: 5, ID: "6", State: catalog.StateResolvedLocal, Method: matcher.MethodDecorationStripped, Confidence: 0.95},
	}
}

func TestBuildCounts(t *testing.T) {
	r := Build(Meta{RunID: "r1", Mode: "apply", StartedAt: started, FinishedAt: finished}, sampleEntries(), 10)

	assert.Equal(t, 6, r.Total)
	assert.Equal(t, map[string]int{"already_local": 1, "resolved_local": 3, "placeholder": 2}, r.States)
	assert.Equal(t, 2, r.Methods["decoration_stripped"])
	assert.Equal(t, 1, r.Methods["exact"])
	assert.Equal(t, 0, r.Methods["similarity_match"], "every tier reported")
	assert.Equal(t, map[string]int{"no_token": 1, "no_suitable_match": 1}, r.Reasons)
	assert.Equal(t, 3, r.Changed)
	assert.Equal(t, 3, r.Resolved)
	assert.Equal(t, 2, r.Unresolved)
	assert.InDelta(t, 0.6, r.ResolutionRate, 1e-9)
	assert.Equal(t, 1500*time.Millisecond, r.Duration())
}

func TestBuildSampleIsBoundedAndOrdered(t *testing.T) {
	r := Build(Meta{}, sampleEntries(), 1)
	require.Len(t, r.Samples, 1)
	assert.Equal(t, Sample{Index: 2, ID: "3", Name: "Mug", Ref: "https://x/ABUIAB.jpg", Reason: "no_suitable_match"}, r.Samples[0])

	r = Build(Meta{}, sampleEntries(), 0)
	assert.Empty(t, r.Samples)
	assert.Equal(t, 2, r.Unresolved, "sampling never affects counts")
}

func TestBuildEmptyRunHasZeroRate(t *testing.T) {
	r := Build(Meta{}, nil, DefaultSampleLimit)
	assert.Zero(t, r.ResolutionRate)
	assert.Zero(t, r.Total)

	onlyLocal := Build(Meta{}, []Entry{{State: catalog.StateAlreadyLocal}}, DefaultSampleLimit)
	assert.Zero(t, onlyLocal.ResolutionRate)
}

func TestWriteJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	r := Build(Meta{RunID: "r1", Mode: "verify", StartedAt: started, FinishedAt: finished}, sampleEntries(), 5)

	path, err := WriteJSON(dir, r)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "report-20260506T070809Z.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "r1", decoded["run_id"])
	assert.Equal(t, "verify", decoded["mode"])
	assert.EqualValues(t, 6, decoded["total"])
	assert.Len(t, decoded["unresolved_sample"], 2)
}

func TestWriteMetrics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textfile", "photolink.prom")
	r := Build(Meta{Mode: "apply", AssetCount: 42, StartedAt: started, FinishedAt: finished}, sampleEntries(), 5)

	require.NoError(t, WriteMetrics(path, r))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)
	for _, want := range []string{
		`photolink_records{mode="apply",state="resolved_local"} 3`,
		`photolink_unresolved{mode="apply",reason="no_token"} 1`,
		`photolink_matches{mode="apply",method="exact"} 1`,
		`photolink_resolution_rate{mode="apply"} 0.6`,
		`photolink_asset_pool_size{mode="apply"} 42`,
		`photolink_last_run_duration_seconds{mode="apply"} 1.5`,
	} {
		assert.True(t, strings.Contains(text, want), "missing %q in:\n%s", want, text)
	}
}
