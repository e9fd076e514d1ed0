package grid

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeBusCase = `{
  "elements": {
    "bus": {"1": {"vm": 1.0}, "2": {"vm": 0.98}, "3": {"vm": 1.01}},
    "load": {
      "L1": {"bus": "1", "p_load": 110.0, "q_load": 40.0, "in_service": true},
      "L2": {"bus": "2", "p_load": 110.0, "q_load": 40.0},
      "L3": {"bus": "3", "p_load": 95.3, "q_load": 50.1, "in_service": false}
    },
    "branch": {"1": {"from_bus": "1", "to_bus": "3", "rating_long_term": 9000.0}}
  },
  "system": {"model_name": "pglib_opf_case3_lmbd", "baseMVA": 100.0},
  "results": {"time": 0.25, "#_cons": 42}
}`

func mustDecode(t *testing.T, doc string) *ModelData {
	t.Helper()
	md, err := Decode([]byte(doc))
	require.NoError(t, err)
	return md
}

func TestDecode_ReadsElementsAndSystem(t *testing.T) {
	md := mustDecode(t, threeBusCase)

	assert.Equal(t, "pglib_opf_case3_lmbd", md.ModelName())
	assert.Equal(t, 3, md.Count(KindBus))
	assert.Equal(t, 3, md.Count(KindLoad))

	base, ok := md.SystemFloat("baseMVA")
	require.True(t, ok)
	assert.Equal(t, 100.0, base)

	results, err := md.Section("results")
	require.NoError(t, err)
	assert.Equal(t, 0.25, results["time"])
}

func TestCloneInService_DropsOutOfServiceElements(t *testing.T) {
	md := mustDecode(t, threeBusCase)

	clone := md.CloneInService()

	loads := clone.Elements(KindLoad)
	assert.Len(t, loads, 2)
	assert.NotContains(t, loads, "L3")
	assert.Equal(t, 3, md.Count(KindLoad), "source must keep every load")
}

func TestClone_IsIndependent(t *testing.T) {
	md := mustDecode(t, threeBusCase)

	clone := md.Clone()
	clone.Elements(KindLoad)["L1"].Set("p_load", 1.0)
	clone.SetSystem("mult", 1.1)

	p, _ := md.Elements(KindLoad)["L1"].Float("p_load")
	assert.Equal(t, 110.0, p)
	_, ok := md.System()["mult"]
	assert.False(t, ok)
}

func TestScaleLoads(t *testing.T) {
	for _, mult := range []float64{0.9, 0.95, 1.0, 1.05, 1.1, 0} {
		md := mustDecode(t, threeBusCase)
		base := md.CloneInService()

		scaled, err := ScaleLoads(md, mult)
		require.NoError(t, err)

		for id, load := range scaled.Elements(KindLoad) {
			p, _ := load.Float("p_load")
			q, _ := load.Float("q_load")
			bp, _ := base.Elements(KindLoad)[id].Float("p_load")
			bq, _ := base.Elements(KindLoad)[id].Float("q_load")
			assert.InDelta(t, bp*mult, p, 1e-12, "p_load of %s at %v", id, mult)
			assert.InDelta(t, bq*mult, q, 1e-12, "q_load of %s at %v", id, mult)
		}
	}
}

func TestScaleLoads_UnitMultiplierIsExact(t *testing.T) {
	md := mustDecode(t, threeBusCase)

	scaled, err := ScaleLoads(md, 1.0)
	require.NoError(t, err)

	for id, load := range scaled.Elements(KindLoad) {
		orig := md.Elements(KindLoad)[id]
		assert.Equal(t, orig["p_load"], load["p_load"])
		assert.Equal(t, orig["q_load"], load["q_load"])
	}
}

func TestScaleLoads_DoesNotMutateBase(t *testing.T) {
	md := mustDecode(t, threeBusCase)

	_, err := ScaleLoads(md, 1.5)
	require.NoError(t, err)

	p, _ := md.Elements(KindLoad)["L1"].Float("p_load")
	assert.Equal(t, 110.0, p)
}

func TestScaleLoads_NonNumericLoad(t *testing.T) {
	md := mustDecode(t, `{"elements": {"load": {"1": {"p_load": {"data_type": "time_series"}}}}, "system": {}}`)

	_, err := ScaleLoads(md, 1.1)
	assert.ErrorIs(t, err, ErrNonNumericLoad)
}

func TestRoundMultiplier(t *testing.T) {
	assert.Equal(t, 0.9, RoundMultiplier(0.9+1e-9))
	assert.Equal(t, 0.905, RoundMultiplier(0.90504))
	assert.Equal(t, 1.1, RoundMultiplier(1.1))
}

func TestWriteFile_RoundTrip(t *testing.T) {
	md := mustDecode(t, threeBusCase)
	md.SetSystem("mult", 0.95)

	path, err := md.WriteFile(filepath.Join(t.TempDir(), "artifact"))
	require.NoError(t, err)
	assert.Equal(t, ".json", filepath.Ext(path))

	back, err := ReadFile(path)
	require.NoError(t, err)

	mult, ok := back.SystemFloat("mult")
	require.True(t, ok)
	assert.Equal(t, 0.95, mult)

	results, err := back.Section("results")
	require.NoError(t, err)
	assert.Equal(t, 42.0, results["#_cons"])
}

func TestReadFile_Missing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSetSection_Reserved(t *testing.T) {
	md := New()
	assert.Error(t, md.SetSection("system", map[string]any{}))
	require.NoError(t, md.SetSection("results", map[string]any{"time": 1.5}))

	results, err := md.Section("results")
	require.NoError(t, err)
	assert.Equal(t, 1.5, results["time"])
}

func TestStripSensitivities(t *testing.T) {
	md := mustDecode(t, threeBusCase)
	md.SetSystem("ptdf_c", 0.1)
	md.Elements(KindBranch)["1"].Set("ptdf", map[string]any{"1": 0.5})
	require.True(t, HasSensitivities(md))

	StripSensitivities(md)

	assert.False(t, HasSensitivities(md))
	assert.Equal(t, "pglib_opf_case3_lmbd", md.ModelName())
	_, ok := md.Elements(KindBranch)["1"]["rating_long_term"]
	assert.True(t, ok)
}
