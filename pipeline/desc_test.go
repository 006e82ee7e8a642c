package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadDescriptorsResolvesIncludes(t *testing.T) {
	dir := t.TempDir()

	incPath := filepath.Join(dir, "common_steps.json.inc")
	inc := `[{"level_name":"baseband","modules":[{"module_name":"dvbs2_demod","parameters":{"samplerate":2000000},"input_override":""}]}]`
	if err := os.WriteFile(incPath, []byte(inc), 0o644); err != nil {
		t.Fatal(err)
	}

	descPath := filepath.Join(dir, "pipelines.json")
	desc := `{
		"dvbs2": {
			"name": "DVB-S2",
			"parameters": {"modcod": 1},
			"live": false,
			"steps": "common_steps.json.inc"
		}
	}`
	if err := os.WriteFile(descPath, []byte(desc), 0o644); err != nil {
		t.Fatal(err)
	}

	descs, err := LoadDescriptors(descPath)
	if err != nil {
		t.Fatalf("LoadDescriptors: %v", err)
	}
	if len(descs) != 1 {
		t.Fatalf("got %d descriptors, want 1", len(descs))
	}

	want := PipelineDesc{
		Name:               "dvbs2",
		ReadableName:       "DVB-S2",
		EditableParameters: map[string]any{"modcod": float64(1)},
		Live:               false,
		Steps: []PipelineStep{
			{
				LevelName: "baseband",
				Modules: []ModuleStep{
					{
						ModuleName: "dvbs2_demod",
						Parameters: map[string]any{"samplerate": float64(2000000)},
					},
				},
			},
		},
	}
	if !cmp.Equal(descs[0], want) {
		t.Errorf("LoadDescriptors() mismatch:\n%s", cmp.Diff(want, descs[0]))
	}
}

func TestParseLiveCfgFlatArray(t *testing.T) {
	got, err := parseLiveCfg([]byte(`[[100,200],[300,400]]`))
	if err != nil {
		t.Fatal(err)
	}
	want := LiveConfig{Normal: []LiveRange{{100, 200}, {300, 400}}}
	if !cmp.Equal(got, want) {
		t.Errorf("parseLiveCfg(flat) mismatch:\n%s", cmp.Diff(want, got))
	}
}

func TestParseLiveCfgObjectFallback(t *testing.T) {
	got, err := parseLiveCfg([]byte(`{"default":[[1,2]],"server":[[3,4]],"client":[[5,6]],"pkt_size":512}`))
	if err != nil {
		t.Fatal(err)
	}
	want := LiveConfig{
		Normal:  []LiveRange{{1, 2}},
		Server:  []LiveRange{{3, 4}},
		Client:  []LiveRange{{5, 6}},
		PktSize: 512,
	}
	if !cmp.Equal(got, want) {
		t.Errorf("parseLiveCfg(object) mismatch:\n%s", cmp.Diff(want, got))
	}
}
