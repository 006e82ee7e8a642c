package pipeline

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/satdump-go/core/dsp"
)

// passthroughModule copies its input verbatim to its output, supporting
// both DataFile and DataStream on either side so fusion tests can exercise
// the orchestrator's streaming path.
type passthroughModule struct {
	inputFile, outputDir string
	inputType, outputType DataType
	inStream, outStream   *dsp.RingBuffer
	outputs               []string
}

func newPassthroughModule(inputFile, outputDir string, _ map[string]any) (ProcessingModule, error) {
	return &passthroughModule{inputFile: inputFile, outputDir: outputDir}, nil
}

func (m *passthroughModule) Init() error                      { return os.MkdirAll(m.outputDir, 0o755) }
func (m *passthroughModule) Stop() error                      { return nil }
func (m *passthroughModule) InputTypes() []DataType            { return []DataType{DataFile, DataStream} }
func (m *passthroughModule) OutputTypes() []DataType           { return []DataType{DataFile, DataStream} }
func (m *passthroughModule) SetInputType(t DataType)           { m.inputType = t }
func (m *passthroughModule) SetOutputType(t DataType)          { m.outputType = t }
func (m *passthroughModule) SetInputStream(rb *dsp.RingBuffer)  { m.inStream = rb }
func (m *passthroughModule) SetOutputStream(rb *dsp.RingBuffer) { m.outStream = rb }
func (m *passthroughModule) Outputs() []string                  { return m.outputs }

func (m *passthroughModule) Process() error {
	var data []byte
	if m.inputType == DataStream {
		buf := make([]byte, 4096)
		for {
			n := m.inStream.Read(buf)
			if n == 0 {
				break
			}
			data = append(data, buf[:n]...)
		}
	} else {
		b, err := os.ReadFile(m.inputFile)
		if err != nil {
			return err
		}
		data = b
	}

	if m.outputType == DataStream {
		m.outStream.Write(data)
		m.outStream.StopWriter()
		return nil
	}
	out := filepath.Join(m.outputDir, "passthrough.bin")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	m.outputs = []string{out}
	return nil
}

// upperModule uppercases ASCII bytes, supporting DataStream input and
// DataFile output.
type upperModule struct {
	inputFile, outputDir string
	inputType, outputType DataType
	inStream              *dsp.RingBuffer
	outputs               []string
}

func newUpperModule(inputFile, outputDir string, _ map[string]any) (ProcessingModule, error) {
	return &upperModule{inputFile: inputFile, outputDir: outputDir}, nil
}

func (m *upperModule) Init() error                     { return os.MkdirAll(m.outputDir, 0o755) }
func (m *upperModule) Stop() error                     { return nil }
func (m *upperModule) InputTypes() []DataType           { return []DataType{DataFile, DataStream} }
func (m *upperModule) OutputTypes() []DataType          { return []DataType{DataFile} }
func (m *upperModule) SetInputType(t DataType)          { m.inputType = t }
func (m *upperModule) SetOutputType(t DataType)         { m.outputType = t }
func (m *upperModule) SetInputStream(rb *dsp.RingBuffer) { m.inStream = rb }
func (m *upperModule) SetOutputStream(*dsp.RingBuffer)   {}
func (m *upperModule) Outputs() []string                 { return m.outputs }

func (m *upperModule) Process() error {
	var r io.Reader
	if m.inputType == DataStream {
		r = ringBufferReader{rb: m.inStream}
	} else {
		f, err := os.Open(m.inputFile)
		if err != nil {
			return err
		}
		defer f.Close()
		r = f
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	data = bytes.ToUpper(data)
	out := filepath.Join(m.outputDir, "upper.bin")
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return err
	}
	m.outputs = []string{out}
	return nil
}

func testDesc() PipelineDesc {
	return PipelineDesc{
		Name: "test_pipeline",
		Steps: []PipelineStep{
			{LevelName: "baseband"},
			{LevelName: "stage1", Modules: []ModuleStep{{ModuleName: "test_passthrough"}}},
			{LevelName: "stage2", Modules: []ModuleStep{{ModuleName: "test_upper"}}},
		},
	}
}

func TestFusionEquivalentToSerial(t *testing.T) {
	Register("test_passthrough", newPassthroughModule)
	Register("test_upper", newUpperModule)

	input := []byte("hello dvb-s2 world")

	runOnce := func(disableFusion bool) string {
		dir := t.TempDir()
		inFile := filepath.Join(dir, "in.bin")
		if err := os.WriteFile(inFile, input, 0o644); err != nil {
			t.Fatal(err)
		}
		params := map[string]any{}
		if disableFusion {
			params["disable_multi_modules"] = true
		}
		o := NewOrchestrator(nil)
		if err := o.Run(testDesc(), inFile, dir, params, "baseband"); err != nil {
			t.Fatalf("Run (disableFusion=%v): %v", disableFusion, err)
		}
		out, err := os.ReadFile(filepath.Join(dir, "test_pipeline", "upper.bin"))
		if err != nil {
			t.Fatalf("reading output (disableFusion=%v): %v", disableFusion, err)
		}
		return string(out)
	}

	fused := runOnce(false)
	serial := runOnce(true)

	if fused != serial {
		t.Fatalf("fused output %q != serial output %q", fused, serial)
	}
	want := bytes.ToUpper(input)
	if fused != string(want) {
		t.Fatalf("output %q, want %q", fused, want)
	}
}
