/*
NAME
  module.go

DESCRIPTION
  module.go defines the ProcessingModule interface every pipeline stage
  implements and the registry/factory machinery pipelines use to
  instantiate modules by name.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

// Package pipeline implements the declarative module-graph orchestrator:
// parsing pipeline descriptors, resolving per-module parameters, and
// running a pipeline's steps either serially through files or fused
// through a shared ring buffer when the first two steps both support
// streaming.
package pipeline

import "github.com/satdump-go/core/dsp"

// DataType identifies the kind of data a module consumes or produces.
type DataType int

const (
	// DataFile means the module reads/writes a path on disk.
	DataFile DataType = iota
	// DataStream means the module reads/writes a continuous byte stream.
	DataStream
)

// ProcessingModule is one pipeline stage: given an input (file path or
// stream, selected via SetInputType/SetOutputType before Init), it
// transforms data and reports the files it produced.
type ProcessingModule interface {
	// Init prepares the module's internal state; it runs before Process.
	Init() error

	// Process runs the module to completion (for a streaming module, until
	// its input is exhausted or Stop is called).
	Process() error

	// Stop requests a running streaming module to exit early.
	Stop() error

	// Outputs returns the file paths the module produced, valid after
	// Process returns.
	Outputs() []string

	// InputTypes and OutputTypes report which DataTypes the module is
	// capable of consuming/producing, used by the orchestrator to decide
	// whether two adjacent steps can be fused.
	InputTypes() []DataType
	OutputTypes() []DataType

	// SetInputType and SetOutputType select which supported DataType the
	// module should actually use for this run.
	SetInputType(DataType)
	SetOutputType(DataType)
}

// Factory constructs a ProcessingModule given its input path (or stream
// placeholder, set up separately by the orchestrator for fused steps),
// output directory, and resolved parameters.
type Factory func(inputFile, outputDirectory string, params map[string]any) (ProcessingModule, error)

// StreamBinder is implemented by modules capable of fused, in-process
// streaming: the orchestrator calls SetInputStream/SetOutputStream instead
// of passing a file path when two adjacent steps are fused over a shared
// ring buffer.
type StreamBinder interface {
	SetInputStream(*dsp.RingBuffer)
	SetOutputStream(*dsp.RingBuffer)
}
