/*
NAME
  orchestrator.go

DESCRIPTION
  orchestrator.go runs one PipelineDesc's steps in order: skipping steps up
  to the caller's starting level, fusing the first two steps over a shared
  ring buffer when both support streaming and fusion isn't disabled, and
  otherwise running each step's modules serially through file hand-off. It
  also auto-invokes a registered "products_processor" module if the run
  produced a dataset.json, matching the reference orchestrator's behaviour.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package pipeline

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/ausocean/utils/logging"
	"github.com/pkg/errors"

	"github.com/satdump-go/core/dsp"
)

// FusionRingBufferSize is the byte capacity of the ring buffer used to fuse
// the first two pipeline steps when both support streaming, matching the
// reference implementation's fixed 1,000,000-byte fusion buffer.
const FusionRingBufferSize = 1_000_000

// Orchestrator runs a named PipelineDesc's steps against one input.
type Orchestrator struct {
	Log logging.Logger
}

// NewOrchestrator returns an Orchestrator logging through log (may be nil).
func NewOrchestrator(log logging.Logger) *Orchestrator {
	return &Orchestrator{Log: log}
}

func (o *Orchestrator) debug(msg string) {
	if o.Log != nil {
		o.Log.Debug(msg)
	}
}

func (o *Orchestrator) warn(msg string) {
	if o.Log != nil {
		o.Log.Warning(msg)
	}
}

func (o *Orchestrator) info(msg string) {
	if o.Log != nil {
		o.Log.Info(msg)
	}
}

// Run executes desc against inputFile, writing outputs under
// outputDirectory, starting from inputLevel (steps whose level_name precede
// it, in descriptor order, are skipped as already-satisfied). parameters
// overlays every module's declared parameters (pipeline-level wins on
// conflict).
func (o *Orchestrator) Run(desc PipelineDesc, inputFile, outputDirectory string, parameters map[string]any, inputLevel string) error {
	if _, err := os.Stat(inputFile); err != nil {
		return errors.Wrapf(err, "pipeline: input file %s does not exist", inputFile)
	}
	o.debug("starting " + desc.Name)

	var lastFiles []string
	currentStep := 0
	stepC := 0
	foundLevel := false

	if disabled, _ := parameters["disable_multi_modules"].(bool); !disabled &&
		inputLevel == "baseband" &&
		len(desc.Steps) > 2 &&
		len(desc.Steps[1].Modules) == 1 &&
		len(desc.Steps[2].Modules) == 1 {

		o.info("checking the first two modules for fusion")
		fused, files, err := o.runFused(desc, inputFile, outputDirectory, parameters)
		if err != nil {
			return err
		}
		if fused {
			lastFiles = files
			currentStep = 2
			inputLevel = desc.Steps[2].LevelName
			stepC++
		}
	}

	for ; currentStep < len(desc.Steps); currentStep++ {
		step := desc.Steps[currentStep]

		if !foundLevel {
			foundLevel = step.LevelName == inputLevel
			o.warn("data is already at level " + step.LevelName + ", skipping")
			continue
		}

		o.warn("processing data to level " + step.LevelName)

		var files []string
		for _, modStep := range step.Modules {
			factory, err := Lookup(modStep.ModuleName)
			if err != nil {
				return errors.Wrapf(err, "pipeline: cancelling %s", desc.Name)
			}

			finalParams := prepareParameters(modStep.Parameters, parameters, o.Log)

			in := inputFile
			if modStep.InputOverride != "" {
				in = filepath.Join(outputDirectory, modStep.InputOverride)
			} else if stepC != 0 && len(lastFiles) > 0 {
				in = lastFiles[0]
			}

			mod, err := factory(in, filepath.Join(outputDirectory, desc.Name), finalParams)
			if err != nil {
				return errors.Wrapf(err, "pipeline: constructing %s", modStep.ModuleName)
			}
			mod.SetInputType(DataFile)
			mod.SetOutputType(DataFile)
			if err := mod.Init(); err != nil {
				return errors.Wrapf(err, "pipeline: initializing %s", modStep.ModuleName)
			}
			if err := mod.Process(); err != nil {
				return errors.Wrapf(err, "pipeline: running %s", modStep.ModuleName)
			}
			files = append(files, mod.Outputs()...)
		}

		lastFiles = files
		stepC++
	}

	return o.maybeRunProductsProcessor(outputDirectory, desc.Name)
}

// runFused attempts to run desc's steps[1] and steps[2] modules fused over
// a shared ring buffer (the first streaming to it, the second reading from
// it) instead of through an intermediate file. It reports whether fusion
// actually happened (both modules support DataStream on the relevant side).
func (o *Orchestrator) runFused(desc PipelineDesc, inputFile, outputDirectory string, parameters map[string]any) (bool, []string, error) {
	mod1Step := desc.Steps[1].Modules[0]
	mod2Step := desc.Steps[2].Modules[0]

	factory1, err := Lookup(mod1Step.ModuleName)
	if err != nil {
		return false, nil, errors.Wrapf(err, "pipeline: cancelling %s", desc.Name)
	}
	factory2, err := Lookup(mod2Step.ModuleName)
	if err != nil {
		return false, nil, errors.Wrapf(err, "pipeline: cancelling %s", desc.Name)
	}

	params1 := prepareParameters(mod1Step.Parameters, parameters, o.Log)
	params2 := prepareParameters(mod2Step.Parameters, parameters, o.Log)

	in1 := inputFile
	if mod1Step.InputOverride != "" {
		in1 = filepath.Join(outputDirectory, mod1Step.InputOverride)
	}

	m1, err := factory1(in1, filepath.Join(outputDirectory, desc.Name), params1)
	if err != nil {
		return false, nil, err
	}
	m2, err := factory2("", filepath.Join(outputDirectory, desc.Name), params2)
	if err != nil {
		return false, nil, err
	}

	binder1, ok1 := m1.(StreamBinder)
	binder2, ok2 := m2.(StreamBinder)
	m1HasStream := containsType(m1.OutputTypes(), DataStream)
	m2HasStream := containsType(m2.InputTypes(), DataStream)

	if !ok1 || !ok2 || !m1HasStream || !m2HasStream {
		return false, nil, nil
	}

	o.info("both first two modules can be run fused")

	ring := dsp.NewRingBuffer(FusionRingBufferSize)
	m1.SetInputType(DataFile)
	m1.SetOutputType(DataStream)
	binder1.SetOutputStream(ring)

	m2.SetInputType(DataStream)
	m2.SetOutputType(DataFile)
	binder2.SetInputStream(ring)

	if err := m1.Init(); err != nil {
		return false, nil, err
	}
	if err := m2.Init(); err != nil {
		return false, nil, err
	}

	var wg sync.WaitGroup
	var err1, err2 error
	wg.Add(2)
	go func() {
		defer wg.Done()
		err1 = m1.Process()
		o.info("module 1 done")
	}()
	go func() {
		defer wg.Done()
		err2 = m2.Process()
		o.info("module 2 done")
	}()
	wg.Wait()

	if err1 != nil {
		return false, nil, errors.Wrap(err1, "pipeline: fused module 1")
	}
	if err2 != nil {
		return false, nil, errors.Wrap(err2, "pipeline: fused module 2")
	}

	return true, m2.Outputs(), nil
}

func containsType(types []DataType, want DataType) bool {
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// maybeRunProductsProcessor invokes the "products_processor" module,
// registered separately, if outputDirectory/dataset.json exists — matching
// the reference orchestrator's post-run dataset processing hook.
func (o *Orchestrator) maybeRunProductsProcessor(outputDirectory, pipelineName string) error {
	datasetPath := filepath.Join(outputDirectory, "dataset.json")
	if _, err := os.Stat(datasetPath); err != nil {
		return nil
	}
	if !Registered("products_processor") {
		return nil
	}

	o.debug("products processing is enabled, starting processing module")
	factory, err := Lookup("products_processor")
	if err != nil {
		return err
	}
	mod, err := factory(datasetPath, filepath.Join(outputDirectory, pipelineName), nil)
	if err != nil {
		return err
	}
	mod.SetInputType(DataFile)
	mod.SetOutputType(DataFile)
	if err := mod.Init(); err != nil {
		return err
	}
	return mod.Process()
}
