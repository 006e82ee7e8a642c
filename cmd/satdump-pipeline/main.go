/*
NAME
  main.go

DESCRIPTION
  satdump-pipeline is the command-line entry point running one named
  pipeline descriptor against an input file: it registers every built-in
  module, loads the requested pipeline descriptor, and invokes the
  orchestrator.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

// satdump-pipeline runs a single ground-station processing pipeline
// against a baseband or frame-level input file.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/ausocean/utils/logging"

	"github.com/satdump-go/core/pipeline"
)

// Logging configuration, matching the reference CLI's fixed rotation
// policy.
const (
	logPath      = "satdump-pipeline.log"
	logMaxSize   = 100 // MB
	logMaxBackup = 5
	logMaxAge    = 28 // days
	logVerbosity = logging.Info
	logSuppress  = false
)

func main() {
	descPath := flag.String("pipelines", "", "path to a pipeline descriptor JSON file")
	pipelineName := flag.String("pipeline", "", "name of the pipeline to run, within the descriptor file")
	inputFile := flag.String("input", "", "input file path")
	outputDir := flag.String("output", "", "output directory")
	inputLevel := flag.String("input_level", "baseband", "processing level the input file is already at")
	paramsJSON := flag.String("params", "{}", "JSON object of pipeline-level parameter overrides")
	flag.Parse()

	fileLog := &lumberjack.Logger{
		Filename:   logPath,
		MaxSize:    logMaxSize,
		MaxBackups: logMaxBackup,
		MaxAge:     logMaxAge,
	}
	log := logging.New(logVerbosity, io.MultiWriter(fileLog, os.Stderr), logSuppress)

	if *descPath == "" || *pipelineName == "" || *inputFile == "" || *outputDir == "" {
		fmt.Fprintln(os.Stderr, "usage: satdump-pipeline -pipelines <file> -pipeline <name> -input <file> -output <dir>")
		os.Exit(2)
	}

	var params map[string]any
	if err := json.Unmarshal([]byte(*paramsJSON), &params); err != nil {
		log.Error("invalid -params JSON", "error", err.Error())
		os.Exit(1)
	}

	pipeline.RegisterBuiltins()

	descs, err := pipeline.LoadDescriptors(*descPath)
	if err != nil {
		log.Error("failed to load pipeline descriptors", "error", err.Error())
		os.Exit(1)
	}

	var desc *pipeline.PipelineDesc
	for i := range descs {
		if descs[i].Name == *pipelineName {
			desc = &descs[i]
			break
		}
	}
	if desc == nil {
		log.Error("pipeline not found", "name", *pipelineName)
		os.Exit(1)
	}

	orchestrator := pipeline.NewOrchestrator(log)
	if err := orchestrator.Run(*desc, *inputFile, *outputDir, params, *inputLevel); err != nil {
		log.Error("pipeline run failed", "error", err.Error())
		os.Exit(1)
	}

	log.Info("pipeline completed", "pipeline", *pipelineName)
}
