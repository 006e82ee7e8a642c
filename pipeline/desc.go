/*
NAME
  desc.go

DESCRIPTION
  desc.go decodes pipeline descriptor files: named pipelines, each a
  sequence of level-named steps, each step a set of modules to run (or run
  fused, for the first two, when possible). It also implements the
  descriptor format's ".json.inc" literal text substitution, matching the
  reference loader's pre-parse string replacement (not a JSON merge).

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package pipeline

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ModuleStep is one module invocation within a PipelineStep.
type ModuleStep struct {
	ModuleName     string         `json:"module_name"`
	Parameters     map[string]any `json:"parameters"`
	InputOverride  string         `json:"input_override"`
}

// PipelineStep is one named processing level and the modules that produce
// it.
type PipelineStep struct {
	LevelName string       `json:"level_name"`
	Modules   []ModuleStep `json:"modules"`
}

// LiveRange is a [start,end) pair used by live-capture pipelines to
// describe a frequency/channel window.
type LiveRange [2]int

// LiveConfig holds the live-capture frequency/channel ranges a pipeline
// declares, with optional server/client overrides and packet-size hint.
type LiveConfig struct {
	Normal  []LiveRange `json:"-"`
	Server  []LiveRange `json:"-"`
	Client  []LiveRange `json:"-"`
	PktSize int         `json:"-"`
}

// PipelineDesc is one named pipeline descriptor.
type PipelineDesc struct {
	Name               string         `json:"-"`
	ReadableName       string         `json:"name"`
	EditableParameters map[string]any `json:"parameters"`
	Live               bool           `json:"live"`
	LiveCfg            LiveConfig     `json:"-"`
	Steps              []PipelineStep `json:"steps"`
}

// rawLiveCfg mirrors the two shapes live_cfg may take in a descriptor: a
// bare array of [int,int] pairs, or an object with default/server/client/
// pkt_size keys. Both are attempted in that order, matching the reference
// loader's try/catch fallback.
type rawLiveCfg struct {
	Default []LiveRange `json:"default"`
	Server  []LiveRange `json:"server"`
	Client  []LiveRange `json:"client"`
	PktSize int         `json:"pkt_size"`
}

type rawPipelineDesc struct {
	ReadableName       string          `json:"name"`
	EditableParameters map[string]any  `json:"parameters"`
	Live               bool            `json:"live"`
	LiveCfg            json.RawMessage `json:"live_cfg"`
	Steps              []PipelineStep  `json:"steps"`
}

func parseLiveCfg(raw json.RawMessage) (LiveConfig, error) {
	var flat []LiveRange
	if err := json.Unmarshal(raw, &flat); err == nil {
		return LiveConfig{Normal: flat}, nil
	}
	var obj rawLiveCfg
	if err := json.Unmarshal(raw, &obj); err != nil {
		return LiveConfig{}, errors.Wrap(err, "pipeline: decoding live_cfg")
	}
	return LiveConfig{
		Normal:  obj.Default,
		Server:  obj.Server,
		Client:  obj.Client,
		PktSize: obj.PktSize,
	}, nil
}

// LoadDescriptors reads a pipeline descriptor file at path, resolving any
// ".json.inc" includes by literal text substitution (as the reference
// loader does: the included file's raw text replaces the
// `"<name>.json.inc"` token verbatim, before the whole document is parsed
// as JSON — this is not a structured JSON merge), then decodes the
// top-level object into one PipelineDesc per key.
func LoadDescriptors(path string) ([]PipelineDesc, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "pipeline: reading descriptor")
	}

	text, err := resolveIncludes(string(raw), filepath.Dir(path))
	if err != nil {
		return nil, err
	}

	var top map[string]rawPipelineDesc
	if err := json.Unmarshal([]byte(text), &top); err != nil {
		return nil, errors.Wrap(err, "pipeline: decoding descriptor JSON")
	}

	descs := make([]PipelineDesc, 0, len(top))
	for name, raw := range top {
		d := PipelineDesc{
			Name:               name,
			ReadableName:       raw.ReadableName,
			EditableParameters: raw.EditableParameters,
			Live:               raw.Live,
			Steps:              raw.Steps,
		}
		if raw.Live && len(raw.LiveCfg) > 0 {
			cfg, err := parseLiveCfg(raw.LiveCfg)
			if err != nil {
				return nil, errors.Wrapf(err, "pipeline: %s", name)
			}
			d.LiveCfg = cfg
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// resolveIncludes replaces every `"<name>.json.inc"` occurrence in text
// with the verbatim contents of <dir>/<name>.json.inc, matching the
// reference loader's character-scanning substitution exactly (a plain
// string replace, performed before JSON parsing; the included text is
// spliced in as-is, not merged as a JSON value).
func resolveIncludes(text, dir string) (string, error) {
	const suffix = ".json.inc"
	replacements := map[string]string{}

	for i := 0; i+len(suffix) <= len(text); i++ {
		if text[i:i+len(suffix)] != suffix {
			continue
		}
		quoteStart := -1
		for y := i; y >= 0; y-- {
			if text[y] == '"' {
				quoteStart = y
				break
			}
		}
		if quoteStart < 0 {
			continue
		}
		token := text[quoteStart : i+len(suffix)+1]
		filename := token[1 : len(token)-1]
		if _, seen := replacements[token]; seen {
			continue
		}
		includePath := filepath.Join(dir, filename)
		data, err := os.ReadFile(includePath)
		if err != nil {
			return "", errors.Wrapf(err, "pipeline: could not include %s", includePath)
		}
		replacements[token] = string(data)
	}

	for token, content := range replacements {
		text = strings.ReplaceAll(text, token, content)
	}
	return text, nil
}
