/*
NAME
  params.go

DESCRIPTION
  params.go resolves a module's final parameter set from its
  descriptor-declared defaults overlaid with the pipeline-level parameters
  passed in at run time, matching the reference Pipeline::prepareParameters:
  pipeline-level values win on key conflicts, anything pipeline-only is
  added.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package pipeline

import (
	"fmt"

	"github.com/ausocean/utils/logging"
)

// prepareParameters returns moduleParams overlaid with pipelineParams: keys
// present in both take the pipeline-level value, keys only in pipelineParams
// are added, and keys only in moduleParams are kept as declared.
func prepareParameters(moduleParams, pipelineParams map[string]any, log logging.Logger) map[string]any {
	final := make(map[string]any, len(moduleParams)+len(pipelineParams))
	for k, v := range moduleParams {
		final[k] = v
	}
	for k, v := range pipelineParams {
		final[k] = v
	}

	if log != nil {
		log.Debug("parameters:")
		for k, v := range final {
			log.Debug(fmt.Sprintf("   - %s : %v", k, v))
		}
	}
	return final
}
