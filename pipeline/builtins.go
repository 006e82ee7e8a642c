/*
NAME
  builtins.go

DESCRIPTION
  builtins.go registers the core DSP/DVB-S2/CCSDS modules under the names
  pipeline descriptors reference, mirroring the reference implementation's
  per-module registration calls made once at startup.

AUTHORS
  satdump-go contributors

LICENSE
  MIT
*/

package pipeline

// RegisterBuiltins registers every module this repository ships under its
// canonical pipeline module name. Callers (typically main, once at
// startup) must call this before running any pipeline.
func RegisterBuiltins() {
	Register("dvbs2_demod", newDVBS2DemodModule)
	Register("cadu_deframer", newCADUDeframerModule)
}
