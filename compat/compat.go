package compat

import (
	"fmt"

	capmanifest "github.com/BioImageTools/capability-manifest"
	"github.com/BioImageTools/capability-manifest/zarr"
)

// Capability keys referenced by Issue.Capability and Advisory.Capability.
const (
	CapabilityVersions          = "ome_zarr_versions"
	CapabilityCompressionCodecs = "compression_codecs"
	CapabilityAxes              = "axes"
	CapabilityChannels          = "channels"
	CapabilityTimepoints        = "timepoints"
	CapabilityLabels            = "labels"
	CapabilityHCSPlates         = "hcs_plates"
	CapabilityOMEROMetadata     = "omero_metadata"
)

// Issue is a hard blocker: the dataset requires a capability the viewer does
// not declare. Required describes what the dataset needs; Found describes
// what the viewer declared.
type Issue struct {
	Capability string `json:"capability"`
	Message    string `json:"message"`
	Required   any    `json:"required"`
	Found      any    `json:"found"`
}

// Advisory is a non-blocking note: the dataset carries metadata the viewer
// might not fully utilize, but nothing prevents opening it.
type Advisory struct {
	Capability string `json:"capability"`
	Message    string `json:"message"`
}

// Result is the structured verdict of one evaluation. It is constructed fresh
// per call and never mutated after return.
type Result struct {
	// Compatible is true iff Errors is empty; Warnings never affect it.
	Compatible bool       `json:"compatible"`
	Errors     []Issue    `json:"errors"`
	Warnings   []Advisory `json:"warnings"`
}

// Evaluate applies every compatibility rule to one manifest and one
// descriptor. All rules run unconditionally and contribute additively, in a
// fixed order that determines only the sequence of entries in
// Errors/Warnings, never the verdict.
func Evaluate(m *capmanifest.Manifest, d *zarr.Descriptor) Result {
	var r Result
	caps := m.Capabilities

	// 1. Version (hard). Dataset version resolves from the root, falling
	// back to the first multiscales entry.
	if raw, ok := d.ResolveVersion(); !ok {
		r.Errors = append(r.Errors, Issue{
			Capability: CapabilityVersions,
			Message:    "dataset declares no OME-Zarr version",
			Required:   "version",
			Found:      nil,
		})
	} else if v, err := zarr.ParseVersion(raw); err != nil {
		// Unparseable version text can never be a member of the declared
		// list; report it as an unsupported version.
		r.Errors = append(r.Errors, Issue{
			Capability: CapabilityVersions,
			Message:    fmt.Sprintf("dataset version %q is not a recognized OME-Zarr version", raw),
			Required:   raw,
			Found:      declaredVersions(caps),
		})
	} else if !caps.DeclaresVersions() {
		r.Errors = append(r.Errors, Issue{
			Capability: CapabilityVersions,
			Message:    "viewer declares no supported OME-Zarr versions",
			Required:   v,
			Found:      []float64{},
		})
	} else if !caps.SupportsVersion(v) {
		r.Errors = append(r.Errors, Issue{
			Capability: CapabilityVersions,
			Message:    fmt.Sprintf("dataset version %v is not supported (viewer supports %v)", v, caps.OMEZarrVersions),
			Required:   v,
			Found:      caps.OMEZarrVersions,
		})
	}

	// 2. Compression codec. Only when the dataset declares a resolvable
	// codec; a viewer without any codec list gets an advisory instead of a
	// blocker.
	if codec, ok := d.CodecID(); ok {
		if caps.CompressionCodecs == nil {
			r.Warnings = append(r.Warnings, Advisory{
				Capability: CapabilityCompressionCodecs,
				Message:    fmt.Sprintf("compatibility with codec %q unknown: viewer declares no codec list", codec),
			})
		} else if !caps.SupportsCodec(codec) {
			r.Errors = append(r.Errors, Issue{
				Capability: CapabilityCompressionCodecs,
				Message:    fmt.Sprintf("codec %q is not supported (viewer supports %v)", codec, caps.CompressionCodecs),
				Required:   codec,
				Found:      caps.CompressionCodecs,
			})
		}
	}

	// 3. Axes (advisory). A declared axes list, even an empty one, that
	// the viewer does not honor.
	if d.AxesPresent && !caps.Axes {
		r.Warnings = append(r.Warnings, Advisory{
			Capability: CapabilityAxes,
			Message:    "dataset declares axis metadata the viewer may not honor",
		})
	}

	// 4. Channels (hard).
	if d.HasChannels() && !caps.Channels {
		r.Errors = append(r.Errors, Issue{
			Capability: CapabilityChannels,
			Message:    "dataset has a channel axis but the viewer does not support channels",
			Required:   true,
			Found:      false,
		})
	}

	// 5. Timepoints (hard).
	if d.HasTimepoints() && !caps.Timepoints {
		r.Errors = append(r.Errors, Issue{
			Capability: CapabilityTimepoints,
			Message:    "dataset has a time axis but the viewer does not support timepoints",
			Required:   true,
			Found:      false,
		})
	}

	// 6. Labels (advisory).
	if d.HasLabels() && !caps.Labels {
		r.Warnings = append(r.Warnings, Advisory{
			Capability: CapabilityLabels,
			Message:    "dataset has labels the viewer may not display",
		})
	}

	// 7. HCS plate (hard).
	if d.HasPlate() && !caps.HCSPlates {
		r.Errors = append(r.Errors, Issue{
			Capability: CapabilityHCSPlates,
			Message:    "dataset is an HCS plate but the viewer does not support plates",
			Required:   true,
			Found:      false,
		})
	}

	// 8. OMERO metadata (advisory).
	if d.HasOMERO() && !caps.OMEROMetadata {
		r.Warnings = append(r.Warnings, Advisory{
			Capability: CapabilityOMEROMetadata,
			Message:    "dataset carries OMERO rendering metadata the viewer may ignore",
		})
	}

	r.Compatible = len(r.Errors) == 0
	return r
}

// declaredVersions normalizes an absent version list to an empty one so Found
// is always a list for version issues.
func declaredVersions(caps capmanifest.Capabilities) []float64 {
	if caps.OMEZarrVersions == nil {
		return []float64{}
	}
	return caps.OMEZarrVersions
}
