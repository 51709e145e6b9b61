package capmanifest

import (
	"encoding/json"
	"strings"
)

// LaunchURLPlaceholder is the token inside a launch URL template that callers
// replace with the dataset location.
const LaunchURLPlaceholder = "{url}"

// LosslessFields is embedded in every typed manifest struct to preserve
// JSON fields that the SDK does not (yet) model. Extensions holds keys starting
// with "x-"; Unknown holds all other unrecognised keys. During marshaling,
// typed fields always win over colliding Unknown/Extension entries.
//
// Each lossless type requires a parallel wire struct for encoding. When adding
// fields to a typed struct, update both the public type and its wire counterpart.
type LosslessFields struct {
	// Extensions preserves `x-*` fields at the object level.
	// It is populated by UnmarshalJSON and included by MarshalJSON.
	Extensions map[string]json.RawMessage `json:"-"`

	// Unknown preserves other unknown fields (forward-compat).
	// It is populated by UnmarshalJSON and included by MarshalJSON.
	Unknown map[string]json.RawMessage `json:"-"`
}

// Pre-computed known field sets for efficient lossless JSON unmarshaling.
var (
	knownManifestSet = knownSet(
		"name", "version", "repository", "launch_url", "capabilities",
	)
	knownCapabilitiesSet = knownSet(
		"ome_zarr_versions", "rfcs_supported", "compression_codecs",
		"axes", "scale", "translation", "channels", "timepoints",
		"labels", "hcs_plates", "bioformats2raw_layout", "omero_metadata",
	)
)

// Capabilities is a viewer's self-asserted feature-support record.
//
// Every field is optional in the published document. A nil slice means the
// viewer declared no list at all; for CompressionCodecs this is a different
// statement than an empty list (no declaration vs. "supports no codecs").
// Boolean flags default to unsupported when omitted.
type Capabilities struct {
	// OMEZarrVersions lists the OME-Zarr specification versions the viewer
	// can open, as decimal numbers (0.4, 0.5, ...). Nil or empty means no
	// declared version support.
	OMEZarrVersions []float64 `json:"ome_zarr_versions,omitempty"`

	// RFCsSupported is reserved; current compatibility rules do not read it.
	RFCsSupported []float64 `json:"rfcs_supported,omitempty"`

	// CompressionCodecs lists codec identifiers the viewer can decode.
	CompressionCodecs []string `json:"compression_codecs,omitempty"`

	Axes                 bool `json:"axes,omitempty"`
	Scale                bool `json:"scale,omitempty"`
	Translation          bool `json:"translation,omitempty"`
	Channels             bool `json:"channels,omitempty"`
	Timepoints           bool `json:"timepoints,omitempty"`
	Labels               bool `json:"labels,omitempty"`
	HCSPlates            bool `json:"hcs_plates,omitempty"`
	Bioformats2RawLayout bool `json:"bioformats2raw_layout,omitempty"`
	OMEROMetadata        bool `json:"omero_metadata,omitempty"`

	LosslessFields
}

type capabilitiesWire struct {
	OMEZarrVersions   []float64 `json:"ome_zarr_versions,omitempty"`
	RFCsSupported     []float64 `json:"rfcs_supported,omitempty"`
	CompressionCodecs []string  `json:"compression_codecs,omitempty"`

	Axes                 bool `json:"axes,omitempty"`
	Scale                bool `json:"scale,omitempty"`
	Translation          bool `json:"translation,omitempty"`
	Channels             bool `json:"channels,omitempty"`
	Timepoints           bool `json:"timepoints,omitempty"`
	Labels               bool `json:"labels,omitempty"`
	HCSPlates            bool `json:"hcs_plates,omitempty"`
	Bioformats2RawLayout bool `json:"bioformats2raw_layout,omitempty"`
	OMEROMetadata        bool `json:"omero_metadata,omitempty"`
}

func (c *Capabilities) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var w capabilitiesWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*c = Capabilities{
		OMEZarrVersions:      w.OMEZarrVersions,
		RFCsSupported:        w.RFCsSupported,
		CompressionCodecs:    w.CompressionCodecs,
		Axes:                 w.Axes,
		Scale:                w.Scale,
		Translation:          w.Translation,
		Channels:             w.Channels,
		Timepoints:           w.Timepoints,
		Labels:               w.Labels,
		HCSPlates:            w.HCSPlates,
		Bioformats2RawLayout: w.Bioformats2RawLayout,
		OMEROMetadata:        w.OMEROMetadata,
	}

	c.LosslessFields = collectLossless(raw, knownCapabilitiesSet)
	return nil
}

func (c Capabilities) MarshalJSON() ([]byte, error) {
	w := capabilitiesWire{
		OMEZarrVersions:      c.OMEZarrVersions,
		RFCsSupported:        c.RFCsSupported,
		CompressionCodecs:    c.CompressionCodecs,
		Axes:                 c.Axes,
		Scale:                c.Scale,
		Translation:          c.Translation,
		Channels:             c.Channels,
		Timepoints:           c.Timepoints,
		Labels:               c.Labels,
		HCSPlates:            c.HCSPlates,
		Bioformats2RawLayout: c.Bioformats2RawLayout,
		OMEROMetadata:        c.OMEROMetadata,
	}
	return c.LosslessFields.encodeWith(w)
}

// DeclaresVersions reports whether the viewer declares at least one supported
// OME-Zarr version.
func (c Capabilities) DeclaresVersions() bool {
	return len(c.OMEZarrVersions) > 0
}

// SupportsVersion reports whether v is a member of the declared version list.
func (c Capabilities) SupportsVersion(v float64) bool {
	for _, s := range c.OMEZarrVersions {
		if s == v {
			return true
		}
	}
	return false
}

// SupportsCodec reports whether codec is a member of the declared codec list.
// It returns false when no list is declared; callers distinguishing "no list"
// from "not listed" should check CompressionCodecs == nil first.
func (c Capabilities) SupportsCodec(codec string) bool {
	for _, s := range c.CompressionCodecs {
		if s == codec {
			return true
		}
	}
	return false
}

// Manifest is a viewer capability declaration document.
//
// It is immutable input to evaluation: nothing in this module mutates a
// Manifest after it has been decoded.
type Manifest struct {
	// Name identifies the viewer (e.g. "napari", "vizarr").
	Name string `json:"name"`
	// Version is the viewer release the declaration describes. It is
	// semantically opaque to compatibility evaluation.
	Version string `json:"version"`
	// Repository optionally links the viewer's source repository.
	Repository string `json:"repository,omitempty"`
	// LaunchURL is an optional URL template containing LaunchURLPlaceholder
	// where a dataset location should be substituted.
	LaunchURL string `json:"launch_url,omitempty"`

	Capabilities Capabilities `json:"capabilities"`

	LosslessFields

	// capabilitiesAbsent records that the decoded document carried no
	// capabilities object at all, so Validate can reject it. A Manifest
	// built from a struct literal always counts as carrying one.
	capabilitiesAbsent bool
}

type manifestWire struct {
	Name         string       `json:"name"`
	Version      string       `json:"version"`
	Repository   string       `json:"repository,omitempty"`
	LaunchURL    string       `json:"launch_url,omitempty"`
	Capabilities Capabilities `json:"capabilities"`
}

func (m *Manifest) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}

	var w manifestWire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}

	*m = Manifest{
		Name:         w.Name,
		Version:      w.Version,
		Repository:   w.Repository,
		LaunchURL:    w.LaunchURL,
		Capabilities: w.Capabilities,
	}

	m.LosslessFields = collectLossless(raw, knownManifestSet)
	if _, ok := raw["capabilities"]; !ok {
		m.capabilitiesAbsent = true
	}
	return nil
}

func (m Manifest) MarshalJSON() ([]byte, error) {
	w := manifestWire{
		Name:         m.Name,
		Version:      m.Version,
		Repository:   m.Repository,
		LaunchURL:    m.LaunchURL,
		Capabilities: m.Capabilities,
	}
	return m.LosslessFields.encodeWith(w)
}

// ResolveLaunchURL substitutes the dataset location into the launch URL
// template. It returns "" when the manifest declares no launch URL.
func (m Manifest) ResolveLaunchURL(datasetURL string) string {
	if m.LaunchURL == "" {
		return ""
	}
	return strings.ReplaceAll(m.LaunchURL, LaunchURLPlaceholder, datasetURL)
}
