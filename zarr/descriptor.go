package zarr

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Axis describes one entry of an OME-Zarr axes list.
type Axis struct {
	Name string `json:"name"`
	Type string `json:"type,omitempty"`
	// Unit is carried for display only; compatibility rules do not read it.
	Unit string `json:"unit,omitempty"`
}

// MultiscaleDataset is one resolution level of a scale pyramid.
type MultiscaleDataset struct {
	Path string `json:"path,omitempty"`
}

// Multiscale is one scale-pyramid descriptor. Its version is used only as a
// fallback when the root document declares none; its datasets list is carried
// for display.
type Multiscale struct {
	Version  string              `json:"version,omitempty"`
	Name     string              `json:"name,omitempty"`
	Datasets []MultiscaleDataset `json:"datasets,omitempty"`
}

// Compressor identifies the codec a dataset is compressed with. In the wire
// metadata it appears either as a plain string or as an object exposing an
// "id" field; an object without an id resolves to no codec.
type Compressor struct {
	ID string
}

func (c *Compressor) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		c.ID = s
		return nil
	}
	var obj struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(b, &obj); err != nil {
		return fmt.Errorf("compressor: expected string or object: %w", err)
	}
	c.ID = obj.ID
	return nil
}

func (c Compressor) MarshalJSON() ([]byte, error) {
	if c.ID == "" {
		return []byte("null"), nil
	}
	return json.Marshal(struct {
		ID string `json:"id"`
	}{ID: c.ID})
}

// Descriptor is the normalized structural summary of one dataset.
//
// Presence matters: several compatibility rules fire on whether a field was
// declared at all, so optional object-valued fields are pointers or raw
// values and the axes list keeps an explicit presence marker.
type Descriptor struct {
	// Version is the dataset's declared OME-Zarr version, when declared at
	// the document root.
	Version string `json:"version,omitempty"`

	// Axes is the declared axes list. AxesPresent distinguishes an empty
	// list (declared, no entries) from an absent field; ParseDescriptor
	// sets it, and descriptors built by hand must set it alongside Axes.
	Axes        []Axis `json:"axes,omitempty"`
	AxesPresent bool   `json:"-"`

	Multiscales []Multiscale `json:"multiscales,omitempty"`

	// OMERO is the raw omero block; its mere presence signals OMERO-style
	// rendering metadata.
	OMERO json.RawMessage `json:"omero,omitempty"`

	// Labels lists label-group identifiers; a non-empty list signals
	// annotation data.
	Labels []string `json:"labels,omitempty"`

	// Plate is the raw plate block; its presence signals a high-content
	// screening layout.
	Plate json.RawMessage `json:"plate,omitempty"`

	Compressor *Compressor `json:"compressor,omitempty"`
}

// ParseDescriptor decodes a dataset's root attributes document into a
// Descriptor.
func ParseDescriptor(data []byte) (*Descriptor, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse dataset metadata: %w", err)
	}

	type wire Descriptor
	var d wire
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("parse dataset metadata: %w", err)
	}

	out := Descriptor(d)
	_, out.AxesPresent = raw["axes"]
	return &out, nil
}

// ResolveVersion returns the dataset's declared specification version: the
// root-level version when present, else the first multiscales entry's
// version. ok is false when neither location yields one.
func (d *Descriptor) ResolveVersion() (version string, ok bool) {
	if d.Version != "" {
		return d.Version, true
	}
	if len(d.Multiscales) > 0 && d.Multiscales[0].Version != "" {
		return d.Multiscales[0].Version, true
	}
	return "", false
}

// ParseVersion parses a dataset version string as a decimal number, the form
// version membership is tested in ("0.4" matches the numeric entry 0.4).
func ParseVersion(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid OME-Zarr version %q", s)
	}
	return v, nil
}

// HasChannels reports whether any axis is a channel axis (name "c" or type
// "channel").
func (d *Descriptor) HasChannels() bool {
	for _, a := range d.Axes {
		if a.Name == "c" || a.Type == "channel" {
			return true
		}
	}
	return false
}

// HasTimepoints reports whether any axis is a time axis (name "t" or type
// "time").
func (d *Descriptor) HasTimepoints() bool {
	for _, a := range d.Axes {
		if a.Name == "t" || a.Type == "time" {
			return true
		}
	}
	return false
}

// HasLabels reports whether the dataset declares a non-empty labels list.
func (d *Descriptor) HasLabels() bool {
	return len(d.Labels) > 0
}

// rawPresent reports whether a raw optional block carries a value. A field
// explicitly set to JSON null decodes to the literal bytes "null" and counts
// as absent.
func rawPresent(m json.RawMessage) bool {
	return len(m) > 0 && !bytes.Equal(m, []byte("null"))
}

// HasPlate reports whether the dataset declares a plate block.
func (d *Descriptor) HasPlate() bool {
	return rawPresent(d.Plate)
}

// HasOMERO reports whether the dataset declares an omero block.
func (d *Descriptor) HasOMERO() bool {
	return rawPresent(d.OMERO)
}

// CodecID resolves the compressor's codec identifier. ok is false when no
// compressor is declared or when a structured compressor carries no id.
func (d *Descriptor) CodecID() (string, bool) {
	if d.Compressor == nil || d.Compressor.ID == "" {
		return "", false
	}
	return d.Compressor.ID, true
}
