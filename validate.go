package capmanifest

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

type validateOptions struct {
	rejectUnknownCapabilities bool
	requireLaunchURL          bool
}

// ValidateOption configures Manifest.Validate.
type ValidateOption func(*validateOptions)

// WithRejectUnknownCapabilities treats unknown (non-`x-`) keys inside the
// capabilities object as errors. Default behavior is forward-compatible
// (unknowns allowed/ignored), so this is an opt-in "strict" mode.
func WithRejectUnknownCapabilities() ValidateOption {
	return func(o *validateOptions) { o.rejectUnknownCapabilities = true }
}

// WithRequireLaunchURL requires the manifest to declare a launch URL template
// containing the LaunchURLPlaceholder token. By default the launch URL is
// optional.
func WithRequireLaunchURL() ValidateOption {
	return func(o *validateOptions) { o.requireLaunchURL = true }
}

// Validate performs shape-level checks implementing the contract a manifest
// loader must enforce before handing a document to compatibility evaluation:
// a non-empty name, a non-empty version, and a structured capabilities value.
// It is intentionally not a full schema validation of the manifest format.
func (m Manifest) Validate(opts ...ValidateOption) error {
	var o validateOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}

	var errs []string

	if strings.TrimSpace(m.Name) == "" {
		errs = append(errs, "name: required")
	}
	if strings.TrimSpace(m.Version) == "" {
		errs = append(errs, "version: required")
	}
	if m.capabilitiesAbsent {
		errs = append(errs, "capabilities: required")
	}

	for i, v := range m.Capabilities.OMEZarrVersions {
		if v <= 0 {
			errs = append(errs, fmt.Sprintf("capabilities.ome_zarr_versions[%d]: must be a positive version number", i))
		}
	}
	for i, c := range m.Capabilities.CompressionCodecs {
		if strings.TrimSpace(c) == "" {
			errs = append(errs, fmt.Sprintf("capabilities.compression_codecs[%d]: must be non-empty", i))
		}
	}

	if m.LaunchURL != "" && !strings.Contains(m.LaunchURL, LaunchURLPlaceholder) {
		errs = append(errs, fmt.Sprintf("launch_url: must contain the %s placeholder", LaunchURLPlaceholder))
	}
	if o.requireLaunchURL && m.LaunchURL == "" {
		errs = append(errs, "launch_url: required")
	}

	if o.rejectUnknownCapabilities {
		appendUnknownFieldProblems(&errs, "capabilities", m.Capabilities.Unknown)
	}

	if len(errs) == 0 {
		return nil
	}
	return &ValidationError{Problems: errs}
}

func appendUnknownFieldProblems(errs *[]string, prefix string, unknown map[string]json.RawMessage) {
	if len(unknown) == 0 {
		return
	}
	keys := make([]string, 0, len(unknown))
	for k := range unknown {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	*errs = append(*errs, fmt.Sprintf("%s: unknown fields: %s", prefix, strings.Join(keys, ", ")))
}

// ValidationError is a deterministic, multi-problem validation error.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Problems) == 0 {
		return "invalid manifest"
	}
	return "invalid manifest: " + strings.Join(e.Problems, "; ")
}
