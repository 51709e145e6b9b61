// Package capmanifest provides a Go SDK for OME-Zarr viewer capability
// manifests.
//
// A capability manifest is a viewer's self-asserted statement of which
// OME-Zarr features it supports: spec versions, compression codecs, channel
// and time axes, labels, HCS plates, OMERO metadata. This package models the
// manifest document; the compat subpackage decides whether a given viewer can
// open a given dataset.
//
// # Quick Start
//
//	var m capmanifest.Manifest
//	if err := json.Unmarshal(data, &m); err != nil {
//	    log.Fatal(err)
//	}
//	if err := m.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//
//	fmt.Println(m.Name, m.Version, m.Capabilities.OMEZarrVersions)
//
// # Lossless JSON (Forward Compatibility)
//
// Manifest documents may include:
//   - Extension fields (x-*) at any object location
//   - Unknown (future) fields as the capability schema evolves
//
// This SDK preserves all JSON fields on unmarshal → marshal by storing:
//   - LosslessFields.Extensions for keys beginning with x-
//   - LosslessFields.Unknown for other unknown keys
//
// If a key exists both as a typed field and in Unknown/Extensions, the typed
// field wins during marshaling.
//
// # Concurrency
//
// All types in this package are safe for concurrent read access. Concurrent
// writes to the same value require external synchronization. The Validate
// method is safe for concurrent use on the same Manifest value (read-only).
//
// # Subpackages
//
//   - zarr: normalized dataset descriptors parsed from OME-Zarr metadata
//   - compat: the compatibility evaluator and batch selector
//   - registry: fetching and validating published manifests (YAML/JSON)
//   - viewertoken: parse and normalize <name>@<version> viewer tokens
package capmanifest
