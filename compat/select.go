package compat

import (
	capmanifest "github.com/BioImageTools/capability-manifest"
	"github.com/BioImageTools/capability-manifest/zarr"
)

// Selection pairs a surviving viewer's name with its full evaluation result,
// so callers filtering on compatibility can still inspect warnings.
type Selection struct {
	Name   string `json:"name"`
	Result Result `json:"validation"`
}

// IsCompatible reports whether the viewer can open the dataset.
func IsCompatible(m *capmanifest.Manifest, d *zarr.Descriptor) bool {
	return Evaluate(m, d).Compatible
}

// CompatibleNames evaluates each manifest against the dataset and returns the
// names of those that pass, preserving input order.
func CompatibleNames(manifests []capmanifest.Manifest, d *zarr.Descriptor) []string {
	if len(manifests) == 0 {
		return []string{}
	}
	names := make([]string, 0, len(manifests))
	for i := range manifests {
		if Evaluate(&manifests[i], d).Compatible {
			names = append(names, manifests[i].Name)
		}
	}
	return names
}

// CompatibleViewers is CompatibleNames with each surviving name paired with
// its full evaluation result.
func CompatibleViewers(manifests []capmanifest.Manifest, d *zarr.Descriptor) []Selection {
	if len(manifests) == 0 {
		return []Selection{}
	}
	out := make([]Selection, 0, len(manifests))
	for i := range manifests {
		r := Evaluate(&manifests[i], d)
		if r.Compatible {
			out = append(out, Selection{Name: manifests[i].Name, Result: r})
		}
	}
	return out
}
