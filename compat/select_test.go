package compat

import (
	"encoding/json"
	"reflect"
	"testing"

	capmanifest "github.com/BioImageTools/capability-manifest"
	"github.com/BioImageTools/capability-manifest/zarr"
)

func namedManifest(name string, caps capmanifest.Capabilities) capmanifest.Manifest {
	return capmanifest.Manifest{Name: name, Version: "1.0.0", Capabilities: caps}
}

func TestCompatibleNames_PreservesOrder(t *testing.T) {
	manifests := []capmanifest.Manifest{
		namedManifest("alpha", capmanifest.Capabilities{OMEZarrVersions: []float64{0.4}}),
		namedManifest("beta", capmanifest.Capabilities{OMEZarrVersions: []float64{0.3}}),
		namedManifest("gamma", capmanifest.Capabilities{OMEZarrVersions: []float64{0.4, 0.5}}),
		namedManifest("delta", capmanifest.Capabilities{}),
	}
	d := &zarr.Descriptor{Version: "0.4"}

	got := CompatibleNames(manifests, d)
	want := []string{"alpha", "gamma"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestCompatibleNames_EmptyInput(t *testing.T) {
	d := &zarr.Descriptor{Version: "0.4"}
	if got := CompatibleNames(nil, d); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
	if got := CompatibleViewers([]capmanifest.Manifest{}, d); len(got) != 0 {
		t.Fatalf("expected empty result, got %v", got)
	}
}

func TestCompatibleViewers_CarriesWarnings(t *testing.T) {
	manifests := []capmanifest.Manifest{
		namedManifest("quiet", capmanifest.Capabilities{OMEZarrVersions: []float64{0.4}, OMEROMetadata: true}),
		namedManifest("noisy", capmanifest.Capabilities{OMEZarrVersions: []float64{0.4}}),
		namedManifest("blocked", capmanifest.Capabilities{OMEZarrVersions: []float64{0.3}}),
	}
	d := &zarr.Descriptor{
		Version: "0.4",
		OMERO:   json.RawMessage(`{"channels":[]}`),
	}

	got := CompatibleViewers(manifests, d)
	if len(got) != 2 {
		t.Fatalf("expected two survivors, got %v", got)
	}
	if got[0].Name != "quiet" || len(got[0].Result.Warnings) != 0 {
		t.Fatalf("expected quiet with no warnings, got %+v", got[0])
	}
	if got[1].Name != "noisy" || len(got[1].Result.Warnings) != 1 {
		t.Fatalf("expected noisy with one warning, got %+v", got[1])
	}
}

func TestIsCompatible(t *testing.T) {
	m := namedManifest("viewer", capmanifest.Capabilities{OMEZarrVersions: []float64{0.4}})
	if !IsCompatible(&m, &zarr.Descriptor{Version: "0.4"}) {
		t.Fatalf("expected compatible")
	}
	if IsCompatible(&m, &zarr.Descriptor{Version: "0.5"}) {
		t.Fatalf("expected incompatible")
	}
}
