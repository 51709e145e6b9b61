// Package compat decides whether a viewer, described by its capability
// manifest, can open a dataset, described by its zarr.Descriptor.
//
// Evaluate is a pure function: no I/O, no shared state, deterministic for
// identical inputs. It never fails for well-typed inputs; every anomaly is
// encoded as an error or warning in the returned Result. It is safe to call
// concurrently.
package compat
