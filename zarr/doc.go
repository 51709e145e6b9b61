// Package zarr models the normalized structural summary of one OME-Zarr
// dataset's metadata, as produced from its root attributes document
// (.zattrs / zarr.json attributes).
//
// A Descriptor is a read-only snapshot: it is produced once per dataset and
// never mutated by compatibility evaluation. Every field is optional; absent
// fields mean "not declared", not faults.
package zarr
