// Package sdc defines the subdivision schemes and the per-scheme options
// shared by the refinement and table-factory code in far.
//
// The types here are small value types: they cross package boundaries by
// copy and carry no references to mesh data.
package sdc
