// Package far holds the refined-topology representation: topology
// refinement, primvar interpolation, stencil tables, patch tables and
// limit-surface evaluation.
//
// The entry point is NewTopologyRefiner, which turns a TopologyDescriptor
// into a TopologyRefiner. RefineUniform populates the refinement levels;
// from there a PrimvarRefiner interpolates data level by level, the
// stencil factories factor the whole refinement into flat weight tables,
// and the patch factory builds bi-cubic patches for limit evaluation.
package far
