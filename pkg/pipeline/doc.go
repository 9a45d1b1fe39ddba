// Package pipeline builds and validates the graph of a remote training pipeline
// before it is handed to the control plane.
//
// A pipeline is a set of path parameters and a set of script steps. Steps consume
// parameters and the outputs of other steps through input bindings, which makes the
// pipeline a directed graph: an edge runs from each producing step to every step that
// binds one of its outputs. The graph is stored with dominikbraun/graph, which rejects
// cycles as edges are added and gives a stable topological order for the definition
// that is published.
//
// Validation collects every problem it finds rather than stopping at the first one,
// so a broken pipeline can be fixed in a single pass. Nothing reaches the control
// plane until Validate has passed.
//
// Pipeline options hook into the build: they see every parameter and step as it is
// declared and get a final call once the pipeline has been published. The drawer
// uses this to render a Graphviz file of the pipeline.
package pipeline
