// Package model provides the data structures shared by the pipeline builder, the
// control plane client and the publisher.
// It defines the storage references and path parameters a step consumes, the steps
// themselves, the wire definition of a pipeline graph, and the published pipelines
// and endpoints the control plane hands back.
package model
