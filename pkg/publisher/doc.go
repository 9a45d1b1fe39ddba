// Package publisher builds the training pipeline against a workspace, publishes it
// and points the training endpoint at the new version.
//
// A run resolves the default datastore and the training environment, declares the
// training data path parameter, builds the training step, validates the pipeline
// locally and with the control plane, publishes it and upserts the endpoint. Every
// run publishes a new pipeline version: publishing is not content addressed.
package publisher
