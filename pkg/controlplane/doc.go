// Package controlplane defines the calls the publisher makes against a workspace's
// control plane. Passing a Client explicitly replaces any ambient workspace state and
// lets tests substitute a fake.
package controlplane
