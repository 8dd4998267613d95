// Package pipeline provides the in-process queue connecting replay output
// to the snapshot writer.
package pipeline
