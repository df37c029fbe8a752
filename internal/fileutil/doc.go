// Package fileutil provides small filesystem helpers shared by the artefact
// writer and the metrics exporter.
package fileutil
