// Package testsupport provides shared fixtures for package tests: an
// isolated configuration builder and stub executables.
package testsupport
