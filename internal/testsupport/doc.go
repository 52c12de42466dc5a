// Package testsupport builds fixtures shared across package tests, most
// notably miniature GOG Galaxy databases with just enough schema for the
// gogdb queries to run.
package testsupport
