// Package services provides shared error classification, retry, and
// context helpers used by every collaborator-facing component.
package services
