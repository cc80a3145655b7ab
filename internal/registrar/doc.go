// Package registrar records verified segment outputs in the collections
// catalogue and tracks completed registrations for idempotent resume.
package registrar
