// Package timing enforces the segment timecode rule set that must hold
// before any extraction or catalogue mutation takes place.
package timing
