// Package plan converts validated segment timings into frame-accurate
// extraction windows with protective handles.
package plan
