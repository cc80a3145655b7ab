// Package extract performs lossless stream-copy extraction of planned
// segment windows and verifies each output frame for frame against its
// source range.
package extract
