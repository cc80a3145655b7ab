// Package workflow drives carriers through the segmentation pipeline one at
// a time, persisting progress so interrupted batches resume cleanly.
package workflow
