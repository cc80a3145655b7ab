// Package catalogue talks to the collections catalogue REST API. It exposes
// the four operations the segmentation engine needs plus a derived-item
// lookup used for registration idempotency. Transport failures are tagged
// with the services sentinel errors so callers can classify and retry.
package catalogue
