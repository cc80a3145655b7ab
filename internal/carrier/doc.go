// Package carrier models one digitised tape and its catalogued programme
// segments, and loads that model from the collections catalogue.
package carrier
