// Package fieldpath parses and composes the dotted, optionally indexed field
// paths used to address values in a data tree (for example
// "customer.address.city" or "items[2].price").
//
// Paths are immutable. Index segments may be written either as brackets
// ("items[0]") or as bare numeric segments ("items.0"); both parse to the same
// Path and compose back to the bracket form.
package fieldpath
