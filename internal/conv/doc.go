// Package conv provides overflow-checked integer conversions and arithmetic.
//
// Sizing math for raw allocations must never wrap silently: a wrapped byte
// count would produce an undersized region and out-of-bounds writes. All
// helpers return an error instead of truncating.
package conv
