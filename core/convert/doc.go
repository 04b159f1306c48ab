// Package convert wires the extraction, flattening, and reconciliation
// stages into one conversion engine: noisy report text in, a wide tabular
// row set out.
//
// The engine is configured through functional options — [WithMergePolicy],
// [WithSuffixPolicy], [WithHierarchyDetection] — replacing what used to be
// several near-identical conversion script variants. A [Converter] is pure
// and stateless between calls: each Convert run builds its own key index,
// so independent documents can be converted concurrently on separate
// goroutines.
package convert
