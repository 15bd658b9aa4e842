// Package pipeline implements the SVG preprocessing stage.
//
// Some rendering backends mishandle <image> elements whose href carries a
// base64-encoded SVG data URI: the nested document goes through the
// raster-image path and comes out blank or distorted. ExpandDataImages
// rewrites each such element into an inline <g> group containing the
// decoded document, so the renderer sees plain markup instead of an
// encoded blob.
//
// Rendering and merging are handled separately by the root svg2pdf
// package. This separation keeps the pipeline focused on document text
// rewriting, with no knowledge of page sizing or PDF structure.
package pipeline
