// Package geometry provides the rectangle arithmetic shared by the layout planner
// and the annotation renderer.
//
// All functions are pure: they take rectangles and image dimensions and return new
// rectangles. Nothing in this package touches pixel data.
//
// # Coordinate System
//
// Coordinates follow the standard image convention:
//   - Origin (0, 0) at the top-left corner
//   - X increases rightward, Y increases downward
//   - (X1, Y1) is inclusive, (X2, Y2) is exclusive, so Width = X2 - X1
//
// # Normalization
//
// Every rectangle returned by this package is normalized: X1 < X2, Y1 < Y2 and the
// rectangle lies inside [0, width] x [0, height]. Degenerate input (zero width or
// height, reversed corners, fully outside the image) never produces an error. It is
// collapsed to a 1x1 rectangle at the nearest valid location so callers can divide
// by width or height without checking.
//
// # Size Tiers
//
// Stroke thickness and tick length are not continuous functions of region size.
// SizeRatio classifies a region into one of three tiers (far, medium, near) and
// the tier table maps each tier to a fixed Style. Face and body annotations use the
// same table so their visual scale cannot drift apart.
package geometry
