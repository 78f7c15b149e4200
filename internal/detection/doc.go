// Package detection defines how regions of interest are found in a photo and
// how rendered HUD frames are found again in an annotated image.
//
// # Detectors
//
// A Detector returns at most one face and one body rectangle per image. When
// the underlying model reports several candidates, the one with the largest
// area wins and ties go to the candidate reported first (see Largest). No
// candidate is a normal outcome, reported as ok == false, not as an error.
//
// Implementations:
//
//   - Fixed: rectangles supplied by the caller (MCP clients, tests)
//   - cvdetect.Detector: OpenCV Haar cascade for faces, HOG people detector
//     for bodies
//
// # Frame extraction
//
// ExtractFrames recovers axis-aligned outlines drawn in one exact colour. It
// scans rows for runs of that colour, groups the runs by horizontal span and
// accepts a pair of bands as a frame when both side columns are continuous
// between them. Outlines drawn on whole pixels are recovered exactly, which
// lets tests and the verify command check a rendered face box against the
// rectangle it was drawn from.
//
// # Coordinate System
//
// All coordinates use the standard image convention:
//   - Origin (0, 0) at top-left corner
//   - X increases rightward
//   - Y increases downward
//   - Bounding boxes use inclusive top-left and exclusive bottom-right
package detection
