// Package imaging loads source photos, crops regions out of them and writes
// the annotated results.
//
// Loading applies EXIF orientation. Results are written next to the source
// file as "<name><suffix>.<format>"; whether an existing result is replaced or
// a numbered name is chosen is the Store's collision policy.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based and relative to the
// image origin; for regions, (x1,y1) is inclusive and (x2,y2) exclusive.
package imaging
