// Package render draws resolved layout plans onto images.
//
// Every drawing function copies its input before drawing and returns the
// copy; source images are never modified. Rectangular elements (outlines,
// ticks, bars, label backgrounds) are filled on whole pixels with the exact
// palette colour so that outlines can be recovered from a rendered image.
// Connector lines and text are antialiased.
package render
