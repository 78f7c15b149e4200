// Package ocr reads rendered HUD labels back with Tesseract.
//
// It is the legibility check for annotated images: each planned label
// rectangle is cropped from the result, upscaled and passed to Tesseract as
// a single text line, and the recognised text is compared with the text
// that was drawn there.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// A non-standard data directory can be given with Config.TessdataPrefix.
//
// Tesseract clients are not safe for concurrent use, so a Reader creates one
// client per ReadRegions call and reuses it for every label of that image.
package ocr
