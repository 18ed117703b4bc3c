// Package geometry maps detector output onto image pixels.
//
// Detectors report boxes in a normalized center format: center-x, center-y,
// width and height, each a fraction of a reference image's dimensions. The
// functions in this package turn those boxes into integer pixel rectangles,
// carry rectangles across images of different resolution, grow them by a
// padding fraction and clamp them to image bounds.
//
// # Coordinate System
//
// Pixel rectangles follow the image package convention:
//   - (XMin, YMin) is the top-left corner (inclusive)
//   - (XMax, YMax) is the bottom-right corner (exclusive)
//   - Width = XMax - XMin, Height = YMax - YMin
//
// # Truncation
//
// Every float-to-int conversion truncates toward zero rather than rounding.
// Results computed on one machine are reproduced bit-for-bit elsewhere, and a
// normalized box rebuilt from its pixel rectangle differs from the original by
// less than one pixel per coordinate.
//
// # Padding
//
// ApplyPadding grows a rectangle by floor(size*fraction) on the min side and
// twice that on the max side. The asymmetry is the documented behavior of the
// recognition pipeline this package serves and is kept as is.
package geometry
