// Package imaging holds the pixel-level operations of the region pipeline.
//
// It decodes and encodes image buffers, crops regions of interest for text
// recognition, prepares crops for the recognizer (luminance, automatic
// binarization, sharpening), estimates the background color around a region
// and flattens a region to that color. All operations work with standard Go
// image types and the coordinate system where (0,0) is the top-left corner,
// X increases rightward and Y increases downward.
//
// # Coordinate System
//
// All pixel coordinates in this package are 0-based:
//   - X: horizontal position (0 = leftmost pixel)
//   - Y: vertical position (0 = topmost pixel)
//   - For regions, (XMin,YMin) is inclusive (top-left), (XMax,YMax) is exclusive (bottom-right)
//
// # Buffers
//
// Decode always returns an *image.RGBA whose bounds start at (0,0). The render
// path mutates that buffer in place (Erase, and text drawing in the layout
// package); every other function treats its input as read-only.
//
// # Thread Safety
//
// The ImageCache type is safe for concurrent use. Individual image operations
// are stateless and can be called concurrently on different images. Erase
// writes to its destination and must not run concurrently with readers of the
// same buffer.
//
// # Color Representation
//
// Fill colors are color.RGBA values with A=255. Describe converts them to
// the reporting formats used by the server:
//   - Hex: 6-character format "#RRGGBB"
//   - RGB: 8-bit components (0-255)
//   - HSL: Hue (0-360), Saturation (0-100), Lightness (0-100)
//
// # Error Handling
//
// Functions return errors for invalid inputs such as:
//   - Crop regions with zero or negative area (ErrEmptyRegion)
//   - Undecodable image bytes
//   - File I/O errors during image loading
//   - Encoding errors during image output
package imaging
