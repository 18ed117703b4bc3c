// Package detection supplies the speech-bubble boxes processed by the pipeline.
//
// Finding bubbles is the job of an external object detector; this package
// only defines how its output reaches the pipeline. A Provider returns an
// ordered list of Detections, each holding a normalized center-format box
// relative to the image it was run on.
//
// # Providers
//
//   - Static: a fixed list, for callers that already hold detector output
//   - LabelFile: a YOLO label file on disk, one "class cx cy w h" line per box
//   - Demo: four boxes laid out relative to the page size, for trying the
//     service without a detector
//
// # Label Format
//
// ParseYOLOLabels reads the plain text format written by YOLO training
// tools. Lines that do not have exactly five fields are skipped; a line with
// five fields that are not numbers fails with ErrMalformedLabel. The class
// index is kept on the Detection but the pipeline does not use it.
package detection
