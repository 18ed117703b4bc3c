// Package ocr recognizes the text inside speech-bubble regions.
//
// Recognition is pluggable through the Recognizer interface. The production
// implementation, Tesseract, wraps a single gosseract client that is created
// once, shared by every region and released with Close.
//
// # Prerequisites
//
// Tesseract must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//   - Other languages: tesseract-ocr-<lang> packages
//
// # Hints
//
// Every call carries a language hint ("eng", "fra", "eng+jpn") and a page
// segmentation mode. Comic bubbles are read as a single uniform block of text,
// which is mode 6 (DefaultPageSegMode).
//
// # Cleaning
//
// Recognized text goes through Clean before it is used: code points outside
// ASCII are dropped and surrounding whitespace, including the form feed
// Tesseract appends, is trimmed.
package ocr
