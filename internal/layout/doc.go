// Package layout fits translated text into a pixel rectangle and draws it.
//
// A layout is computed in two steps. FitFontSize walks candidate sizes from
// the largest the box allows down to MinFontSize in steps of two, measuring the
// whole text on a single line, and keeps the first size whose extent fits in
// 95% of the box width and 90% of its height. When no size fits, the
// FontSet's fallback face is used and the text may overflow the box.
// Wrap then breaks the text greedily at whitespace and Place centers the
// resulting lines, clamping each one inside the box when the box can hold it.
//
// # Fonts
//
// A FontSet is an ordered list of face sources. For every size, the first
// source that can produce a face wins; a size no source can serve is skipped.
// LoadFontSet builds the usual chain: a TrueType file named in the
// configuration, then the embedded Go Regular font.
//
// TrueType faces cache glyphs and are not safe for concurrent use, so a new
// face is created for every Plan. The parsed fonts themselves are shared.
package layout
