// Package pipeline runs the region stages over a page.
//
// A request carries an encoded page, detector boxes in normalized
// center format and a target locale. The pipeline:
//
//  1. maps each box to a pixel rectangle on the page (MapRegions), rescaling
//     when the boxes were measured on a differently sized copy and growing
//     them by the configured padding; rectangles without area are dropped
//  2. collects text: crops each rectangle (from the preprocessed page when
//     enabled), recognizes it, strips non-ASCII characters and optionally
//     corrects the grammar
//  3. translates the text of each region
//  4. renders: erases each rectangle with a translation to the color of the
//     ring around it and draws the translation fitted into it; rectangles
//     left without text keep their pixels
//
// Regions are handled in input order. When rectangles overlap, the later
// region overwrites the earlier one. Reports may be reordered top to bottom
// afterwards without affecting the image.
//
// # Errors
//
// Failures are classified by Kind. A page that cannot be decoded fails the
// request with KindDecode. A region whose crop, recognition or translation
// fails is marked KindRegion and keeps its original pixels; its siblings are
// unaffected. A region drawn with the fallback font because no size fit is
// marked KindFallback.
package pipeline
