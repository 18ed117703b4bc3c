package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"os"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/scan-trad-mcp/internal/dataset"
	"github.com/ironsheep/scan-trad-mcp/internal/detection"
	"github.com/ironsheep/scan-trad-mcp/internal/geometry"
	"github.com/ironsheep/scan-trad-mcp/internal/imaging"
	"github.com/ironsheep/scan-trad-mcp/internal/pipeline"
	"github.com/ironsheep/scan-trad-mcp/internal/translate"
)

// ToolCallParams represents the parameters for a tools/call MCP request.
type ToolCallParams struct {
	// Name is the tool to invoke (e.g., "image_load", "regions_translate").
	Name string `json:"name"`

	// Arguments contains the tool-specific parameters as JSON.
	Arguments json.RawMessage `json:"arguments"`
}

// handleToolsCall processes a tools/call request and executes the specified tool.
//
// The response wraps the tool result in MCP's content format:
//
//	{
//	  "content": [{"type": "text", "text": "<JSON result>"}]
//	}
//
// Tool execution errors return a JSON-RPC error response with code -32000.
func (s *Server) handleToolsCall(ctx context.Context, req *MCPRequest) *MCPResponse {
	var params ToolCallParams
	if err := json.Unmarshal(req.Params, &params); err != nil {
		return s.errorResponse(req.ID, -32602, "Invalid params", err.Error())
	}

	start := time.Now()
	log := s.logger.WithField("tool", params.Name)

	result, err := s.executeTool(ctx, params.Name, params.Arguments)
	if err != nil {
		log.WithError(err).Warn("Tool execution failed")
		return s.errorResponse(req.ID, -32000, "Tool execution failed", err.Error())
	}
	log.WithField("elapsed", time.Since(start).String()).Debug("Tool executed")

	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      req.ID,
		Result: map[string]interface{}{
			"content": []map[string]interface{}{
				{
					"type": "text",
					"text": mustMarshalJSON(result),
				},
			},
		},
	}
}

// executeTool dispatches tool execution to the appropriate handler function.
//
// Each tool handler:
//  1. Unmarshals arguments from JSON
//  2. Applies default values for optional parameters
//  3. Loads images from cache as needed
//  4. Calls the pipeline or the package implementing the operation
//  5. Returns the result or error
func (s *Server) executeTool(ctx context.Context, name string, args json.RawMessage) (interface{}, error) {
	switch name {
	// Basic Image Information
	case "image_load":
		return s.handleImageLoad(args)
	case "image_dimensions":
		return s.handleImageDimensions(args)

	// Region Operations
	case "regions_map":
		return s.handleRegionsMap(ctx, args)
	case "regions_extract_text":
		return s.handleRegionsExtractText(ctx, args)
	case "regions_translate":
		return s.handleRegionsTranslate(ctx, args)
	case "regions_annotate":
		return s.handleRegionsAnnotate(ctx, args)

	// Rendering Helpers
	case "region_background":
		return s.handleRegionBackground(args)
	case "text_layout":
		return s.handleTextLayout(args)

	// Translation and Dataset
	case "languages":
		return translate.Languages(), nil
	case "dataset_export":
		return s.handleDatasetExport(ctx, args)

	default:
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
}

// errorResponse creates a JSON-RPC error response with the given details.
func (s *Server) errorResponse(id interface{}, code int, message, data string) *MCPResponse {
	return &MCPResponse{
		JSONRPC: "2.0",
		ID:      id,
		Error: &MCPError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
}

// mustMarshalJSON converts a value to pretty-printed JSON string.
// Panics are suppressed; on marshal failure, returns an empty string.
func mustMarshalJSON(v interface{}) string {
	b, _ := json.MarshalIndent(v, "", "  ")
	return string(b)
}

// === Basic Image Information Handlers ===

type imageLoadArgs struct {
	Path string `json:"path"`
}

func (s *Server) handleImageLoad(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.LoadImageInfo(s.cache, a.Path)
}

func (s *Server) handleImageDimensions(args json.RawMessage) (interface{}, error) {
	var a imageLoadArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	return imaging.GetDimensions(s.cache, a.Path)
}

// === Region Operation Handlers ===

// boxArg is a detector box in normalized center format.
type boxArg struct {
	ID         string  `json:"id,omitempty"`
	Confidence float64 `json:"confidence,omitempty"`
	CX         float64 `json:"cx"`
	CY         float64 `json:"cy"`
	W          float64 `json:"w"`
	H          float64 `json:"h"`
}

// regionsArgs select the regions of a page. Without boxes the configured
// detector supplies them.
type regionsArgs struct {
	Path      string   `json:"path"`
	Boxes     []boxArg `json:"boxes,omitempty"`
	RefWidth  int      `json:"ref_width,omitempty"`
	RefHeight int      `json:"ref_height,omitempty"`
}

// detections validates the boxes of a and converts them to detections.
func (a regionsArgs) detections() ([]detection.Detection, error) {
	if a.Boxes == nil {
		return nil, nil
	}
	dets := make([]detection.Detection, 0, len(a.Boxes))
	for i, b := range a.Boxes {
		box := geometry.NormalizedBox{CX: b.CX, CY: b.CY, W: b.W, H: b.H}
		if err := box.Validate(); err != nil {
			return nil, fmt.Errorf("box %d: %w", i, err)
		}
		id := b.ID
		if id == "" {
			id = strconv.Itoa(i + 1)
		}
		dets = append(dets, detection.Detection{ID: id, Confidence: b.Confidence, Box: box})
	}
	return dets, nil
}

// regions loads the page of a and maps its boxes onto it.
func (s *Server) regions(ctx context.Context, a regionsArgs) (*image.RGBA, []detection.Detection, []pipeline.TextRegion, error) {
	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, nil, nil, err
	}

	dets, err := a.detections()
	if err != nil {
		return nil, nil, nil, err
	}
	if dets == nil {
		if dets, err = s.pipeline.Detect(ctx, img); err != nil {
			return nil, nil, nil, fmt.Errorf("detect regions: %w", err)
		}
	}

	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	return img, dets, pipeline.MapRegions(dets, a.RefWidth, a.RefHeight, w, h, s.opts.Padding), nil
}

// RegionsMapResult lists the pixel rectangles of a page's regions.
type RegionsMapResult struct {
	Width   int                     `json:"width"`
	Height  int                     `json:"height"`
	Regions []pipeline.RegionReport `json:"regions"`
	Dropped int                     `json:"dropped"`
}

func (s *Server) handleRegionsMap(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a regionsArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	img, dets, regions, err := s.regions(ctx, a)
	if err != nil {
		return nil, err
	}
	return &RegionsMapResult{
		Width:   img.Bounds().Dx(),
		Height:  img.Bounds().Dy(),
		Regions: pipeline.Reports(regions, false),
		Dropped: len(dets) - len(regions),
	}, nil
}

type regionsExtractTextArgs struct {
	regionsArgs
	Preprocess *bool `json:"preprocess,omitempty"`
	Grammar    *bool `json:"grammar,omitempty"`
	SortByTop  *bool `json:"sort_by_top,omitempty"`
	// IncludeCrops returns the image each region was recognized from.
	IncludeCrops bool `json:"include_crops,omitempty"`
}

// ExtractTextResult holds the text found in each region.
type ExtractTextResult struct {
	Regions []pipeline.RegionReport `json:"regions"`
	Stats   pipeline.Stats          `json:"stats"`
	// Crops follow the order of Regions.
	Crops []*imaging.CropResult `json:"crops,omitempty"`
}

func (s *Server) handleRegionsExtractText(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a regionsExtractTextArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	opts := s.opts
	if a.Preprocess != nil {
		opts.Preprocess = *a.Preprocess
	}
	if a.Grammar != nil {
		opts.Grammar = *a.Grammar
	}
	if a.SortByTop != nil {
		opts.SortByTop = *a.SortByTop
	}

	img, dets, regions, err := s.regions(ctx, a.regionsArgs)
	if err != nil {
		return nil, err
	}
	if err := pipeline.New(s.deps, opts).Collect(ctx, img, regions); err != nil {
		return nil, err
	}
	result := &ExtractTextResult{
		Regions: pipeline.Reports(regions, opts.SortByTop),
		Stats:   pipeline.Summarize(len(dets), regions),
	}
	if a.IncludeCrops {
		crops, err := encodeCrops(img, regions, result.Regions, opts.Preprocess)
		if err != nil {
			return nil, err
		}
		result.Crops = crops
	}
	return result, nil
}

// encodeCrops crops the region of every report from img, or from its
// preprocessed form when the recognizer saw that.
func encodeCrops(img image.Image, regions []pipeline.TextRegion, reports []pipeline.RegionReport, preprocessed bool) ([]*imaging.CropResult, error) {
	src := img
	if preprocessed {
		src = imaging.Preprocess(img)
	}
	rects := make(map[int]geometry.PixelRect, len(regions))
	for _, r := range regions {
		rects[r.Index] = r.Rect
	}

	crops := make([]*imaging.CropResult, 0, len(reports))
	for _, report := range reports {
		roi, err := imaging.Crop(src, rects[report.Index])
		if err != nil {
			return nil, err
		}
		crop, err := imaging.EncodeCrop(roi)
		if err != nil {
			return nil, err
		}
		crops = append(crops, crop)
	}
	return crops, nil
}

type regionsTranslateArgs struct {
	regionsArgs
	ImageBase64 string `json:"image_base64,omitempty"`
	Locale      string `json:"locale,omitempty"`
}

// TranslateResult is the translated page and its region reports.
type TranslateResult struct {
	*pipeline.Response
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

func (s *Server) handleRegionsTranslate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a regionsTranslateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}

	var data []byte
	switch {
	case a.ImageBase64 != "":
		decoded, err := base64.StdEncoding.DecodeString(a.ImageBase64)
		if err != nil {
			return nil, fmt.Errorf("invalid image_base64: %w", err)
		}
		data = decoded
	case a.Path != "":
		read, err := os.ReadFile(a.Path)
		if err != nil {
			return nil, fmt.Errorf("failed to read image: %w", err)
		}
		data = read
	default:
		return nil, errors.New("path or image_base64 is required")
	}

	dets, err := a.detections()
	if err != nil {
		return nil, err
	}

	resp, err := s.pipeline.Process(ctx, pipeline.Request{
		Image:      data,
		Detections: dets,
		RefWidth:   a.RefWidth,
		RefHeight:  a.RefHeight,
		Locale:     a.Locale,
	})
	if err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"request_id": resp.RequestID,
		"regions":    len(resp.Regions),
	}).Debug("Page translated")

	return &TranslateResult{
		Response:    resp,
		ImageBase64: base64.StdEncoding.EncodeToString(resp.Image),
		MimeType:    "image/png",
	}, nil
}

type regionsAnnotateArgs struct {
	regionsArgs
	Color string  `json:"color,omitempty"`
	Scale float64 `json:"scale,omitempty"`
}

func (s *Server) handleRegionsAnnotate(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a regionsAnnotateArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.Color == "" {
		a.Color = "#FF0000"
	}
	if a.Scale == 0 {
		a.Scale = 1.0
	}

	img, _, regions, err := s.regions(ctx, a.regionsArgs)
	if err != nil {
		return nil, err
	}
	rects := make([]geometry.PixelRect, len(regions))
	for i, r := range regions {
		rects[i] = r.Rect
	}
	return imaging.Annotate(img, rects, a.Color, a.Scale)
}

// === Rendering Helper Handlers ===

type rectArgs struct {
	X1 int `json:"x1"`
	Y1 int `json:"y1"`
	X2 int `json:"x2"`
	Y2 int `json:"y2"`
}

func (a rectArgs) rect() geometry.PixelRect {
	return geometry.PixelRect{XMin: a.X1, YMin: a.Y1, XMax: a.X2, YMax: a.Y2}
}

type regionBackgroundArgs struct {
	Path string `json:"path"`
	rectArgs
	RingWidth int `json:"ring_width,omitempty"`
}

func (s *Server) handleRegionBackground(args json.RawMessage) (interface{}, error) {
	var a regionBackgroundArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.RingWidth == 0 {
		a.RingWidth = s.opts.RingWidth
	}
	r := a.rect()
	if r.Empty() {
		return nil, fmt.Errorf("region %v: %w", r, imaging.ErrEmptyRegion)
	}

	img, err := s.cache.Load(a.Path)
	if err != nil {
		return nil, err
	}
	return imaging.DescribeBackground(imaging.SampleBorder(img, r, a.RingWidth)), nil
}

type textLayoutArgs struct {
	Text string `json:"text"`
	rectArgs
}

func (s *Server) handleTextLayout(args json.RawMessage) (interface{}, error) {
	var a textLayoutArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	r := a.rect()
	if r.Empty() {
		return nil, fmt.Errorf("region %v: %w", r, imaging.ErrEmptyRegion)
	}
	return s.pipeline.Engine().Plan(a.Text, r), nil
}

// === Dataset Handlers ===

type datasetExportArgs struct {
	ImagesDir  string `json:"images_dir"`
	LabelsDir  string `json:"labels_dir"`
	OutputPath string `json:"output_path"`
	Language   string `json:"language,omitempty"`
}

// DatasetExportResult reports a dataset export run.
type DatasetExportResult struct {
	*dataset.Summary
	OutputPath string `json:"output_path"`
}

func (s *Server) handleDatasetExport(ctx context.Context, args json.RawMessage) (interface{}, error) {
	var a datasetExportArgs
	if err := json.Unmarshal(args, &a); err != nil {
		return nil, err
	}
	if a.ImagesDir == "" || a.LabelsDir == "" || a.OutputPath == "" {
		return nil, errors.New("images_dir, labels_dir and output_path are required")
	}

	f, err := os.OpenFile(a.OutputPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open output: %w", err)
	}
	defer f.Close()

	builder := dataset.NewBuilder(s.deps, s.opts, dataset.NewExporter(f, a.Language))
	summary, err := builder.ExportDir(ctx, a.ImagesDir, a.LabelsDir)
	if err != nil {
		return nil, err
	}
	return &DatasetExportResult{Summary: summary, OutputPath: a.OutputPath}, nil
}
