package telemetry

// Span names used for instrumentation.
const (
	SpanParse          = "legal.parse"
	SpanClassify       = "legal.classify"
	SpanAnalysis       = "geometry.run"
	SpanHandleParse    = "events.handle_parse"
	SpanHandleAnalysis = "events.handle_analysis"
)

// Span attribute keys.
const (
	AttrDescriptionType = "legal.description_type"
	AttrConfidence      = "legal.confidence"
	AttrSegments        = "legal.segments"
	AttrOperation       = "geometry.operation"
	AttrFeatureCount    = "geometry.feature_count"
	AttrRequestID       = "request.id"
)
