package domain

import (
	"encoding/json"
	"time"
)

// Operation names one entry of the geometric operation catalog.
type Operation string

const (
	OpBuffer       Operation = "buffer"
	OpIntersection Operation = "intersection"
	OpUnion        Operation = "union"
	OpDifference   Operation = "difference"
	OpArea         Operation = "area"
	OpCentroid     Operation = "centroid"
	OpDistance     Operation = "distance"
	OpSimplify     Operation = "simplify"
	OpMerge        Operation = "merge"
	OpSplit        Operation = "split"
)

// Operations lists the catalog in display order.
var Operations = []Operation{
	OpBuffer, OpIntersection, OpUnion, OpDifference, OpArea,
	OpCentroid, OpDistance, OpSimplify, OpMerge, OpSplit,
}

// OperationInfo describes one catalog entry.
type OperationInfo struct {
	Name        Operation `json:"name"`
	Title       string    `json:"title"`
	MinFeatures int       `json:"minFeatures"`
}

// OperationParams configures an operation. Absent keys take the defaults
// documented on the Default* constants.
type OperationParams struct {
	BufferDistance     *float64   `json:"bufferDistance,omitempty"`
	BufferUnit         LengthUnit `json:"bufferUnit,omitempty"`
	ToleranceDistance  *float64   `json:"toleranceDistance,omitempty"`
	PreserveProperties *bool      `json:"preserveProperties,omitempty"`
	AreaUnit           string     `json:"areaUnit,omitempty"`
}

const (
	DefaultBufferDistance    = 100.0
	DefaultBufferUnit        = Feet
	DefaultToleranceDistance = 0.01
	DefaultAreaUnit          = "acres"
)

// AnalysisMetadata carries numeric side results of an operation.
type AnalysisMetadata struct {
	Area            *float64 `json:"area,omitempty"`
	Distance        *float64 `json:"distance,omitempty"`
	Unit            string   `json:"unit,omitempty"`
	UnitLabel       string   `json:"unitLabel,omitempty"`
	FeatureCount    *int     `json:"featureCount,omitempty"`
	ParcelsAffected *int     `json:"parcelsAffected,omitempty"`
	OriginalArea    *float64 `json:"originalArea,omitempty"`
	MergedArea      *float64 `json:"mergedArea,omitempty"`
}

// AnalysisResult is the outcome of one geometric operation. Result holds a
// Feature, FeatureCollection, number or nil.
type AnalysisResult struct {
	Operation Operation         `json:"operation"`
	Result    any               `json:"result"`
	Metadata  *AnalysisMetadata `json:"metadata,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// Failed reports whether the operation produced an error.
func (r AnalysisResult) Failed() bool { return r.Error != "" }

// AnalysisRequest asks for an operation to run asynchronously.
type AnalysisRequest struct {
	RequestID string          `json:"requestId"`
	Operation Operation       `json:"operation"`
	Features  json.RawMessage `json:"features"`
	Params    OperationParams `json:"params"`
}

// AnalysisEvent announces a finished operation.
type AnalysisEvent struct {
	RequestID string         `json:"requestId"`
	Result    AnalysisResult `json:"result"`
	At        time.Time      `json:"at"`
}

// Float returns a pointer to v, for optional metadata fields.
func Float(v float64) *float64 { return &v }

// Int returns a pointer to v.
func Int(v int) *int { return &v }

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }
