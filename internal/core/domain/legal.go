package domain

import "time"

// DescriptionType is the kind of legal description a text was classified as.
type DescriptionType string

const (
	MetesAndBounds       DescriptionType = "METES_AND_BOUNDS"
	SectionTownshipRange DescriptionType = "SECTION_TOWNSHIP_RANGE"
	LotBlock             DescriptionType = "LOT_BLOCK"
	UnknownDescription   DescriptionType = "UNKNOWN"
)

// Confidence grades how much of a description could be resolved.
type Confidence string

const (
	ConfidenceHigh    Confidence = "high"
	ConfidenceMedium  Confidence = "medium"
	ConfidenceLow     Confidence = "low"
	ConfidenceUnknown Confidence = "unknown"
)

// Rank orders confidence tiers: unknown < low < medium < high.
func (c Confidence) Rank() int {
	switch c {
	case ConfidenceHigh:
		return 3
	case ConfidenceMedium:
		return 2
	case ConfidenceLow:
		return 1
	default:
		return 0
	}
}

// LengthUnit names a unit of length.
type LengthUnit string

const (
	Feet       LengthUnit = "feet"
	Meters     LengthUnit = "meters"
	Yards      LengthUnit = "yards"
	Miles      LengthUnit = "miles"
	Kilometers LengthUnit = "kilometers"
)

// Bearing is an absolute compass direction (0 = North, clockwise). Minutes
// and Seconds keep the components read from the source call; Degrees is
// already resolved from them.
type Bearing struct {
	Degrees float64 `json:"degrees"`
	Minutes int     `json:"minutes"`
	Seconds int     `json:"seconds"`
}

// Distance is a segment length in feet or meters.
type Distance struct {
	Magnitude float64    `json:"magnitude"`
	Unit      LengthUnit `json:"unit"`
}

// Segment is one resolved call of a traverse.
type Segment struct {
	StartPoint Coordinate `json:"startPoint"`
	EndPoint   Coordinate `json:"endPoint"`
	Bearing    Bearing    `json:"bearing"`
	Distance   Distance   `json:"distance"`
	Clause     string     `json:"clause,omitempty"`
}

// SkippedClause records a call that lacked a usable bearing or distance.
type SkippedClause struct {
	Index  int    `json:"index"`
	Text   string `json:"text"`
	Reason string `json:"reason"`
}

// ParseResult is the outcome of parsing one legal description.
type ParseResult struct {
	DescriptionType DescriptionType `json:"descriptionType"`
	Confidence      Confidence      `json:"confidence"`
	PolygonFeature  *Feature        `json:"polygonFeature,omitempty"`
	Segments        []Segment       `json:"segments"`
	ReferencePoint  *Coordinate     `json:"referencePoint,omitempty"`
	RawText         string          `json:"rawText"`
	ErrorMessage    string          `json:"errorMessage,omitempty"`
	SkippedClauses  []SkippedClause `json:"skippedClauses,omitempty"`
}

// ParseRequest asks for a description to be parsed asynchronously.
type ParseRequest struct {
	RequestID      string      `json:"requestId"`
	Text           string      `json:"text"`
	ReferencePoint *Coordinate `json:"referencePoint,omitempty"`
}

// ParseEvent announces a finished parse.
type ParseEvent struct {
	RequestID string      `json:"requestId"`
	Result    ParseResult `json:"result"`
	At        time.Time   `json:"at"`
}
