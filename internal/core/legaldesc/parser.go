// Package legaldesc turns legal description text into traverse segments and
// parcel polygons.
//
// Only metes and bounds descriptions are resolved to geometry. Section,
// township and range descriptions and lot/block references are recognised
// but need an external corner or plat lookup, so they return a stub result.
package legaldesc

import (
	"strings"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

// Messages returned for description types that are recognised but not resolved.
const (
	MsgSectionTownshipRange = "section-township-range parsing is not implemented: a section corner lookup is required"
	MsgLotBlock             = "lot and block parsing is not implemented: a recorded plat lookup is required"
	MsgUnknownType          = "unable to determine the legal description type"
	MsgEmptyText            = "legal description text is empty"
)

// Parser is the legal description entry point. The zero value is ready to use
// and safe for concurrent calls.
type Parser struct{}

// NewParser creates a Parser.
func NewParser() *Parser { return &Parser{} }

// Parse classifies text and resolves it when it is a metes and bounds
// description. It never fails: problems are reported in ErrorMessage.
func (p *Parser) Parse(text string, ref *domain.Coordinate) domain.ParseResult {
	if strings.TrimSpace(text) == "" {
		return domain.ParseResult{
			DescriptionType: domain.UnknownDescription,
			Confidence:      domain.ConfidenceUnknown,
			Segments:        []domain.Segment{},
			RawText:         text,
			ErrorMessage:    MsgEmptyText,
		}
	}

	switch kind := Classify(text); kind {
	case domain.MetesAndBounds:
		return Traverse(text, ref)
	case domain.SectionTownshipRange:
		return stub(kind, text, ref, MsgSectionTownshipRange)
	case domain.LotBlock:
		return stub(kind, text, ref, MsgLotBlock)
	default:
		return domain.ParseResult{
			DescriptionType: domain.UnknownDescription,
			Confidence:      domain.ConfidenceUnknown,
			Segments:        []domain.Segment{},
			ReferencePoint:  ref,
			RawText:         text,
			ErrorMessage:    MsgUnknownType,
		}
	}
}

func stub(kind domain.DescriptionType, text string, ref *domain.Coordinate, msg string) domain.ParseResult {
	return domain.ParseResult{
		DescriptionType: kind,
		Confidence:      domain.ConfidenceMedium,
		Segments:        []domain.Segment{},
		ReferencePoint:  ref,
		RawText:         text,
		ErrorMessage:    msg,
	}
}

// Classify reports the description type of text without resolving it.
func (p *Parser) Classify(text string) domain.DescriptionType { return Classify(text) }
