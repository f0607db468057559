package legaldesc

import (
	"regexp"

	"github.com/bsvalues/TerraFusionMono-sub005/internal/core/domain"
)

// rule is one classifier entry: every group must have at least one match.
type rule struct {
	kind   domain.DescriptionType
	groups [][]*regexp.Regexp
}

// Evaluated in order; the first satisfied rule wins.
var rules = []rule{
	{
		kind: domain.MetesAndBounds,
		groups: [][]*regexp.Regexp{
			{regexp.MustCompile(`(?i)\b(?:point of beginning|beginning|commencing|p\.?o\.?b\.?)\b`)},
			{quadrantRe, regexp.MustCompile(`(?i)\b(?:north|south|east|west)(?:erly)?\b`)},
			{distanceRe},
		},
	},
	{
		kind: domain.SectionTownshipRange,
		groups: [][]*regexp.Regexp{
			{regexp.MustCompile(`(?i)\b(?:section|sec\.?)\s*\d+`)},
			{regexp.MustCompile(`(?i)\b(?:township|twp\.?|t)\s*\d+\s*(?:n|s|north|south)\b`)},
			{regexp.MustCompile(`(?i)\b(?:range|rng\.?|r)\s*\d+\s*(?:e|w|east|west)\b`)},
			{regexp.MustCompile(`(?i)\b(?:quarter|(?:ne|nw|se|sw)\s*(?:1/4|¼)|(?:ne|nw|se|sw)\b)`)},
		},
	},
	{
		kind: domain.LotBlock,
		groups: [][]*regexp.Regexp{
			{regexp.MustCompile(`(?i)\blot\s+\d+`)},
			{regexp.MustCompile(`(?i)\bblock\s+\d+`)},
			{regexp.MustCompile(`(?i)\b(?:plat|subdivision|addition|recorded)\b`)},
		},
	},
}

// Classify assigns a description type using keyword heuristics.
func Classify(text string) domain.DescriptionType {
	for _, r := range rules {
		if r.matches(text) {
			return r.kind
		}
	}
	return domain.UnknownDescription
}

func (r rule) matches(text string) bool {
	for _, group := range r.groups {
		hit := false
		for _, re := range group {
			if re.MatchString(text) {
				hit = true
				break
			}
		}
		if !hit {
			return false
		}
	}
	return true
}
