package common

import (
	"github.com/google/uuid"
)

// NewID generates a unique ID with the given prefix.
// Format: <prefix>_<uuid>
func NewID(prefix string) string {
	return prefix + "_" + uuid.New().String()
}

// ID prefixes for persisted records
const (
	PrefixSession      = "ses"
	PrefixIdea         = "idea"
	PrefixConversation = "msg"
	PrefixInsight      = "ins"
	PrefixOption       = "opt"
	PrefixReport       = "rpt"
	PrefixFactCheck    = "fct"
	PrefixMarket       = "mkt"
	PrefixCompetitor   = "cmp"
	PrefixSegment      = "seg"
	PrefixTrend        = "trd"
	PrefixOpportunity  = "opp"
	PrefixStrategy     = "stg"
)
