package analysis

import (
	"math"
	"path"
	"strings"
)

// Severity classifies the blast radius of a change at a given node.
type Severity string

// Severity tiers, most severe first.
const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
	SeverityNone     Severity = "none"
)

// coreBaseNames are file base names (extension stripped) treated as
// architectural entry points.
var coreBaseNames = map[string]bool{
	"index": true,
	"main":  true,
	"app":   true,
}

// IsCoreModule reports whether a file path names an architectural entry
// point: its base name (without extension) is index, main, or app, or the
// path contains a /core/ segment.
func IsCoreModule(filePath string) bool {
	base := path.Base(filePath)
	base = strings.TrimSuffix(base, path.Ext(base))
	if coreBaseNames[base] {
		return true
	}
	for _, seg := range strings.Split(filePath, "/") {
		if seg == "core" {
			return true
		}
	}
	return false
}

// ImpactSeverity classifies an impact score observed at a ripple depth.
// Severity decreases monotonically with depth and increases monotonically
// with score; core-module membership promotes the result one tier.
//
// The rule is an effective score score/sqrt(depth) banded into tiers. The
// square-root decay keeps low scores meaningful a few hops out, which the
// calibration points require (a plain score/depth decay would demote
// (10, 3) below medium). Critical is reached only through core promotion.
func ImpactSeverity(score float64, depth int, isCore bool) Severity {
	if depth < 1 {
		depth = 1
	}
	effective := score / math.Sqrt(float64(depth))

	var sev Severity
	switch {
	case effective >= 35:
		sev = SeverityHigh
	case effective >= 5:
		sev = SeverityMedium
	case effective > 0:
		sev = SeverityLow
	default:
		sev = SeverityNone
	}

	if isCore {
		sev = promote(sev)
	}
	return sev
}

// promote shifts a severity one tier toward critical. None is never
// promoted: a zero-impact node stays zero-impact regardless of location.
func promote(s Severity) Severity {
	switch s {
	case SeverityHigh:
		return SeverityCritical
	case SeverityMedium:
		return SeverityHigh
	case SeverityLow:
		return SeverityMedium
	default:
		return s
	}
}
