package types

/*
Severity Interpretation

Severity is derived from the tolerance ratio of a deviation (|diff| / tolerance).

| Ratio       | Severity | Weight | Meaning                                  |
|-------------|----------|--------|------------------------------------------|
| <= 1.0      | ok       | 0      | Inside the reference window. No action.  |
| (1.0, 2.0]  | watch    | 1.0    | Slightly off. Worth a listen.            |
| (2.0, 3.0]  | adjust   | 1.5    | Clearly off. Should be corrected.        |
| > 3.0       | fix      | 2.0    | Far off target. Fix before anything else.|

The weight is only used to rank suggestions; it is not a quality score.
*/

// Severity grades how far a metric sits from its reference window.
type Severity int

const (
	SeverityOk Severity = iota
	SeverityWatch
	SeverityAdjust
	SeverityFix
)

func (s Severity) String() string {
	switch s {
	case SeverityOk:
		return "ok"
	case SeverityWatch:
		return "watch"
	case SeverityAdjust:
		return "adjust"
	case SeverityFix:
		return "fix"
	}

	return "unknown"
}

// Weight returns the ranking weight of the severity.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityWatch:
		return 1.0
	case SeverityAdjust:
		return 1.5
	case SeverityFix:
		return 2.0
	default:
		return 0
	}
}
