// Package scoring turns boolean risk factors into a safety score, a risk
// classification and a recommended action. Everything here is pure.
package scoring

const baseScore = 100

type Classification string

const (
	Safe    Classification = "safe"
	Warning Classification = "warning"
	Danger  Classification = "danger"
)

type Action string

const (
	Allow Action = "allow"
	Warn  Action = "warn"
	Block Action = "block"
)

// Factors holds one independently computed flag per risk signal.
type Factors struct {
	NoHTTPS            bool `json:"noHttps"`
	YoungDomain        bool `json:"youngDomain"`
	IPObfuscation      bool `json:"ipObfuscation"`
	ListedInFeeds      bool `json:"listedInFeeds"`
	SuspiciousKeywords bool `json:"suspiciousKeywords"`
	ExcessiveRedirects bool `json:"excessiveRedirects"`
}

type Reason struct {
	Code   string `json:"code"`
	Points int    `json:"points"`
}

type Result struct {
	Score          int            `json:"score"`
	Classification Classification `json:"classification"`
	Reasons        []Reason       `json:"reasons"`
}

// Rule is one row of the deduction table.
type Rule struct {
	Code   string
	Points int
	active func(Factors) bool
}

// Evaluation order is fixed; reasons are reported in this order.
var deductions = [...]Rule{
	{"NO_HTTPS", 20, func(f Factors) bool { return f.NoHTTPS }},
	{"YOUNG_DOMAIN", 25, func(f Factors) bool { return f.YoungDomain }},
	{"IP_OBFUSCATION", 40, func(f Factors) bool { return f.IPObfuscation }},
	{"LISTED_IN_FEEDS", 50, func(f Factors) bool { return f.ListedInFeeds }},
	{"SUSPICIOUS_KEYWORDS", 15, func(f Factors) bool { return f.SuspiciousKeywords }},
	{"EXCESSIVE_REDIRECTS", 10, func(f Factors) bool { return f.ExcessiveRedirects }},
}

// Deductions returns a copy of the deduction table in evaluation order.
func Deductions() []Rule {
	out := make([]Rule, len(deductions))
	copy(out, deductions[:])
	return out
}

func (r Rule) Applies(f Factors) bool {
	return r.active(f)
}

// Compute subtracts the points of every triggered factor from 100 and
// clamps the result to [0, 100].
func Compute(f Factors) Result {
	total := 0
	reasons := make([]Reason, 0, len(deductions))

	for _, rule := range deductions {
		if !rule.active(f) {
			continue
		}
		total += rule.Points
		reasons = append(reasons, Reason{Code: rule.Code, Points: rule.Points})
	}

	score := clamp(baseScore-total, 0, baseScore)
	return Result{
		Score:          score,
		Classification: classification(score),
		Reasons:        reasons,
	}
}

func classification(score int) Classification {
	switch {
	case score < 50:
		return Danger
	case score < 80:
		return Warning
	default:
		return Safe
	}
}

// Classify maps a score to an action. Its upper boundary is strict (>80)
// while the classification's is not, so a score of exactly 80 is "warn"
// with a "safe" classification.
func Classify(score int) Action {
	switch {
	case score > 80:
		return Allow
	case score >= 50:
		return Warn
	default:
		return Block
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
