package model

import "fmt"

// Severity classifies how strongly an issue affects search visibility.
type Severity int

const (
	// SeverityOptimization marks a nice-to-have improvement.
	SeverityOptimization Severity = iota

	// SeverityWarning marks something suboptimal but functional.
	SeverityWarning

	// SeverityCritical marks a problem that blocks ranking or indexing.
	SeverityCritical
)

var severityNames = []string{"optimization", "warning", "critical"}

// String returns the wire name of the severity.
func (s Severity) String() string {
	return enumName(severityNames, int(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s Severity) MarshalText() ([]byte, error) {
	return marshalEnum("severity", severityNames, int(s))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Severity) UnmarshalText(text []byte) error {
	v, err := parseEnum("severity", severityNames, string(text))
	if err != nil {
		return err
	}
	*s = Severity(v)
	return nil
}

// Impact estimates how much fixing an issue improves the page.
type Impact int

const (
	// ImpactLow means a marginal gain.
	ImpactLow Impact = iota
	// ImpactMedium means a noticeable gain.
	ImpactMedium
	// ImpactHigh means a significant gain.
	ImpactHigh
)

var impactNames = []string{"low", "medium", "high"}

// String returns the wire name of the impact.
func (i Impact) String() string {
	return enumName(impactNames, int(i))
}

// MarshalText implements encoding.TextMarshaler.
func (i Impact) MarshalText() ([]byte, error) {
	return marshalEnum("impact", impactNames, int(i))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (i *Impact) UnmarshalText(text []byte) error {
	v, err := parseEnum("impact", impactNames, string(text))
	if err != nil {
		return err
	}
	*i = Impact(v)
	return nil
}

// Priority orders action plan items.
type Priority int

const (
	// PriorityLow is for long-term improvements.
	PriorityLow Priority = iota
	// PriorityMedium is for fixes due within a couple of weeks.
	PriorityMedium
	// PriorityHigh is for fixes that should happen immediately.
	PriorityHigh
)

var priorityNames = []string{"low", "medium", "high"}

// String returns the wire name of the priority.
func (p Priority) String() string {
	return enumName(priorityNames, int(p))
}

// MarshalText implements encoding.TextMarshaler.
func (p Priority) MarshalText() ([]byte, error) {
	return marshalEnum("priority", priorityNames, int(p))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Priority) UnmarshalText(text []byte) error {
	v, err := parseEnum("priority", priorityNames, string(text))
	if err != nil {
		return err
	}
	*p = Priority(v)
	return nil
}

// Difficulty estimates the effort an action plan item takes.
type Difficulty int

const (
	// DifficultyEasy is a quick change.
	DifficultyEasy Difficulty = iota
	// DifficultyMedium needs some theme or content work.
	DifficultyMedium
	// DifficultyHard needs development work.
	DifficultyHard
)

var difficultyNames = []string{"easy", "medium", "hard"}

// String returns the wire name of the difficulty.
func (d Difficulty) String() string {
	return enumName(difficultyNames, int(d))
}

// MarshalText implements encoding.TextMarshaler.
func (d Difficulty) MarshalText() ([]byte, error) {
	return marshalEnum("difficulty", difficultyNames, int(d))
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Difficulty) UnmarshalText(text []byte) error {
	v, err := parseEnum("difficulty", difficultyNames, string(text))
	if err != nil {
		return err
	}
	*d = Difficulty(v)
	return nil
}

// Category groups rules by the page aspect they inspect.
type Category string

// Rule categories, in evaluation order.
const (
	CategoryMetaTags       Category = "Meta Tags"
	CategoryStructure      Category = "Structure"
	CategoryImages         Category = "Images"
	CategoryLinks          Category = "Links"
	CategoryPerformance    Category = "Performance"
	CategoryPlatform       Category = "Platform"
	CategoryStructuredData Category = "Structured Data"
	CategorySocial         Category = "Social"
)

// Categories returns every category in evaluation order.
func Categories() []Category {
	return []Category{
		CategoryMetaTags,
		CategoryStructure,
		CategoryImages,
		CategoryLinks,
		CategoryPerformance,
		CategoryPlatform,
		CategoryStructuredData,
		CategorySocial,
	}
}

func enumName(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return "unknown"
	}
	return names[v]
}

func marshalEnum(kind string, names []string, v int) ([]byte, error) {
	if v < 0 || v >= len(names) {
		return nil, fmt.Errorf("invalid %s value %d", kind, v)
	}
	return []byte(names[v]), nil
}

func parseEnum(kind string, names []string, s string) (int, error) {
	for i, name := range names {
		if name == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid %s %q", kind, s)
}
