package constraint

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agenthands/forcematch/internal/core/model"
)

// maxEraGap is the birth-year difference, in years, above which two
// characters are considered to be from different eras.
const maxEraGap = 60.0

// HomeworldDiversity notes pairs from the same homeworld.
type HomeworldDiversity struct{}

func (HomeworldDiversity) Name() string { return NameHomeworldDiversity }

func (c HomeworldDiversity) Validate(giver, receiver model.Character, _ model.Dataset) []Violation {
	if giver.Homeworld == "" || receiver.Homeworld == "" || giver.Homeworld != receiver.Homeworld {
		return nil
	}
	return []Violation{{
		ConstraintName: c.Name(),
		Description:    fmt.Sprintf("Both characters are from %s", giver.Homeworld),
		Severity:       SeverityInfo,
	}}
}

// DirectContactAvoidance warns when the giver's traits or motivations mention
// the receiver by name, one violation per mentioning fragment.
type DirectContactAvoidance struct{}

func (DirectContactAvoidance) Name() string { return NameDirectContactAvoidance }

func (c DirectContactAvoidance) Validate(giver, receiver model.Character, _ model.Dataset) []Violation {
	name := strings.ToLower(receiver.DisplayName())
	if giver.Semantics == nil || name == "" {
		return nil
	}

	fragments := append(append([]string(nil), giver.Semantics.Traits...), giver.Semantics.Motivations...)
	var violations []Violation
	for _, fragment := range fragments {
		if !strings.Contains(strings.ToLower(fragment), name) {
			continue
		}
		violations = append(violations, Violation{
			ConstraintName: c.Name(),
			Description:    fmt.Sprintf("Giver's profile mentions receiver: %q", fragment),
			Severity:       SeverityWarning,
		})
	}
	return violations
}

// TimelineEra notes pairs born more than sixty years apart. Pairs with a
// missing or unreadable birth year are skipped.
type TimelineEra struct{}

func (TimelineEra) Name() string { return NameTimelineEra }

func (c TimelineEra) Validate(giver, receiver model.Character, _ model.Dataset) []Violation {
	a, ok := ParseBirthYear(giver.BirthYear)
	if !ok {
		return nil
	}
	b, ok := ParseBirthYear(receiver.BirthYear)
	if !ok {
		return nil
	}
	gap := math.Abs(a - b)
	if gap <= maxEraGap {
		return nil
	}
	return []Violation{{
		ConstraintName: c.Name(),
		Description:    fmt.Sprintf("Born %g years apart (%s vs %s)", gap, giver.BirthYear, receiver.BirthYear),
		Severity:       SeverityInfo,
	}}
}

// ParseBirthYear reads an era-suffixed year: "19BBY" is -19, "5ABY" is 5 and a
// bare number is taken as is. A signed year with an era suffix, like
// "-19BBY", is ambiguous and reported as unknown.
func ParseBirthYear(s string) (float64, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return 0, false
	}

	sign := 1.0
	era := true
	switch {
	case strings.HasSuffix(s, "BBY"):
		sign = -1
		s = strings.TrimSuffix(s, "BBY")
	case strings.HasSuffix(s, "ABY"):
		s = strings.TrimSuffix(s, "ABY")
	default:
		era = false
	}

	s = strings.TrimSpace(s)
	if era && s != "" && (s[0] == '-' || s[0] == '+') {
		return 0, false
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return sign * v, true
}
