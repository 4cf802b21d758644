package core

import (
	"fmt"
	"strings"
)

// Area is a governance domain classifying a clause's subject.
// The set of areas is closed; values outside Areas are rejected.
type Area string

const (
	AreaHR                Area = "hr"
	AreaSecurity          Area = "security"
	AreaPrivacy           Area = "privacy"
	AreaCompliance        Area = "compliance"
	AreaOperations        Area = "operations"
	AreaFinance           Area = "finance"
	AreaLegal             Area = "legal"
	AreaRiskManagement    Area = "risk_management"
	AreaIT                Area = "it"
	AreaProcurement       Area = "procurement"
	AreaHealthSafety      Area = "health_safety"
	AreaEthics            Area = "ethics"
	AreaTraining          Area = "training"
	AreaCustomerRelations Area = "customer_relations"
)

// Areas lists every valid governance area in a stable order.
var Areas = []Area{
	AreaHR,
	AreaSecurity,
	AreaPrivacy,
	AreaCompliance,
	AreaOperations,
	AreaFinance,
	AreaLegal,
	AreaRiskManagement,
	AreaIT,
	AreaProcurement,
	AreaHealthSafety,
	AreaEthics,
	AreaTraining,
	AreaCustomerRelations,
}

// Valid reports whether a is a member of Areas.
func (a Area) Valid() bool {
	for _, known := range Areas {
		if a == known {
			return true
		}
	}
	return false
}

// ParseArea normalizes s (case, surrounding space, inner spaces and dashes
// become underscores) and returns the matching Area.
func ParseArea(s string) (Area, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "_", "-", "_").Replace(norm)
	a := Area(norm)
	if !a.Valid() {
		return "", fmt.Errorf("%w: unknown area %q", ErrInvalidClause, s)
	}
	return a, nil
}

// AreaNames returns the string form of the given areas.
func AreaNames(areas []Area) []string {
	names := make([]string, len(areas))
	for i, a := range areas {
		names[i] = string(a)
	}
	return names
}
