package whloader

import (
	"fmt"
	"strings"
)

// CollisionPolicy decides what NormalizeColumns does when two columns normalize
// to the same identifier.
type CollisionPolicy int

const (
	// CollisionReject fails with *CollisionError before any DDL is generated.
	CollisionReject CollisionPolicy = iota

	// CollisionSuffix keeps the first occurrence and renames later ones to
	// NAME_2, NAME_3 and so on.
	CollisionSuffix
)

// ParseCollisionPolicy parses "reject" or "suffix".
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "reject":
		return CollisionReject, nil
	case "suffix":
		return CollisionSuffix, nil
	}

	return CollisionReject, fmt.Errorf("unknown collision policy %q", s)
}

func (p CollisionPolicy) String() string {
	if p == CollisionSuffix {
		return "suffix"
	}
	return "reject"
}

// CollisionError reports original column names which normalize to the same identifier.
type CollisionError struct {
	Identifier string
	Originals  []string
}

func (e *CollisionError) Error() string {
	return fmt.Sprintf("columns %q normalize to the same identifier %s", e.Originals, e.Identifier)
}

var identifierReplacer = strings.NewReplacer(" ", "_", "-", "_", ".", "_")

// NormalizeIdentifier turns a column name into an unquoted warehouse identifier.
// Surrounding whitespace is trimmed, spaces, hyphens and periods become underscores
// and the result is upper-cased. Other characters are passed through unchanged.
func NormalizeIdentifier(name string) string {
	return strings.ToUpper(identifierReplacer.Replace(strings.TrimSpace(name)))
}

// NormalizeColumns normalizes every column and applies the collision policy.
func NormalizeColumns(columns []string, policy CollisionPolicy) ([]string, error) {
	normalized := make([]string, len(columns))
	firstSeen := make(map[string]int, len(columns))
	taken := make(map[string]bool, len(columns))

	for i, c := range columns {
		normalized[i] = NormalizeIdentifier(c)
		taken[normalized[i]] = true
	}

	for i, c := range columns {
		id := NormalizeIdentifier(c)

		first, dup := firstSeen[id]
		if !dup {
			firstSeen[id] = i
			continue
		}

		if policy == CollisionReject {
			return nil, &CollisionError{Identifier: id, Originals: []string{columns[first], c}}
		}

		for n := 2; ; n++ {
			candidate := fmt.Sprintf("%s_%d", id, n)
			if !taken[candidate] {
				normalized[i] = candidate
				taken[candidate] = true
				break
			}
		}
	}

	return normalized, nil
}
