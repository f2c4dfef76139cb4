package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawInput is an unvalidated create or update payload. It never reaches a store.
type RawInput struct {
	FamilyHeadName             string `json:"family_head_name"`
	NumberOfDependents         Count  `json:"number_of_dependents"`
	NumberOfEducatedMembers    Count  `json:"number_of_educated_members"`
	NumberOfNonEducatedMembers Count  `json:"number_of_non_educated_members"`
	IdentityProofType          string `json:"identity_proof_type"`
	IdentityNumber             string `json:"identity_number"`
	Territory                  string `json:"territory"`
}

// ValidatedRecord carries normalized household fields that passed every rule.
type ValidatedRecord struct {
	FamilyHeadName             string
	NumberOfDependents         int
	NumberOfEducatedMembers    int
	NumberOfNonEducatedMembers int
	IdentityProofType          IdentityProofType
	IdentityNumber             string
	Territory                  Territory
}

// Key returns the identity pair of the validated values.
func (v *ValidatedRecord) Key() IdentityKey {
	return IdentityKey{ProofType: v.IdentityProofType, Number: v.IdentityNumber}
}

// Count is a member count as submitted: a JSON number or numeric text.
// Blank input counts as zero, matching how the entry forms default empty counts.
type Count struct {
	text string
}

// CountOf wraps an integer.
func CountOf(n int) Count { return Count{text: strconv.Itoa(n)} }

// CountText wraps raw text, e.g. a CSV cell or form value.
func CountText(s string) Count { return Count{text: s} }

// Int coerces the count to an integer. Fractions, NaN and non-numeric text fail.
func (c Count) Int() (int, error) {
	s := strings.TrimSpace(c.text)
	if s == "" {
		return 0, nil
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return c.bounded(n)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, fmt.Errorf("%q is not a whole number", c.text)
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0, c.outOfRange()
	}
	return int(f), nil
}

// bounded keeps counts inside the INTEGER column range.
func (c Count) bounded(n int64) (int, error) {
	if n > math.MaxInt32 || n < math.MinInt32 {
		return 0, c.outOfRange()
	}
	return int(n), nil
}

func (c Count) outOfRange() error {
	return fmt.Errorf("%q is out of range", c.text)
}

func (c Count) String() string { return c.text }

// UnmarshalJSON accepts numbers, strings and null. Other JSON values are kept
// verbatim so Int reports them as invalid instead of failing the whole decode.
func (c *Count) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		c.text = ""
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		c.text = s
	default:
		c.text = string(b)
	}
	return nil
}

// MarshalJSON writes a number when the count is numeric and a string otherwise.
func (c Count) MarshalJSON() ([]byte, error) {
	if n, err := c.Int(); err == nil {
		return []byte(strconv.Itoa(n)), nil
	}
	return json.Marshal(c.text)
}
