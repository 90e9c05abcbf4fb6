package password

import (
	"strings"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

const (
	DefaultCost = 12

	minLength    = 8
	specialClass = "!@#$%^&*()-_=+[]{};:,.<>?/|~"
)

type Rule string

const (
	RuleMinLength Rule = "min_length"
	RuleUppercase Rule = "uppercase"
	RuleLowercase Rule = "lowercase"
	RuleDigit     Rule = "digit"
	RuleSpecial   Rule = "special"
)

// RuleResult reports a single complexity rule and whether the candidate
// password satisfied it.
type RuleResult struct {
	Rule      Rule   `json:"rule"`
	Satisfied bool   `json:"satisfied"`
	Message   string `json:"message"`
}

// ValidateComplexity evaluates every rule independently and returns the
// full report, so callers can tell the user exactly what is missing.
func ValidateComplexity(plain string) []RuleResult {
	var hasUpper, hasLower, hasDigit, hasSpecial bool
	length := 0
	for _, r := range plain {
		length++
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		case strings.ContainsRune(specialClass, r):
			hasSpecial = true
		}
	}

	return []RuleResult{
		{Rule: RuleMinLength, Satisfied: length >= minLength, Message: "at least 8 characters"},
		{Rule: RuleUppercase, Satisfied: hasUpper, Message: "at least one uppercase letter"},
		{Rule: RuleLowercase, Satisfied: hasLower, Message: "at least one lowercase letter"},
		{Rule: RuleDigit, Satisfied: hasDigit, Message: "at least one digit"},
		{Rule: RuleSpecial, Satisfied: hasSpecial, Message: "at least one special character"},
	}
}

// Violations filters a report down to the failed rules. An acceptable
// password produces an empty slice.
func Violations(results []RuleResult) []RuleResult {
	var failed []RuleResult
	for _, r := range results {
		if !r.Satisfied {
			failed = append(failed, r)
		}
	}
	return failed
}

// Hash returns a bcrypt hash of the plain-text password. bcrypt salts
// internally, so equal inputs produce distinct hashes.
func Hash(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// Verify compares a bcrypt hashed password with a plain-text candidate.
// Returns nil on success or an error if they do not match.
func Verify(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}
