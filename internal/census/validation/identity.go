package validation

import (
	"regexp"
	"unicode/utf8"

	"censusdesk/internal/census/models"
)

var (
	aadhaarPattern        = regexp.MustCompile(`^\d{12}$`)
	panPattern            = regexp.MustCompile(`^[A-Z]{5}\d{4}[A-Z]$`)
	voterIDPattern        = regexp.MustCompile(`^[A-Z]{3}\d{7}$`)
	drivingLicensePattern = regexp.MustCompile(`^[A-Z]{2}\d{2}\d{4}\d{5,8}$`)
)

const (
	minDrivingLicenseLen = 13
	maxDrivingLicenseLen = 16
	minPassportLen       = 3
)

type formatRule struct {
	valid   func(string) bool
	message string
}

var identityFormats = map[models.IdentityProofType]formatRule{
	models.ProofAadhaarCard: {
		valid:   aadhaarPattern.MatchString,
		message: "Aadhaar ID must be exactly 12 digits (e.g., 123456789012).",
	},
	models.ProofPANCard: {
		valid:   panPattern.MatchString,
		message: "PAN Card must be in the format LLLLLNNNNL (e.g., ABCDE1234F).",
	},
	models.ProofVoterID: {
		valid:   voterIDPattern.MatchString,
		message: "Voter ID must be 3 uppercase letters followed by 7 digits (e.g., ABC1234567).",
	},
	// Pattern and length window are both enforced; the pattern alone allows 13 to 16.
	models.ProofDrivingLicense: {
		valid: func(s string) bool {
			n := len(s)
			return drivingLicensePattern.MatchString(s) && n >= minDrivingLicenseLen && n <= maxDrivingLicenseLen
		},
		message: "Driving License must be 13-16 chars. Format: 2 state letters, 2 RTO digits, 4 year digits, 5-8 unique numbers (e.g., KA01202312345).",
	},
	models.ProofPassport: {
		valid:   func(s string) bool { return utf8.RuneCountInString(s) >= minPassportLen },
		message: "Passport ID number should be at least 3 characters.",
	},
}

// CheckIdentityFormat reports whether number is well formed for proofType and,
// if not, the message to show. Unknown proof types pass; enum membership is a separate rule.
func CheckIdentityFormat(proofType models.IdentityProofType, number string) (string, bool) {
	rule, ok := identityFormats[proofType]
	if !ok || rule.valid(number) {
		return "", true
	}
	return rule.message, false
}
