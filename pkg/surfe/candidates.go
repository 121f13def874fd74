package surfe

import (
	"cmp"
	"slices"
)

const validationValid = "VALID"

// BestEmail picks the first VALID candidate, falling back to the first
// candidate in returned order.
func BestEmail(candidates []EmailCandidate) string {
	for _, c := range candidates {
		if c.ValidationStatus == validationValid && c.Email != "" {
			return c.Email
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return candidates[0].Email
}

// ValidEmails returns every non-empty VALID address in returned order.
func ValidEmails(candidates []EmailCandidate) []string {
	var out []string
	for _, c := range candidates {
		if c.ValidationStatus == validationValid && c.Email != "" {
			out = append(out, c.Email)
		}
	}
	return out
}

// BestPhone picks the candidate with the highest confidence score. Ties keep
// returned order.
func BestPhone(candidates []PhoneCandidate) string {
	sorted := sortedPhones(candidates)
	if len(sorted) == 0 {
		return ""
	}
	return sorted[0].MobilePhone
}

// PhonesByConfidence returns every non-empty number, highest confidence first.
func PhonesByConfidence(candidates []PhoneCandidate) []string {
	var out []string
	for _, c := range sortedPhones(candidates) {
		if c.MobilePhone != "" {
			out = append(out, c.MobilePhone)
		}
	}
	return out
}

func sortedPhones(candidates []PhoneCandidate) []PhoneCandidate {
	sorted := slices.Clone(candidates)
	slices.SortStableFunc(sorted, func(a, b PhoneCandidate) int {
		return cmp.Compare(b.ConfidenceScore, a.ConfidenceScore)
	})
	return sorted
}
