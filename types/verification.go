package types

const StatusEligible = "ELIGIBLE"

// VerificationDetail is one language block of a date-verification response.
type VerificationDetail struct {
	Status         string `json:"status"`
	ProductionDate string `json:"production_date,omitempty"`
	DaysElapsed    *int   `json:"days_elapsed,omitempty"`
	MaxAllowedDays *int   `json:"max_allowed_days,omitempty"`
	Message        string `json:"message,omitempty"`
}

// TokenUsage as reported by the backend for a single model call.
type TokenUsage struct {
	InputTokens  int64 `json:"input_tokens"`
	OutputTokens int64 `json:"output_tokens"`
}

// VerificationResult is the parsed /verify-date/ body. Raw keeps the body
// verbatim so it can be forwarded to the assessment call unmodified.
type VerificationResult struct {
	English    VerificationDetail `json:"english"`
	Thai       VerificationDetail `json:"thai"`
	TokenUsage *TokenUsage        `json:"token_usage,omitempty"`
	Raw        []byte             `json:"-"`
}

func (v *VerificationResult) Eligible() bool {
	return v != nil && v.English.Status == StatusEligible
}

// Days returns days_elapsed, or -1 when the backend sent none.
func (v *VerificationResult) Days() int {
	if v == nil || v.English.DaysElapsed == nil {
		return -1
	}
	return *v.English.DaysElapsed
}
