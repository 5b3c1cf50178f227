package types

// ClaimResult is the parsed /claimability/ body.
// Older revisions of the backend reported token_usage.input_tokens and
// server-side cost totals; those fields are not read.
type ClaimResult struct {
	Claimable         bool   `json:"claimable"`
	English           string `json:"english,omitempty"`
	Thai              string `json:"thai,omitempty"`
	TotalInputTokens  *int64 `json:"total_input_tokens,omitempty"`
	TotalOutputTokens *int64 `json:"total_output_tokens,omitempty"`
}

// HasTokenTotals reports whether both token counters were present.
func (c *ClaimResult) HasTokenTotals() bool {
	return c != nil && c.TotalInputTokens != nil && c.TotalOutputTokens != nil
}

// CostSummary is informational only.
type CostSummary struct {
	Model        string  `json:"model"`
	InputTokens  int64   `json:"inputTokens"`
	OutputTokens int64   `json:"outputTokens"`
	USD          float64 `json:"usd"`
	THB          float64 `json:"thb"`
	USDLabel     string  `json:"usdLabel"`
	THBLabel     string  `json:"thbLabel"`
}

// SubmissionState of the sequencer.
type SubmissionState string

const (
	StateIdle      SubmissionState = "idle"
	StateVerifying SubmissionState = "verifying"
	StateAssessing SubmissionState = "assessing"
	StateDone      SubmissionState = "done"
	StateError     SubmissionState = "error"
)

// Outcome is everything the result panel shows once the sequencer is Done.
type Outcome struct {
	Verification *VerificationResult `json:"verification"`
	Eligible     bool                `json:"eligible"`
	DateBanner   DateBanner          `json:"dateBanner"`
	Claim        *ClaimResult        `json:"claim,omitempty"`
	Claimable    bool                `json:"claimable"`
	Cost         *CostSummary        `json:"cost,omitempty"`
}

// DateBanner is the bilingual eligibility banner.
type DateBanner struct {
	Eligible bool   `json:"eligible"`
	Days     int    `json:"days"`
	English  string `json:"english"`
	Thai     string `json:"thai"`
}
