package domain

type ConsumeResult struct {
	Success          bool
	CreditsRemaining int
	Message          string
}

type CreditsResponse struct {
	CreditsRemaining int `json:"creditsRemaining"`
}
