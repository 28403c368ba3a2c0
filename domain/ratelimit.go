package domain

type RateLimitResult struct {
	Allowed           bool
	Limit             int
	Remaining         int
	ResetEpochSeconds int64
}
