package entity

import (
	"time"
)

type Candidate struct {
	Id               string
	UserId           string
	InterviewCredits int
}

type InterviewApplication struct {
	Id                string
	CandidateId       string
	IsInterviewDone   bool
	Transcript        string
	EvaluationScore   int
	EvaluationSummary string
	UpdatedAt         time.Time
}
