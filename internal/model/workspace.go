package model

// Transient workspace artifacts. These live in the session cache only and
// are discarded when the workspace is left; none of them are persisted.

type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
)

type ChatMessage struct {
	Role      ChatRole `json:"role"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"timestamp"`
}

// CodeReviewResult is recomputed at most once per (project, submitted code)
// pair per session.
type CodeReviewResult struct {
	Score             int      `json:"score"`
	Summary           string   `json:"summary"`
	Strengths         []string `json:"strengths"`
	Weaknesses        []string `json:"weaknesses"`
	SecurityConcerns  []string `json:"securityConcerns"`
	RefactoredSnippet string   `json:"refactoredSnippet"`
}
