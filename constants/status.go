package constants

// DocumentStatus is the canonical status for rows in the documents table.
type DocumentStatus string

// Stable values (store these exact strings in DB).
const (
	StatusCompleted   DocumentStatus = "completed"    // text extracted, trusted
	StatusNeedsReview DocumentStatus = "needs_review" // extracted but flagged for a human
	StatusFailed      DocumentStatus = "failed"       // terminal failure, error recorded
)

// ReviewStatus is the lifecycle of a review_queue row. Only "pending" is
// written by this pipeline; the review tooling owns the rest.
type ReviewStatus string

const (
	ReviewPending    ReviewStatus = "pending"
	ReviewInProgress ReviewStatus = "in_progress"
	ReviewResolved   ReviewStatus = "resolved"
)
