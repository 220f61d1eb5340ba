package core

import "time"

// TopicStatus describes the lifecycle of a generated topic.
type TopicStatus string

const (
	TopicStatusPending  TopicStatus = "pending"  // Accepted, waiting to be consumed
	TopicStatusUsed     TopicStatus = "used"     // Consumed by content generation
	TopicStatusArchived TopicStatus = "archived" // Soft-deleted by an operator
)

// Topic represents a candidate article title stored for later content generation.
type Topic struct {
	ID        string      `json:"id"`         // Record identifier assigned by the record store
	Category  string      `json:"category"`   // Marketing category key (e.g. "meta-ads")
	Title     string      `json:"title"`      // Candidate title, 10-100 characters
	Status    TopicStatus `json:"status"`     // Lifecycle status
	CreatedAt time.Time   `json:"created_at"` // When the topic was accepted
}

// ContentStatus describes the lifecycle of a generated article.
type ContentStatus string

const (
	ContentStatusDraft     ContentStatus = "draft"
	ContentStatusPublished ContentStatus = "published"
	ContentStatusArchived  ContentStatus = "archived"
)

// Content represents a generated article with its publishing metadata.
type Content struct {
	ID           string        `json:"id"`            // Record identifier
	Title        string        `json:"title"`         // Article title (the consumed topic)
	Body         string        `json:"body"`          // Markdown body
	Description  string        `json:"description"`   // Meta description for SEO
	Category     string        `json:"category"`      // Marketing category key
	Tags         string        `json:"tags"`          // Comma-delimited tag list
	SEOKeywords  string        `json:"seo_keywords"`  // Comma-delimited researched keywords
	Status       ContentStatus `json:"status"`        // draft | published | archived
	ThumbnailURL string        `json:"thumbnail_url"` // Public path of the generated thumbnail
	PublishedURL string        `json:"published_url"` // Public URL set on publish
	CreatedAt    time.Time     `json:"created_at"`    // When the draft was generated
}

// UsageSummary holds monthly aggregate counters, keyed by year-month.
// Counters are incremented as a side effect of each pipeline stage.
type UsageSummary struct {
	Month        string `json:"month"`         // "2026-01"
	TopicCount   int    `json:"topic_count"`   // Topics accepted
	ContentCount int    `json:"content_count"` // Drafts generated
	PublishCount int    `json:"publish_count"` // Articles published
	TotalTokens  int64  `json:"total_tokens"`  // Provider tokens consumed
}

// LeadStatus describes the CRM lifecycle of a captured lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusContacted LeadStatus = "contacted"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusSpam      LeadStatus = "spam"
)

// Lead represents a captured marketing lead. Status transitions are triggered
// by direct operator action over REST, never internally.
type Lead struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Company   string     `json:"company"`
	Phone     string     `json:"phone"`
	Email     string     `json:"email"`
	Message   string     `json:"message"`
	Source    string     `json:"source"` // Landing page or campaign identifier
	Status    LeadStatus `json:"status"`
	CreatedAt time.Time  `json:"created_at"`
}

// ContractStatus describes the contract lifecycle on the CRM side.
type ContractStatus string

const (
	ContractStatusPending   ContractStatus = "PENDING"
	ContractStatusSubmitted ContractStatus = "SUBMITTED"
	ContractStatusApproved  ContractStatus = "APPROVED"
	ContractStatusRejected  ContractStatus = "REJECTED"
	ContractStatusActive    ContractStatus = "ACTIVE"
	ContractStatusExpired   ContractStatus = "EXPIRED"
	ContractStatusCancelled ContractStatus = "CANCELLED"
)

// Contract represents a client contract record.
type Contract struct {
	ID        string         `json:"id"`
	ClientID  string         `json:"client_id"`
	Plan      string         `json:"plan"`
	Status    ContractStatus `json:"status"`
	StartsAt  time.Time      `json:"starts_at"`
	EndsAt    time.Time      `json:"ends_at"`
	CreatedAt time.Time      `json:"created_at"`
}

// ValidContractStatus reports whether s is one of the known contract states.
func ValidContractStatus(s ContractStatus) bool {
	switch s {
	case ContractStatusPending, ContractStatusSubmitted, ContractStatusApproved,
		ContractStatusRejected, ContractStatusActive, ContractStatusExpired,
		ContractStatusCancelled:
		return true
	}
	return false
}

// ValidLeadStatus reports whether s is one of the known lead states.
func ValidLeadStatus(s LeadStatus) bool {
	switch s {
	case LeadStatusNew, LeadStatusContacted, LeadStatusConverted, LeadStatusSpam:
		return true
	}
	return false
}

// BatchReport aggregates the outcome of one orchestrator run.
type BatchReport struct {
	Category        string   `json:"category"`
	Requested       int      `json:"requested"`        // Clamped target count
	Batches         int      `json:"batches"`          // ceil(requested / batch size)
	Generated       int      `json:"generated"`        // Raw titles returned by the model
	Valid           int      `json:"valid"`            // Passed keyword/length validation
	Invalid         int      `json:"invalid"`          // Failed validation
	Duplicate       int      `json:"duplicate"`        // Flagged by the duplicate checker
	Added           int      `json:"added"`            // Persisted to the record store
	CurrentStock    int      `json:"current_stock"`    // Unused topics after the run
	InvalidTopics   []string `json:"invalid_topics"`   // Up to 10 samples for the operator
	DuplicateTopics []string `json:"duplicate_topics"` // Up to 10 samples for the operator
}

// DuplicateResult is the duplicate checker's verdict for one candidate title.
type DuplicateResult struct {
	IsDuplicate bool   `json:"isDuplicate"`
	SimilarTo   string `json:"similarTo,omitempty"` // Closest existing title, if flagged
	Reason      string `json:"reason,omitempty"`    // Model's one-line justification
}
