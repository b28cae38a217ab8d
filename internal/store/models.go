package store

import "fmt"

const (
	StatusBacklog       = "Backlog"
	StatusPlanning      = "Planning"
	StatusInDevelopment = "In Development"
	StatusCompleted     = "Completed"
)

const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// Vertical is a product family. Products reference it through FamilyID;
// nothing holds a back-pointer list.
type Vertical struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	ColorTag string `json:"colorTag"`
	Synced   bool   `json:"_synced"`
}

type Product struct {
	ID          string `json:"id"`
	FamilyID    string `json:"familyId"`
	Name        string `json:"name"`
	Description string `json:"description"`
	ColorTag    string `json:"colorTag"`
	Synced      bool   `json:"_synced"`
}

type Milestone struct {
	ID          string `json:"id"`
	ProductID   string `json:"productId"`
	Title       string `json:"title"`
	Month       int    `json:"month"`
	Description string `json:"description"`
	Synced      bool   `json:"_synced"`
}

type Dependency struct {
	ItemID string `json:"itemId"`
	Type   string `json:"type"`
}

type SubFeature struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsCompleted bool   `json:"isCompleted"`
}

type RoadmapItem struct {
	ID           string       `json:"id"`
	VerticalID   string       `json:"verticalId"`
	ProductID    string       `json:"productId"`
	MilestoneID  string       `json:"milestoneId,omitempty"`
	Title        string       `json:"title"`
	Description  string       `json:"description"`
	Status       string       `json:"status"`
	Priority     string       `json:"priority"`
	StartMonth   int          `json:"startMonth"`
	SpanMonths   int          `json:"spanMonths"`
	Effort       int          `json:"effort"`
	Value        int          `json:"value"`
	Tags         []string     `json:"tags"`
	Dependencies []Dependency `json:"dependencies"`
	SubFeatures  []SubFeature `json:"subFeatures"`
	CreatedAt    int64        `json:"createdAt"`
	Quarter      string       `json:"quarter"`
	Synced       bool         `json:"_synced"`
}

// Snapshot is the composite dataset persisted to the local cache and
// held in memory.
type Snapshot struct {
	Items      []RoadmapItem `json:"items"`
	Products   []Product     `json:"products"`
	Milestones []Milestone   `json:"milestones"`
	Verticals  []Vertical    `json:"verticals"`
}

// QuarterForMonth derives the quarter label from a start month (0-11).
// Quarter is never stored independently of StartMonth.
func QuarterForMonth(month int) string {
	return fmt.Sprintf("Q%d 2024", month/3+1)
}

// EffectiveVerticalID resolves the vertical an item belongs to. A
// product's family is authoritative over the item's own VerticalID when
// the product carries one; a stale or dangling VerticalID is returned
// as-is and resolves to "unlinked" downstream, never an error.
func EffectiveVerticalID(item RoadmapItem, products []Product) string {
	for _, p := range products {
		if p.ID == item.ProductID {
			if p.FamilyID != "" {
				return p.FamilyID
			}
			break
		}
	}
	return item.VerticalID
}

// VisibleSpan clamps an item's rendered span to the end of the year.
// The stored SpanMonths is never truncated.
func VisibleSpan(item RoadmapItem) int {
	if item.StartMonth+item.SpanMonths > 12 {
		return 12 - item.StartMonth
	}
	return item.SpanMonths
}

func ValidStatus(status string) bool {
	switch status {
	case StatusBacklog, StatusPlanning, StatusInDevelopment, StatusCompleted:
		return true
	}
	return false
}

func ValidPriority(priority string) bool {
	switch priority {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}
