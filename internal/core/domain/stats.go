package domain

// DashboardStats summarizes a user's document corpus.
type DashboardStats struct {
	TotalDocuments int            `json:"total_documents"`
	TotalSize      int64          `json:"total_size"`
	ByCategory     map[string]int `json:"by_category"`
	ByStatus       map[string]int `json:"by_status"`
}
