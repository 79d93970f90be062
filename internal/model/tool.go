package model

// ToolRecord is the normalized row served by /datos and sent to the model.
// Field order is the canonical column order and is kept in JSON output.
type ToolRecord struct {
	Name            string `json:"name"`
	DifficultyLevel string `json:"difficulty_level"`
	Subcategory     string `json:"subcategory"`
	Description     string `json:"description"`
	Link            string `json:"link"`
	Tutorial        string `json:"tutorial"`
}

// Values returns the six fields in canonical order.
func (r ToolRecord) Values() []string {
	return []string{r.Name, r.DifficultyLevel, r.Subcategory, r.Description, r.Link, r.Tutorial}
}
