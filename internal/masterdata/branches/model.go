package branches

// Branch is a business location used as an analytics grouping key.
type Branch struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
