package models

// Team is a read-only reference entity owned by the persistence layer.
type Team struct {
	ID   int    `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}
