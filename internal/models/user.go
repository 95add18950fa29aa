package models

// User is a registered account. Users are immutable once created.
type User struct {
	ID       string `json:"_id"`
	Username string `json:"username"`
}
