package store

import "time"

// Storage declares the persisted keys.
type Storage struct {
	// Token is the session token.
	Token    string
	Retry    int
	LastSync time.Time
	Tags     []string
	Profile  struct {
		name string
		Age  int `json:"age"`
	}
	refetchInterval struct{ interval int }
}
