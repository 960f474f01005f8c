package models

import (
	"encoding/json"
	"time"
)

// Submission is a persisted recommendation result owned by one user.
// Weather and Clothing are stored as opaque JSON documents.
type Submission struct {
	ID        int64           `db:"id"         json:"id"`
	UserID    string          `db:"user_id"    json:"user_id"`
	Location  string          `db:"location"   json:"location"`
	Lat       float64         `db:"lat"        json:"lat"`
	Lon       float64         `db:"lon"        json:"lon"`
	Weather   json.RawMessage `db:"weather"    json:"weather"`
	Clothing  json.RawMessage `db:"clothing"   json:"clothing"`
	CreatedAt time.Time       `db:"created_at" json:"created_at"`
}
