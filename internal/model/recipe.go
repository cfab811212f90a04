package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Categories is the fixed set of recipe categories, stored lower-case.
var Categories = []string{
	"breakfast",
	"lunch",
	"dinner",
	"dessert",
	"snack",
	"soup",
	"salad",
	"bread",
	"cakes",
	"cookies",
	"beverage",
}

// Difficulties is the fixed set of difficulty levels.
var Difficulties = []string{"easy", "medium", "hard"}

// ValidCategory reports whether c is a member of Categories. Callers are
// expected to have lower-cased c already.
func ValidCategory(c string) bool {
	for _, v := range Categories {
		if v == c {
			return true
		}
	}
	return false
}

// ValidDifficulty reports whether d is a member of Difficulties.
func ValidDifficulty(d string) bool {
	for _, v := range Difficulties {
		if v == d {
			return true
		}
	}
	return false
}

// Ingredient is one entry of a recipe's ingredient list.
type Ingredient struct {
	Name   string `json:"name"`
	Amount string `json:"amount"`
}

// Rating is one submitted rating. Ratings are append-only.
type Rating struct {
	Value     int       `json:"value"`
	CreatedAt time.Time `json:"created_at"`
}

// Comment is one submitted comment. Comments are append-only.
type Comment struct {
	Text      string    `json:"text"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"created_at"`
}

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	// Serialize as text so the column holds JSON on every dialect.
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// JSONBIngredients stores the ingredient list in JSONB
type JSONBIngredients []Ingredient

// Value implements the driver.Valuer interface
func (a JSONBIngredients) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	// Serialize as text so the column holds JSON on every dialect.
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBIngredients) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBIngredients{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// JSONBRatings stores the embedded ratings collection in JSONB
type JSONBRatings []Rating

// Value implements the driver.Valuer interface
func (a JSONBRatings) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	// Serialize as text so the column holds JSON on every dialect.
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBRatings) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBRatings{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// JSONBComments stores the embedded comments collection in JSONB
type JSONBComments []Comment

// Value implements the driver.Valuer interface
func (a JSONBComments) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	// Serialize as text so the column holds JSON on every dialect.
	data, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBComments) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBComments{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is the root aggregate. Ratings and comments are owned
// sub-collections persisted in the same row; they have no independent
// lifecycle. AverageRating and RatingsCount are derived from Ratings and
// rewritten on every append.
type Recipe struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	Title         string           `gorm:"size:200;not null" json:"title"`
	Category      string           `gorm:"size:50;not null;index" json:"category"`
	CookingTime   int              `json:"cooking_time"`
	Difficulty    string           `gorm:"size:10" json:"difficulty"`
	Tags          JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"tags"`
	Ingredients   JSONBIngredients `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	ImageURL      string           `gorm:"size:255" json:"image_url,omitempty"`
	Ratings       JSONBRatings     `gorm:"type:jsonb;not null;default:'[]'" json:"ratings"`
	Comments      JSONBComments    `gorm:"type:jsonb;not null;default:'[]'" json:"comments"`
	AverageRating float64          `json:"average_rating"`
	RatingsCount  int              `json:"ratings_count"`
}

// BeforeCreate assigns the aggregate ID.
func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RecomputeRatingStats rewrites AverageRating and RatingsCount from the
// ratings collection. Must be called after every mutation of Ratings.
func (r *Recipe) RecomputeRatingStats() {
	if len(r.Ratings) == 0 {
		r.AverageRating = 0
		r.RatingsCount = 0
		return
	}
	sum := 0
	for _, rating := range r.Ratings {
		sum += rating.Value
	}
	r.AverageRating = float64(sum) / float64(len(r.Ratings))
	r.RatingsCount = len(r.Ratings)
}
