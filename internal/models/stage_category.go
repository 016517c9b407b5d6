package models

import (
	"fmt"
	"time"
	"unicode/utf8"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// StageCategory groups multiple Stage entities under a named label.
// It references stages, it does not own them: deleting a category leaves
// its member stages untouched.
type StageCategory struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Name        string               `bson:"name" json:"name"`
	Description string               `bson:"description" json:"description"`
	Stages      []primitive.ObjectID `bson:"stages" json:"stages"`
	Status      string               `bson:"status" json:"status"`
	CreatedAt   time.Time            `bson:"created_at" json:"createdAt"`
	UpdatedAt   time.Time            `bson:"updated_at" json:"updatedAt"`
}

// Validate enforces the schema constraints before persistence.
func (c *StageCategory) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("category name is required")
	}
	if utf8.RuneCountInString(c.Name) > 100 {
		return fmt.Errorf("category name should be less than 100 characters")
	}
	if utf8.RuneCountInString(c.Description) > 300 {
		return fmt.Errorf("description should be less than 300 characters")
	}
	switch c.Status {
	case StatusActive, StatusInactive:
	default:
		return fmt.Errorf("status must be active or inactive")
	}
	return nil
}
