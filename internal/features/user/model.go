package user

import "time"

// User mirrors an auth identity. ID is the identity id.
type User struct {
	ID          string     `json:"id" bson:"_id"`
	Email       string     `json:"email" bson:"email"`
	DisplayName string     `json:"display_name" bson:"display_name"`
	Role        string     `json:"role" bson:"role"`
	IsActive    bool       `json:"is_active" bson:"is_active"`
	CreatedAt   *time.Time `json:"created_at,omitempty" bson:"created_at,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty" bson:"created_by,omitempty"`
	LastLogin   *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty" bson:"updated_at,omitempty"`
	UpdatedBy   string     `json:"updated_by,omitempty" bson:"updated_by,omitempty"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" bson:"deleted_at,omitempty"`
	DeletedBy   string     `json:"deleted_by,omitempty" bson:"deleted_by,omitempty"`
	RestoredAt  *time.Time `json:"restored_at,omitempty" bson:"restored_at,omitempty"`
	RestoredBy  string     `json:"restored_by,omitempty" bson:"restored_by,omitempty"`
	Version     int64      `json:"version" bson:"version"`
}

type CreateUserInput struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name" validate:"required,min=2,max=50"`
	Role        string `json:"role" validate:"required"`
}

type UpdateUserInput struct {
	DisplayName string `json:"display_name" validate:"required,min=2,max=50"`
	Role        string `json:"role" validate:"required"`
}

type UserStats struct {
	Total           int            `json:"total"`
	Active          int            `json:"active"`
	Inactive        int            `json:"inactive"`
	ByRole          map[string]int `json:"by_role"` // active users only
	RecentlyCreated int            `json:"recently_created"`
}

// RecentWindow bounds UserStats.RecentlyCreated.
const RecentWindow = 30 * 24 * time.Hour
