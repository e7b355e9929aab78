package model

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type StaffRole string

const (
	StaffRoleAdmin StaffRole = "admin"
	StaffRoleStaff StaffRole = "staff"
)

func (r StaffRole) Valid() bool {
	return r == StaffRoleAdmin || r == StaffRoleStaff
}

type StaffUserModel struct {
	StaffUserID        uuid.UUID  `gorm:"column:staff_user_id;type:uuid;primaryKey" json:"staff_user_id"`
	StaffUserEmail     string     `gorm:"column:staff_user_email;type:varchar(255);not null;uniqueIndex" json:"staff_user_email"`
	StaffUserName      string     `gorm:"column:staff_user_name;type:varchar(120);not null" json:"staff_user_name"`
	StaffUserPassword  string     `gorm:"column:staff_user_password;type:varchar(100);not null" json:"-"`
	StaffUserRole      StaffRole  `gorm:"column:staff_user_role;type:varchar(20);not null;default:'staff'" json:"staff_user_role"`
	StaffUserIsActive  bool       `gorm:"column:staff_user_is_active;not null;default:true" json:"staff_user_is_active"`
	StaffUserLastLogin *time.Time `gorm:"column:staff_user_last_login" json:"staff_user_last_login,omitempty"`

	StaffUserCreatedAt time.Time      `gorm:"column:staff_user_created_at;autoCreateTime" json:"staff_user_created_at"`
	StaffUserUpdatedAt time.Time      `gorm:"column:staff_user_updated_at;autoUpdateTime" json:"staff_user_updated_at"`
	StaffUserDeletedAt gorm.DeletedAt `gorm:"column:staff_user_deleted_at;index" json:"-"`
}

func (StaffUserModel) TableName() string {
	return "staff_users"
}

func (s *StaffUserModel) BeforeCreate(tx *gorm.DB) error {
	if s.StaffUserID == uuid.Nil {
		s.StaffUserID = uuid.New()
	}
	s.StaffUserEmail = strings.ToLower(strings.TrimSpace(s.StaffUserEmail))
	if s.StaffUserRole == "" {
		s.StaffUserRole = StaffRoleStaff
	}
	return nil
}
