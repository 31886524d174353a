package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Project struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	OrderNumber  string    `gorm:"column:order_number;uniqueIndex;not null" json:"order_number"`
	CustomerName string    `gorm:"column:customer_name;not null" json:"customer_name"`
	Title        string    `gorm:"column:title;not null" json:"title"`
	Description  string    `gorm:"column:description" json:"description,omitempty"`
	PlannedStart time.Time `gorm:"column:planned_start;not null" json:"planned_start"`
	PlannedEnd   time.Time `gorm:"column:planned_end;not null" json:"planned_end"`

	Address *Address `gorm:"foreignKey:ProjectID" json:"address,omitempty"`
	Steps   []Step   `gorm:"foreignKey:ProjectID" json:"steps,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Project) TableName() string { return "project" }

type Address struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID   uuid.UUID `gorm:"type:uuid;column:project_id;not null;index" json:"project_id"`
	Street      string    `gorm:"column:street;not null" json:"street"`
	HouseNumber string    `gorm:"column:house_number;not null" json:"house_number"`
	PostalCode  string    `gorm:"column:postal_code;not null" json:"postal_code"`
	City        string    `gorm:"column:city;not null" json:"city"`
}

func (Address) TableName() string { return "address" }
