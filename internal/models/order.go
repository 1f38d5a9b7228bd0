package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// StoreZone is the fixed UTC+8 offset every created_at is recorded in.
var StoreZone = time.FixedZone("UTC+8", 8*60*60)

type Order struct {
	ID            string                       `json:"id" gorm:"primaryKey;type:varchar(32)"`
	CustomerName  string                       `json:"customer_name" gorm:"not null"`
	Phone         string                       `json:"phone" gorm:"not null"`
	Email         string                       `json:"email" gorm:"not null"`
	Items         datatypes.JSONSlice[LineItem] `json:"item" gorm:"column:item;not null"`
	CreatedAt     time.Time                    `json:"created_at" gorm:"index"`
	Status        OrderStatus                  `json:"status" gorm:"type:varchar(16);not null;default:'PENDING'"`
	PaymentStatus PaymentStatus                `json:"payment_status" gorm:"type:varchar(16);not null;default:'UNPAID'"`
}

// LineItem is one product entry of an order, stored inside the item JSON column.
type LineItem struct {
	ProductID string `json:"product_id" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Quantity  int    `json:"quantity" binding:"gt=0"`
	Price     int    `json:"price" binding:"gte=0"`
}

// OrderFields is the caller-supplied part of an order: the create payload and
// the complete set of fields a full update may overwrite.
type OrderFields struct {
	CustomerName string     `json:"customer_name" binding:"required"`
	Phone        string     `json:"phone" binding:"required"`
	Email        string     `json:"email" binding:"required,email"`
	Items        []LineItem `json:"item" binding:"required,min=1,dive"`
}

func (Order) TableName() string {
	return "orders"
}

// AfterFind normalises timestamps read back from the database into StoreZone.
func (o *Order) AfterFind(tx *gorm.DB) error {
	o.CreatedAt = o.CreatedAt.In(StoreZone)
	return nil
}

// Apply overwrites the updatable fields. id, created_at and both statuses are untouched.
func (o *Order) Apply(u OrderFields) {
	o.CustomerName = u.CustomerName
	o.Phone = u.Phone
	o.Email = u.Email
	o.Items = append(datatypes.JSONSlice[LineItem]{}, u.Items...)
}

// Clone returns a deep copy, items included.
func (o *Order) Clone() *Order {
	c := *o
	c.Items = append(datatypes.JSONSlice[LineItem]{}, o.Items...)
	return &c
}

// Fields returns the caller-supplied part of the order.
func (o *Order) Fields() OrderFields {
	return OrderFields{
		CustomerName: o.CustomerName,
		Phone:        o.Phone,
		Email:        o.Email,
		Items:        append([]LineItem{}, o.Items...),
	}
}
