// Package shop holds the relational row models of the commerce source
// database. The pipeline reads tables generically; these models exist for
// migrations in dev setups and for seeding test sources.
package shop

import "time"

type Customer struct {
	ID       string    `gorm:"column:id;primaryKey" json:"id"`
	Name     string    `gorm:"column:name;not null" json:"name"`
	JoinDate time.Time `gorm:"column:join_date;type:date" json:"join_date"`
}

func (Customer) TableName() string { return "customers" }

type Category struct {
	ID   string `gorm:"column:id;primaryKey" json:"id"`
	Name string `gorm:"column:name;not null" json:"name"`
}

func (Category) TableName() string { return "categories" }

type Product struct {
	ID         string  `gorm:"column:id;primaryKey" json:"id"`
	Name       string  `gorm:"column:name;not null" json:"name"`
	Price      float64 `gorm:"column:price;type:numeric(10,2);not null" json:"price"`
	CategoryID *string `gorm:"column:category_id;index" json:"category_id"`
}

func (Product) TableName() string { return "products" }

type Order struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	CustomerID *string   `gorm:"column:customer_id;index" json:"customer_id"`
	Ts         time.Time `gorm:"column:ts" json:"ts"`
}

func (Order) TableName() string { return "orders" }

type OrderItem struct {
	OrderID   string `gorm:"column:order_id;primaryKey" json:"order_id"`
	ProductID string `gorm:"column:product_id;primaryKey" json:"product_id"`
	Quantity  int64  `gorm:"column:quantity;not null" json:"quantity"`
}

func (OrderItem) TableName() string { return "order_items" }

type Event struct {
	ID         string    `gorm:"column:id;primaryKey" json:"id"`
	CustomerID *string   `gorm:"column:customer_id;index" json:"customer_id"`
	ProductID  *string   `gorm:"column:product_id;index" json:"product_id"`
	EventType  string    `gorm:"column:event_type" json:"event_type"`
	Ts         time.Time `gorm:"column:ts" json:"ts"`
}

func (Event) TableName() string { return "events" }

// Models lists every row model in dependency order.
func Models() []any {
	return []any{
		&Customer{},
		&Category{},
		&Product{},
		&Order{},
		&OrderItem{},
		&Event{},
	}
}
