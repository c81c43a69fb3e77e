package migrations

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Run applies the schema for the storefront stores. Adapters do not migrate on their own.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.AutoMigrate(
		&orderRecord{},
		&localStoreEntryRecord{},
	)
}

// Order schema mirrors the orders Postgres adapter. The serial id keeps
// insertion order for history reads; order_id is the idempotency key.
type orderRecord struct {
	Seq            int64          `gorm:"primaryKey;autoIncrement;column:seq"`
	OrderID        string         `gorm:"column:order_id;size:64;uniqueIndex"`
	CustomerName   string         `gorm:"column:customer_name"`
	CustomerPhone  string         `gorm:"column:customer_phone;size:32;index"`
	Address        string         `gorm:"column:address"`
	ItemsSummary   string         `gorm:"column:items_summary"`
	ItemNames      pq.StringArray `gorm:"column:item_names;type:text[]"`
	ItemQuantities pq.Int64Array  `gorm:"column:item_quantities;type:bigint[]"`
	TotalMinor     int64          `gorm:"column:total_minor"`
	PaymentMethod  string         `gorm:"column:payment_method;size:16"`
	PaymentID      string         `gorm:"column:payment_id"`
	Status         string         `gorm:"column:status;size:32;index"`
	OrderDate      string         `gorm:"column:order_date;size:10"`
	DeliveryDate   string         `gorm:"column:delivery_date;size:10"`
	CreatedAt      time.Time      `gorm:"column:created_at;index"`
}

func (orderRecord) TableName() string { return "store_orders" }

// Local store schema mirrors the localstore Postgres adapter.
type localStoreEntryRecord struct {
	Namespace string    `gorm:"primaryKey;column:namespace;size:128"`
	Key       string    `gorm:"primaryKey;column:key;size:128"`
	Value     []byte    `gorm:"column:value"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (localStoreEntryRecord) TableName() string { return "local_store_entries" }
