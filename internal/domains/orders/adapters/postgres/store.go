package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/domain"
	"github.com/Apurer/go-sheet-storefront/internal/domains/orders/ports"
	"github.com/Apurer/go-sheet-storefront/internal/shared/ingestion"
	"github.com/Apurer/go-sheet-storefront/internal/shared/money"
)

var (
	_ ports.OrderWriter   = (*Store)(nil)
	_ ports.HistorySource = (*Store)(nil)
)

// Store keeps the order log in PostgreSQL using GORM. Rows are read back in
// insertion order.
type Store struct {
	db *gorm.DB
}

// NewStore wires a PostgreSQL-backed order log. Caller manages DB lifecycle and schema.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// orderRecord maps an order to the store_orders table.
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

func (s *Store) Name() string { return "postgres:store_orders" }

// Write inserts the order once. An existing order_id leaves the table untouched
// and returns ports.ErrDuplicateOrder.
func (s *Store) Write(ctx context.Context, order domain.Order) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	record := toRecord(order)
	result := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "order_id"}}, DoNothing: true}).
		Create(&record)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrDuplicateOrder
	}
	return nil
}

func (s *Store) FetchAll(ctx context.Context) ([]ingestion.RowResult[domain.Order], error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var records []orderRecord
	if err := s.db.WithContext(ctx).Order("seq ASC").Find(&records).Error; err != nil {
		return nil, err
	}
	rows := make([]ingestion.RowResult[domain.Order], 0, len(records))
	for i := range records {
		rows = append(rows, ingestion.Accept(i, records[i].toDomain()))
	}
	return rows, nil
}

func (s *Store) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres order store not configured")
	}
	return nil
}

func toRecord(order domain.Order) orderRecord {
	rec := orderRecord{
		OrderID:       order.ID,
		CustomerName:  order.CustomerName,
		CustomerPhone: order.CustomerPhone,
		Address:       order.Address,
		ItemsSummary:  order.ItemsSummary,
		TotalMinor:    order.Total.Minor(),
		PaymentMethod: string(order.PaymentMethod),
		PaymentID:     order.PaymentID,
		Status:        string(order.Status),
		OrderDate:     order.OrderDate,
		DeliveryDate:  order.DeliveryDate,
	}
	for _, item := range order.Items {
		rec.ItemNames = append(rec.ItemNames, item.Name)
		rec.ItemQuantities = append(rec.ItemQuantities, int64(item.Quantity))
	}
	return rec
}

func (r orderRecord) toDomain() domain.Order {
	order := domain.Order{
		ID:            r.OrderID,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		Address:       r.Address,
		ItemsSummary:  r.ItemsSummary,
		Total:         money.Amount(r.TotalMinor),
		PaymentMethod: domain.PaymentMethod(r.PaymentMethod),
		PaymentID:     r.PaymentID,
		Status:        domain.Status(r.Status),
		OrderDate:     r.OrderDate,
		DeliveryDate:  r.DeliveryDate,
	}
	for i, name := range r.ItemNames {
		var qty int
		if i < len(r.ItemQuantities) {
			qty = int(r.ItemQuantities[i])
		}
		order.Items = append(order.Items, domain.Item{Name: name, Quantity: qty})
	}
	return order
}
