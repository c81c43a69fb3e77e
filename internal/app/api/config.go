package api

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"
	"gopkg.in/yaml.v3"

	"github.com/Apurer/go-sheet-storefront/internal/platform/sheets"
)

// ConfigFileEnv names the optional YAML file layered under the environment.
const ConfigFileEnv = "STOREFRONT_CONFIG"

// Backend names accepted in configuration.
const (
	BackendMemory    = "memory"
	BackendSheets    = "sheets"
	BackendJSONFeed  = "jsonfeed"
	BackendAppScript = "appscript"
	BackendPostgres  = "postgres"
	BackendRedis     = "redis"
)

// Config carries the settings of the storefront processes. Values come from
// defaults, then the YAML file named by STOREFRONT_CONFIG, then environment
// variables (a .env file is loaded first when present).
type Config struct {
	Port      string `yaml:"port"`
	StoreName string `yaml:"storeName"`

	Catalog       CatalogConfig       `yaml:"catalog"`
	Orders        OrdersConfig        `yaml:"orders"`
	LocalStore    LocalStoreConfig    `yaml:"localStore"`
	Postgres      PostgresConfig      `yaml:"postgres"`
	Temporal      TemporalConfig      `yaml:"temporal"`
	Payments      PaymentsConfig      `yaml:"payments"`
	Notifications NotificationsConfig `yaml:"notifications"`
}

type CatalogConfig struct {
	Backend       string        `yaml:"backend"`
	SpreadsheetID string        `yaml:"spreadsheetId"`
	SheetsBaseURL string        `yaml:"sheetsBaseUrl"`
	ProductsSheet string        `yaml:"productsSheet"`
	FeedURL       string        `yaml:"feedUrl"`
	FetchTimeout  time.Duration `yaml:"fetchTimeout"`
}

type OrdersConfig struct {
	// Backend is where orders are written and read back from. The appscript
	// backend writes to the Apps Script endpoint and reads the Orders sheet.
	Backend        string        `yaml:"backend"`
	AppScriptURL   string        `yaml:"appScriptUrl"`
	OrdersSheet    string        `yaml:"ordersSheet"`
	SubmitTimeout  time.Duration `yaml:"submitTimeout"`
	HistoryTimeout time.Duration `yaml:"historyTimeout"`
}

type LocalStoreConfig struct {
	Backend   string `yaml:"backend"`
	Namespace string `yaml:"namespace"`
	RedisURL  string `yaml:"redisUrl"`
}

type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxOpenConns    int           `yaml:"maxOpenConns"`
	ConnMaxLifetime time.Duration `yaml:"connMaxLifetime"`
}

type TemporalConfig struct {
	Address   string `yaml:"address"`
	Namespace string `yaml:"namespace"`
	Disabled  bool   `yaml:"disabled"`
}

type PaymentsConfig struct {
	RazorpayKey         string `yaml:"razorpayKey"`
	ThemeColor          string `yaml:"themeColor"`
	MerchantName        string `yaml:"merchantName"`
	MerchantDescription string `yaml:"merchantDescription"`
	Currency            string `yaml:"currency"`
}

type NotificationsConfig struct {
	MessagingBaseURL string         `yaml:"messagingBaseUrl"`
	BusinessNumber   string         `yaml:"businessNumber"`
	WhatsApp         WhatsAppConfig `yaml:"whatsapp"`
}

// WhatsAppConfig enables the explicit dispatch endpoint when BaseURL is set.
type WhatsAppConfig struct {
	BaseURL  string `yaml:"baseUrl"`
	Path     string `yaml:"path"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// DefaultConfig is an in-memory storefront suitable for local development.
func DefaultConfig() Config {
	return Config{
		Port:      "8080",
		StoreName: "Mamta Traders",
		Catalog: CatalogConfig{
			Backend:       BackendSheets,
			SheetsBaseURL: sheets.DefaultBaseURL,
			ProductsSheet: "Products",
			FetchTimeout:  10 * time.Second,
		},
		Orders: OrdersConfig{
			Backend:        BackendAppScript,
			OrdersSheet:    "Orders",
			SubmitTimeout:  15 * time.Second,
			HistoryTimeout: 10 * time.Second,
		},
		LocalStore: LocalStoreConfig{
			Backend:   BackendMemory,
			Namespace: "default",
			RedisURL:  "redis://localhost:6379/0",
		},
		Postgres: PostgresConfig{MaxOpenConns: 10, ConnMaxLifetime: 30 * time.Minute},
		Temporal: TemporalConfig{
			Address:   client.DefaultHostPort,
			Namespace: client.DefaultNamespace,
		},
		Payments: PaymentsConfig{
			ThemeColor:          "#667eea",
			MerchantName:        "Mamta Traders",
			MerchantDescription: "Order Payment",
			Currency:            "INR",
		},
		Notifications: NotificationsConfig{
			MessagingBaseURL: "https://wa.me",
		},
	}
}

// LoadConfig reads .env, the optional YAML overlay and the environment, then
// validates the result.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	cfg := DefaultConfig()
	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() error {
	setString(&c.Port, "PORT")
	setString(&c.StoreName, "STORE_NAME")

	setString(&c.Catalog.Backend, "CATALOG_BACKEND")
	setString(&c.Catalog.SpreadsheetID, "SPREADSHEET_ID")
	setString(&c.Catalog.SheetsBaseURL, "SHEETS_BASE_URL")
	setString(&c.Catalog.ProductsSheet, "PRODUCTS_SHEET")
	setString(&c.Catalog.FeedURL, "CATALOG_FEED_URL")

	setString(&c.Orders.Backend, "ORDERS_BACKEND")
	setString(&c.Orders.AppScriptURL, "APPS_SCRIPT_URL")
	setString(&c.Orders.OrdersSheet, "ORDERS_SHEET")

	setString(&c.LocalStore.Backend, "LOCAL_STORE_BACKEND")
	setString(&c.LocalStore.Namespace, "LOCAL_STORE_NAMESPACE")
	setString(&c.LocalStore.RedisURL, "REDIS_URL")

	setString(&c.Postgres.DSN, "POSTGRES_DSN")

	setString(&c.Temporal.Address, "TEMPORAL_ADDRESS")
	setString(&c.Temporal.Namespace, "TEMPORAL_NAMESPACE")
	if raw, ok := lookup("TEMPORAL_DISABLED"); ok {
		c.Temporal.Disabled = isTruthy(raw)
	}

	setString(&c.Payments.RazorpayKey, "RAZORPAY_KEY")
	setString(&c.Payments.ThemeColor, "RAZORPAY_THEME_COLOR")

	setString(&c.Notifications.MessagingBaseURL, "MESSAGING_BASE_URL")
	setString(&c.Notifications.BusinessNumber, "BUSINESS_WHATSAPP_NUMBER")
	setString(&c.Notifications.WhatsApp.BaseURL, "WHATSAPP_API_URL")
	setString(&c.Notifications.WhatsApp.Path, "WHATSAPP_PATH")
	setString(&c.Notifications.WhatsApp.Username, "WHATSAPP_USERNAME")
	setString(&c.Notifications.WhatsApp.Password, "WHATSAPP_PASSWORD")

	var errs []error
	errs = append(errs,
		setDuration(&c.Catalog.FetchTimeout, "CATALOG_FETCH_TIMEOUT"),
		setDuration(&c.Orders.SubmitTimeout, "ORDER_SUBMIT_TIMEOUT"),
		setDuration(&c.Orders.HistoryTimeout, "ORDER_HISTORY_TIMEOUT"),
		setInt(&c.Postgres.MaxOpenConns, "POSTGRES_MAX_OPEN_CONNS"),
	)
	return errors.Join(errs...)
}

// Validate checks that each selected backend has what it needs.
func (c Config) Validate() error {
	var errs []error
	switch c.Catalog.Backend {
	case BackendSheets:
		if c.Catalog.SpreadsheetID == "" {
			errs = append(errs, errors.New("SPREADSHEET_ID is required for the sheets catalog"))
		}
	case BackendJSONFeed:
		if c.Catalog.FeedURL == "" {
			errs = append(errs, errors.New("CATALOG_FEED_URL is required for the jsonfeed catalog"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown catalog backend %q", c.Catalog.Backend))
	}
	switch c.Orders.Backend {
	case BackendAppScript:
		if c.Orders.AppScriptURL == "" {
			errs = append(errs, errors.New("APPS_SCRIPT_URL is required for the appscript order store"))
		}
		if c.Catalog.SpreadsheetID == "" {
			errs = append(errs, errors.New("SPREADSHEET_ID is required to read order history"))
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres order store"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown orders backend %q", c.Orders.Backend))
	}
	switch c.LocalStore.Backend {
	case BackendRedis:
		if c.LocalStore.RedisURL == "" {
			errs = append(errs, errors.New("REDIS_URL is required for the redis local store"))
		}
	case BackendPostgres:
		if c.Postgres.DSN == "" {
			errs = append(errs, errors.New("POSTGRES_DSN is required for the postgres local store"))
		}
	case BackendMemory:
	default:
		errs = append(errs, fmt.Errorf("unknown local store backend %q", c.LocalStore.Backend))
	}
	if c.Catalog.FetchTimeout <= 0 || c.Orders.SubmitTimeout <= 0 || c.Orders.HistoryTimeout <= 0 {
		errs = append(errs, errors.New("timeouts must be positive"))
	}
	return errors.Join(errs...)
}

// UsesPostgres reports whether any backend needs a database connection.
func (c Config) UsesPostgres() bool {
	return c.Orders.Backend == BackendPostgres || c.LocalStore.Backend == BackendPostgres
}

func lookup(key string) (string, bool) {
	val := strings.TrimSpace(os.Getenv(key))
	return val, val != ""
}

func setString(dst *string, key string) {
	if val, ok := lookup(key); ok {
		*dst = val
	}
}

func setDuration(dst *time.Duration, key string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fmt.Errorf("%s must be a positive duration such as 10s", key)
	}
	*dst = d
	return nil
}

func setInt(dst *int, key string) error {
	raw, ok := lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fmt.Errorf("%s must be a non-negative integer", key)
	}
	*dst = n
	return nil
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
