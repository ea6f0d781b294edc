package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	BackendAuto     = "auto"
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
	BackendMemory   = "memory"
	BackendNone     = "none"
)

const (
	MessagingAuto     = "auto"
	MessagingWhatsApp = "whatsapp"
	MessagingTwilio   = "twilio"
	MessagingLog      = "log"
)

// DefaultBookingTimes are the start times offered on the public booking page.
var DefaultBookingTimes = []string{"09:00", "09:30", "10:00", "11:00", "14:00", "14:30", "15:00", "16:00", "16:30"}

// Config centralises all environment configuration.
type Config struct {
	Port      string `env:"PORT,default=8080"`
	GinMode   string `env:"GIN_MODE,default=debug"`
	LogLevel  string `env:"LOG_LEVEL,default=info"`
	LogFormat string `env:"LOG_FORMAT,default=text"`
	Timezone  string `env:"TIMEZONE,default=America/Sao_Paulo"`

	DataBackend    string        `env:"DATA_BACKEND,default=auto"`
	DatabaseURL    string        `env:"DB_URL"`
	AutoMigrate    bool          `env:"AUTO_MIGRATE,default=true"`
	SupabaseURL    string        `env:"SUPABASE_URL"`
	SupabaseKey    string        `env:"SUPABASE_KEY"`
	GatewayTimeout time.Duration `env:"GATEWAY_TIMEOUT,default=30s"`
	DefaultSalonID string        `env:"DEFAULT_SALON_ID,default=550e8400-e29b-41d4-a716-446655440000"`

	JWTSecret      string `env:"JWT_SECRET"`
	JWTExpiryHours int    `env:"JWT_EXPIRY_HOURS,default=24"`
	CORSOrigins    string `env:"CORS_ORIGINS,default=http://localhost:3000"`

	MessagingProvider     string `env:"MESSAGING_PROVIDER,default=auto"`
	WhatsAppPhoneNumberID string `env:"WHATSAPP_PHONE_NUMBER_ID"`
	WhatsAppAccessToken   string `env:"WHATSAPP_ACCESS_TOKEN"`
	WhatsAppAPIURL        string `env:"WHATSAPP_API_URL,default=https://graph.facebook.com/v18.0"`
	WhatsAppLanguage      string `env:"WHATSAPP_LANGUAGE,default=pt_BR"`
	TwilioAccountSID      string `env:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken       string `env:"TWILIO_AUTH_TOKEN"`
	TwilioWhatsAppNumber  string `env:"TWILIO_WHATSAPP_NUMBER"`

	StripeSecretKey string `env:"STRIPE_SECRET_KEY"`
	PaymentCurrency string `env:"PAYMENT_CURRENCY,default=brl"`

	RemindersEnabled bool   `env:"REMINDERS_ENABLED,default=true"`
	ReminderCron     string `env:"REMINDER_CRON,default=0 9 * * *"`

	BookingRatePerSecond float64 `env:"BOOKING_RATE_PER_SECOND,default=1"`
	BookingBurst         int     `env:"BOOKING_BURST,default=5"`
	// Comma separated HH:MM list; DefaultBookingTimes when empty.
	BookingTimes string `env:"BOOKING_TIMES"`
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := uuid.Parse(c.DefaultSalonID); err != nil {
		return fmt.Errorf("DEFAULT_SALON_ID: %w", err)
	}
	switch c.DataBackend {
	case BackendAuto, BackendPostgres, BackendSupabase, BackendMemory, BackendNone:
	default:
		return fmt.Errorf("DATA_BACKEND: unknown backend %q", c.DataBackend)
	}
	if c.DataBackend == BackendPostgres && c.DatabaseURL == "" {
		return errors.New("DATA_BACKEND=postgres requires DB_URL")
	}
	if c.DataBackend == BackendSupabase && (c.SupabaseURL == "" || c.SupabaseKey == "") {
		return errors.New("DATA_BACKEND=supabase requires SUPABASE_URL and SUPABASE_KEY")
	}
	switch c.MessagingProvider {
	case MessagingAuto, MessagingWhatsApp, MessagingTwilio, MessagingLog:
	default:
		return fmt.Errorf("MESSAGING_PROVIDER: unknown provider %q", c.MessagingProvider)
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("TIMEZONE: %w", err)
	}
	if c.JWTExpiryHours <= 0 {
		c.JWTExpiryHours = 24
	}
	return nil
}

// Backend resolves DATA_BACKEND=auto against the credentials that are set.
func (c *Config) Backend() string {
	if c.DataBackend != BackendAuto {
		return c.DataBackend
	}
	switch {
	case c.SupabaseURL != "" && c.SupabaseKey != "":
		return BackendSupabase
	case c.DatabaseURL != "":
		return BackendPostgres
	}
	return BackendNone
}

// Messaging resolves MESSAGING_PROVIDER=auto: WhatsApp Cloud API when its
// credentials are set, then Twilio, then the log-only sender.
func (c *Config) Messaging() string {
	if c.MessagingProvider != MessagingAuto {
		return c.MessagingProvider
	}
	switch {
	case c.WhatsAppAccessToken != "" && c.WhatsAppPhoneNumberID != "":
		return MessagingWhatsApp
	case c.TwilioAccountSID != "" && c.TwilioAuthToken != "":
		return MessagingTwilio
	}
	return MessagingLog
}

func (c *Config) SalonID() uuid.UUID {
	id, err := uuid.Parse(c.DefaultSalonID)
	if err != nil {
		return uuid.Nil
	}
	return id
}

func (c *Config) AllowedOrigins() []string {
	return splitList(c.CORSOrigins)
}

func (c *Config) BookingSlots() []string {
	if slots := splitList(c.BookingTimes); len(slots) > 0 {
		return slots
	}
	return DefaultBookingTimes
}

// Location is the zone that decides what "today" means for the salons.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c *Config) JWTExpiry() time.Duration {
	return time.Duration(c.JWTExpiryHours) * time.Hour
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
