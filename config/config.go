package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	DB       DBConfig
	Telegram TelegramConfig
	Receipt  ReceiptConfig
	Stations StationConfig
	Billing  BillingConfig
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Database string
}

type TelegramConfig struct {
	Token        string
	MessageToken string // token for pushing KOT tickets to station chats
}

type ReceiptConfig struct {
	VenueName string
	APIURL    string // empty disables the remote generator (always fallback)
	TimeoutMs int
}

type StationConfig struct {
	KitchenChatID int64
	BarChatID     int64
}

type BillingConfig struct {
	TaxPercent int64
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	port, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	timeoutMs, _ := strconv.Atoi(getEnv("RECEIPT_TIMEOUT_MS", "4000"))
	taxPercent, _ := strconv.ParseInt(getEnv("TAX_PERCENT", "5"), 10, 64)
	kitchenChat, _ := strconv.ParseInt(getEnv("KITCHEN_CHAT_ID", "0"), 10, 64)
	barChat, _ := strconv.ParseInt(getEnv("BAR_CHAT_ID", "0"), 10, 64)

	return &Config{
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     port,
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Database: getEnv("DB_NAME", "cafepos"),
		},
		Telegram: TelegramConfig{
			Token:        getEnv("TOKEN", ""),
			MessageToken: getEnv("MESSAGE_TOKEN", ""),
		},
		Receipt: ReceiptConfig{
			VenueName: getEnv("VENUE_NAME", "Cafe"),
			APIURL:    getEnv("RECEIPT_API_URL", ""),
			TimeoutMs: timeoutMs,
		},
		Stations: StationConfig{
			KitchenChatID: kitchenChat,
			BarChatID:     barChat,
		},
		Billing: BillingConfig{
			TaxPercent: taxPercent,
		},
	}, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
