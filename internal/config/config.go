package config // package config loads application configuration from environment variables

import (
	"log"     // log is used to report configuration errors and halt execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses interval durations

	"github.com/joho/godotenv" // godotenv loads a local .env file when present
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  Strings for identifiers and secrets, ints for
// durations and costs.  Everything is read once at startup; there is no
// hot-reload.
type Config struct {
	Env          string // application environment (e.g. "dev", "prod")
	Port         string // HTTP port to listen on
	DBUser       string // database username
	DBPass       string // database password (optional)
	DBHost       string // database host address
	DBPort       string // database port number
	DBName       string // database name
	JWTSecret    string // secret used to sign dashboard JWTs
	AccessTTLMin int    // dashboard token time-to-live in minutes
	BcryptCost   int    // bcrypt cost for dashboard password hashing

	DiscordToken string // Discord bot token
	CommandGuild string // guild to scope slash commands to; empty registers globally

	ImagesDir         string        // scratch directory for downloaded attendance images
	ReconcileInterval time.Duration // how often stored membership is re-derived from Discord
	ReminderInterval  time.Duration // how often pending event reminders are swept
}

// Load reads configuration values from environment variables and returns a
// Config.  A .env file is loaded first if one exists.  Required variables
// are enforced by must() and missing values cause the program to exit with
// a fatal log message.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		Env:          getenv("APP_ENV", "dev"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),

		DiscordToken: must("DISCORD_TOKEN"),
		CommandGuild: os.Getenv("COMMAND_GUILD_ID"),

		ImagesDir:         getenv("IMAGES_DIR", "./images"),
		ReconcileInterval: dur("RECONCILE_INTERVAL", time.Minute),
		ReminderInterval:  dur("REMINDER_INTERVAL", time.Minute),
	}
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func dur(key string, def time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration for %s: %q", key, v)
	}
	return d
}
