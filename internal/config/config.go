package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
    "time"    // time validates the fiscal start month range
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers, ints for rates and months.
type Config struct {
    Env              string // application environment (e.g. "dev", "prod")
    Port             string // HTTP port to listen on
    DBUser           string // database username
    DBPass           string // database password (optional)
    DBHost           string // database host address
    DBPort           string // database port number
    DBName           string // database name
    TaxRatePercent   int    // maintenance tax rate as a whole percentage
    FiscalStartMonth int    // first month of the fiscal year (1-12)
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  The tax rate and
// fiscal start month have defaults (7% and October) and are validated.
func Load() Config {
    cfg := Config{
        Env:              must("APP_ENV"),                        // environment (dev/test/prod)
        Port:             must("APP_PORT"),                       // port to bind the HTTP server
        DBUser:           must("DB_USER"),                        // database user
        DBPass:           os.Getenv("DB_PASS"),                   // database password (empty allowed)
        DBHost:           must("DB_HOST"),                        // database host
        DBPort:           must("DB_PORT"),                        // database port
        DBName:           must("DB_NAME"),                        // database name
        TaxRatePercent:   getenvInt("TAX_RATE_PERCENT", 7),       // repair tax percentage
        FiscalStartMonth: getenvInt("FISCAL_START_MONTH", 10),    // fiscal year start month
    }
    if cfg.TaxRatePercent < 0 || cfg.TaxRatePercent > 100 { // sanity-check the percentage
        log.Fatalf("invalid TAX_RATE_PERCENT: %d", cfg.TaxRatePercent)
    }
    if m := time.Month(cfg.FiscalStartMonth); m < time.January || m > time.December { // must be a real month
        log.Fatalf("invalid FISCAL_START_MONTH: %d", cfg.FiscalStartMonth)
    }
    return cfg
}

// TaxRate converts the whole-percentage tax rate into a fraction, e.g. 7 -> 0.07.
func (c Config) TaxRate() float64 { return float64(c.TaxRatePercent) / 100 }

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// getenvInt reads an optional integer environment variable, returning the
// default when unset and exiting when the value does not parse.
func getenvInt(key string, def int) int {
    s := os.Getenv(key)
    if s == "" {
        return def
    }
    n, err := strconv.Atoi(s)
    if err != nil {
        log.Fatalf("invalid int for %s: %q", key, s)
    }
    return n
}
