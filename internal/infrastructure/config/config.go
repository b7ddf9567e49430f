package config

import (
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultPort                     = "8080"
	defaultOpenAPISpec              = "api/openapi.yaml"
	defaultShutdownTimeout          = 10 * time.Second
	defaultDBReadinessTimeout       = 30 * time.Second
	defaultDBReadinessRetryInterval = 2 * time.Second
	defaultMigrationsPath           = "internal/adapters/outbound/persistence/postgresql/migrations"
	defaultPartnerHTTPTimeout       = 30 * time.Second

	defaultRelayPollInterval       = 5 * time.Second
	defaultRelayBatchSize          = 10
	defaultRelayLeaseDuration      = 2 * time.Minute
	defaultRelayFetchBackoffBase   = 60 * time.Second
	defaultRelayForwardBackoffBase = 30 * time.Second
	defaultRelayRetryBudget        = 3
)

type ConfigError struct {
	Code     string
	Message  string
	Metadata map[string]string
}

func (e *ConfigError) Error() string {
	if e == nil {
		return ""
	}

	return e.Message
}

type Config struct {
	Port                     string
	OpenAPISpecPath          string
	ShutdownTimeout          time.Duration
	DatabaseURL              string
	DatabaseTarget           string
	DBReadinessTimeout       time.Duration
	DBReadinessRetryInterval time.Duration
	MigrationsPath           string

	PartnerAPIBaseURL    string
	PartnerAPICredential string
	PartnerHTTPTimeout   time.Duration
	SAPBaseURL           string

	RelayWorkerEnabled      bool
	RelayPollInterval       time.Duration
	RelayBatchSize          int
	RelayWorkerID           string
	RelayLeaseDuration      time.Duration
	RelayFetchBackoffBase   time.Duration
	RelayForwardBackoffBase time.Duration
	RelayRetryBudget        int
}

func LoadConfig() (Config, *ConfigError) {
	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_DATABASE_URL_REQUIRED",
			Message: "DATABASE_URL is required",
		}
	}

	databaseTarget, parseErr := parseDatabaseTarget(databaseURL)
	if parseErr != nil {
		return Config{}, parseErr
	}

	partnerBaseURL := strings.TrimRight(strings.TrimSpace(os.Getenv("PARTNER_API_BASE_URL")), "/")
	if partnerBaseURL == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_PARTNER_API_BASE_URL_REQUIRED",
			Message: "PARTNER_API_BASE_URL is required",
		}
	}
	if parsed, err := url.Parse(partnerBaseURL); err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_PARTNER_API_BASE_URL_INVALID",
			Message: "PARTNER_API_BASE_URL must be an absolute URL",
		}
	}

	partnerCredential := strings.TrimSpace(os.Getenv("PARTNER_API_CREDENTIAL"))
	if partnerCredential == "" {
		return Config{}, &ConfigError{
			Code:    "CONFIG_PARTNER_API_CREDENTIAL_REQUIRED",
			Message: "PARTNER_API_CREDENTIAL is required",
		}
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = defaultPort
	}

	openAPISpecPath := os.Getenv("OPENAPI_SPEC_PATH")
	if openAPISpecPath == "" {
		openAPISpecPath = defaultOpenAPISpec
	}

	migrationsPath := strings.TrimSpace(os.Getenv("MIGRATIONS_PATH"))
	if migrationsPath == "" {
		migrationsPath = defaultMigrationsPath
	}

	relayEnabled := true
	rawRelayEnabled := strings.TrimSpace(os.Getenv("RELAY_WORKER_ENABLED"))
	if rawRelayEnabled != "" {
		parsedEnabled, err := strconv.ParseBool(rawRelayEnabled)
		if err != nil {
			return Config{}, &ConfigError{
				Code:    "CONFIG_RELAY_WORKER_ENABLED_INVALID",
				Message: "RELAY_WORKER_ENABLED must be a boolean",
			}
		}
		relayEnabled = parsedEnabled
	}

	relayPollInterval, cfgErr := durationFromEnv("RELAY_POLL_INTERVAL", defaultRelayPollInterval)
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	relayBatchSize, cfgErr := positiveIntFromEnv("RELAY_BATCH_SIZE", defaultRelayBatchSize)
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	relayWorkerID := strings.TrimSpace(os.Getenv("RELAY_WORKER_ID"))
	if relayWorkerID == "" {
		hostname, err := os.Hostname()
		if err != nil || strings.TrimSpace(hostname) == "" {
			hostname = "relay-worker"
		}
		relayWorkerID = hostname + "-" + strconv.Itoa(os.Getpid())
	}

	relayLeaseDuration, cfgErr := durationFromEnv("RELAY_LEASE_DURATION", defaultRelayLeaseDuration)
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	relayFetchBackoffBase, cfgErr := durationFromEnv("RELAY_FETCH_BACKOFF_BASE", defaultRelayFetchBackoffBase)
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	relayForwardBackoffBase, cfgErr := durationFromEnv("RELAY_FORWARD_BACKOFF_BASE", defaultRelayForwardBackoffBase)
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	relayRetryBudget, cfgErr := positiveIntFromEnv("RELAY_RETRY_BUDGET", defaultRelayRetryBudget)
	if cfgErr != nil {
		return Config{}, cfgErr
	}

	return Config{
		Port:                     port,
		OpenAPISpecPath:          openAPISpecPath,
		ShutdownTimeout:          defaultShutdownTimeout,
		DatabaseURL:              databaseURL,
		DatabaseTarget:           databaseTarget,
		DBReadinessTimeout:       defaultDBReadinessTimeout,
		DBReadinessRetryInterval: defaultDBReadinessRetryInterval,
		MigrationsPath:           migrationsPath,
		PartnerAPIBaseURL:        partnerBaseURL,
		PartnerAPICredential:     partnerCredential,
		PartnerHTTPTimeout:       defaultPartnerHTTPTimeout,
		SAPBaseURL:               strings.TrimSpace(os.Getenv("SAP_BASE_URL")),
		RelayWorkerEnabled:       relayEnabled,
		RelayPollInterval:        relayPollInterval,
		RelayBatchSize:           relayBatchSize,
		RelayWorkerID:            relayWorkerID,
		RelayLeaseDuration:       relayLeaseDuration,
		RelayFetchBackoffBase:    relayFetchBackoffBase,
		RelayForwardBackoffBase:  relayForwardBackoffBase,
		RelayRetryBudget:         relayRetryBudget,
	}, nil
}

func (c Config) Address() string {
	return ":" + c.Port
}

func parseDatabaseTarget(databaseURL string) (string, *ConfigError) {
	parsed, err := url.Parse(databaseURL)
	if err != nil {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_INVALID",
			Message: "DATABASE_URL is invalid",
		}
	}

	switch parsed.Scheme {
	case "postgres", "postgresql":
	default:
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_SCHEME_INVALID",
			Message: "DATABASE_URL must use postgres or postgresql scheme",
		}
	}

	if parsed.Host == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_URL_HOST_MISSING",
			Message: "DATABASE_URL host is required",
		}
	}

	databaseName := strings.TrimPrefix(parsed.Path, "/")
	if databaseName == "" {
		return "", &ConfigError{
			Code:    "CONFIG_DATABASE_NAME_MISSING",
			Message: "DATABASE_URL database name is required",
		}
	}

	return parsed.Host + "/" + databaseName, nil
}

func durationFromEnv(name string, fallback time.Duration) (time.Duration, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return 0, &ConfigError{
			Code:     "CONFIG_" + name + "_INVALID",
			Message:  name + " must be a positive duration",
			Metadata: map[string]string{"value": raw},
		}
	}
	return parsed, nil
}

func positiveIntFromEnv(name string, fallback int) (int, *ConfigError) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback, nil
	}

	parsed, err := strconv.Atoi(raw)
	if err != nil || parsed <= 0 {
		return 0, &ConfigError{
			Code:     "CONFIG_" + name + "_INVALID",
			Message:  name + " must be a positive integer",
			Metadata: map[string]string{"value": raw},
		}
	}
	return parsed, nil
}
