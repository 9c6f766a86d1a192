package config

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Port              int
	DatabaseURL       string
	UploadDir         string
	ExportDir         string
	AllowedExtensions []string
	SessionSecret     string
	SessionTTLMinutes int
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RateCacheTTLSecs  int
}

func Load() (Config, error) {
	envPath := filepath.Join(".", ".env")

	values := map[string]string{}
	if _, err := os.Stat(envPath); err == nil {
		fileValues, err := loadDotEnvFile(envPath)
		if err != nil {
			return Config{}, err
		}
		values = fileValues
	} else if err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("stat %s: %w", envPath, err)
	}

	lookup := func(key string) string {
		return firstNonEmpty(os.Getenv(key), values[key])
	}

	cfg := Config{
		Port:              8080,
		UploadDir:         "uploads",
		ExportDir:         "exports",
		AllowedExtensions: []string{"xlsx"},
		SessionTTLMinutes: 480,
		RateCacheTTLSecs:  60,
	}

	if portRaw := lookup("PORT"); portRaw != "" {
		port, err := strconv.Atoi(portRaw)
		if err != nil || port <= 0 {
			return Config{}, fmt.Errorf("invalid PORT: %q", portRaw)
		}
		cfg.Port = port
	}

	cfg.DatabaseURL = lookup("DATABASE_URL")
	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("DATABASE_URL is required (environment variable or .env)")
	}

	cfg.SessionSecret = lookup("SESSION_SECRET")
	if cfg.SessionSecret == "" {
		return Config{}, fmt.Errorf("SESSION_SECRET is required (environment variable or .env)")
	}

	if dir := lookup("UPLOAD_DIR"); dir != "" {
		cfg.UploadDir = dir
	}
	if dir := lookup("EXPORT_DIR"); dir != "" {
		cfg.ExportDir = dir
	}

	if raw := lookup("ALLOWED_EXTENSIONS"); raw != "" {
		exts := make([]string, 0, 2)
		for _, ext := range strings.Split(raw, ",") {
			ext = strings.TrimPrefix(strings.ToLower(strings.TrimSpace(ext)), ".")
			if ext != "" {
				exts = append(exts, ext)
			}
		}
		if len(exts) == 0 {
			return Config{}, fmt.Errorf("invalid ALLOWED_EXTENSIONS: %q", raw)
		}
		cfg.AllowedExtensions = exts
	}

	if raw := lookup("SESSION_TTL_MINUTES"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 {
			return Config{}, fmt.Errorf("invalid SESSION_TTL_MINUTES: %q", raw)
		}
		cfg.SessionTTLMinutes = minutes
	}

	cfg.RedisAddr = lookup("REDIS_ADDR")
	cfg.RedisPassword = lookup("REDIS_PASSWORD")
	if raw := lookup("REDIS_DB"); raw != "" {
		db, err := strconv.Atoi(raw)
		if err != nil || db < 0 {
			return Config{}, fmt.Errorf("invalid REDIS_DB: %q", raw)
		}
		cfg.RedisDB = db
	}

	if raw := lookup("RATE_CACHE_TTL_SECONDS"); raw != "" {
		secs, err := strconv.Atoi(raw)
		if err != nil || secs <= 0 {
			return Config{}, fmt.Errorf("invalid RATE_CACHE_TTL_SECONDS: %q", raw)
		}
		cfg.RateCacheTTLSecs = secs
	}

	return cfg, nil
}

func firstNonEmpty(candidates ...string) string {
	for _, candidate := range candidates {
		if value := strings.TrimSpace(candidate); value != "" {
			return value
		}
	}
	return ""
}

func loadDotEnvFile(path string) (map[string]string, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s not found; create it from .env.example", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	values := map[string]string{}
	scanner := bufio.NewScanner(file)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		keyValue := strings.SplitN(line, "=", 2)
		if len(keyValue) != 2 {
			return nil, fmt.Errorf("invalid .env line %d: %q", lineNo, line)
		}

		key := strings.TrimSpace(keyValue[0])
		value := strings.TrimSpace(keyValue[1])
		if key == "" {
			return nil, fmt.Errorf("invalid .env line %d: empty key", lineNo)
		}

		if strings.HasPrefix(key, "export ") {
			key = strings.TrimSpace(strings.TrimPrefix(key, "export "))
		}

		if len(value) >= 2 {
			if (value[0] == '\'' && value[len(value)-1] == '\'') ||
				(value[0] == '"' && value[len(value)-1] == '"') {
				value = value[1 : len(value)-1]
			}
		}

		values[key] = value
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	return values, nil
}
