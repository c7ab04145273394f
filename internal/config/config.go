package config

import "github.com/caarlos0/env/v9"

type Config struct {
	Port       string `env:"PORT" envDefault:"8080"`
	DBUser     string `env:"DB_USER,required"`
	DBPassword string `env:"DB_PASSWORD,required"`
	DBHost     string `env:"DB_HOST,required"` // e.g. tcp(host:3306) or unix(/cloudsql/instance)
	DBName     string `env:"DB_NAME,required"`
	DBPort     string `env:"DB_PORT" envDefault:"3306"`

	InstanceConnectionName string `env:"INSTANCE_CONNECTION_NAME"`

	GeminiAPIKey     string `env:"GEMINI_API_KEY"`
	GeminiImageModel string `env:"GEMINI_IMAGE_MODEL" envDefault:"gemini-2.5-flash-image-preview"`

	StorageBucket     string `env:"STORAGE_BUCKET,required"`
	StorageCredsFile  string `env:"STORAGE_CREDENTIALS_FILE"`
	FirebaseProjectID string `env:"FIREBASE_PROJECT_ID"`

	// GenerationTimeoutSeconds bounds a single outbound generation call.
	GenerationTimeoutSeconds int `env:"GENERATION_TIMEOUT_SECONDS" envDefault:"60"`

	// ImageFallbackEnabled turns on the local foreground-extraction filter
	// for the flows that allow it when the remote service returns no image.
	ImageFallbackEnabled bool `env:"IMAGE_FALLBACK_ENABLED" envDefault:"true"`
}

func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
