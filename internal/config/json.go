package config

import (
	"encoding/json"
	"os"

	"github.com/planloop/planloop/internal/flagx"
	"github.com/planloop/planloop/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "30s"
// or as integer nanoseconds. After parsing, values are copied into the
// runtime Config.
type JsonConfig struct {
	DBPath                   string         `json:"db_path"`
	FirestoreProjectID       string         `json:"firestore_project_id"`
	FirestoreCredentialsFile string         `json:"firestore_credentials_file"`
	IDTokenFile              string         `json:"id_token_file"`
	PushInterval             timex.Duration `json:"push_interval"`
	StartupDelay             timex.Duration `json:"startup_delay"`
	MaxBatchSize             int            `json:"max_batch_size"`
	S3Region                 string         `json:"s3_region"`
	S3Bucket                 string         `json:"s3_bucket"`
	S3BaseEndpoint           string         `json:"s3_base_endpoint"`
	S3AccessKey              string         `json:"s3_access_key"`
	S3SecretKey              string         `json:"s3_secret_key"`
	LogLevel                 string         `json:"log_level"`
}

// parseJson overlays Config with values loaded from a JSON file resolved via
// the -c/-config flags. Missing file path means no JSON is loaded. Read or
// unmarshal errors panic; intended usage is defaults -> parseJson ->
// parseFlags, where later stages override earlier ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.DBPath != "" {
		cfg.DBPath = jc.DBPath
	}
	if jc.FirestoreProjectID != "" {
		cfg.FirestoreProjectID = jc.FirestoreProjectID
	}
	if jc.FirestoreCredentialsFile != "" {
		cfg.FirestoreCredentialsFile = jc.FirestoreCredentialsFile
	}
	if jc.IDTokenFile != "" {
		cfg.IDTokenFile = jc.IDTokenFile
	}
	if jc.PushInterval.Duration != 0 {
		cfg.PushInterval = jc.PushInterval.Duration
	}
	if jc.StartupDelay.Duration != 0 {
		cfg.StartupDelay = jc.StartupDelay.Duration
	}
	if jc.MaxBatchSize != 0 {
		cfg.MaxBatchSize = jc.MaxBatchSize
	}
	if jc.S3Region != "" {
		cfg.S3Region = jc.S3Region
	}
	if jc.S3Bucket != "" {
		cfg.S3Bucket = jc.S3Bucket
	}
	if jc.S3BaseEndpoint != "" {
		cfg.S3BaseEndpoint = jc.S3BaseEndpoint
	}
	if jc.S3AccessKey != "" {
		cfg.S3AccessKey = jc.S3AccessKey
	}
	if jc.S3SecretKey != "" {
		cfg.S3SecretKey = jc.S3SecretKey
	}
	if jc.LogLevel != "" {
		cfg.LogLevel = jc.LogLevel
	}
}
