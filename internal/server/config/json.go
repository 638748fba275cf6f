package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/mweller/jotter/internal/flagx"
)

// jsonConfig is an intermediate DTO used only for reading JSON configuration
// files. Duration fields accept both "15m"-style strings and integer
// nanoseconds. After unmarshalling, its fields are copied into the runtime
// Config.
type jsonConfig struct {
	EndpointAddrHTTP             string       `json:"endpoint_addr_http"`
	DatabaseDSN                  string       `json:"database_dsn"`
	SecretKey                    string       `json:"secret_key"`
	AccessTokenValidityDuration  jsonDuration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration jsonDuration `json:"refresh_token_validity_duration"`
	S3AccessKey                  string       `json:"s3_access_key"`
	S3SecretKey                  string       `json:"s3_secret_key"`
	S3Bucket                     string       `json:"s3_bucket"`
	S3Region                     string       `json:"s3_region"`
	S3BaseEndpoint               string       `json:"s3_base_endpoint"`
	S3PublicBaseURL              string       `json:"s3_public_base_url"`
	InferenceToken               string       `json:"inference_token"`
	ChatURL                      string       `json:"chat_url"`
	ChatModel                    string       `json:"chat_model"`
	TranscribeURL                string       `json:"transcribe_url"`
	TranscribeModel              string       `json:"transcribe_model"`
}

type jsonDuration struct {
	time.Duration
}

func (d *jsonDuration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	switch value := v.(type) {
	case float64:
		d.Duration = time.Duration(value)
		return nil
	case string:
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		d.Duration = parsed
		return nil
	default:
		return json.Unmarshal(b, &d.Duration)
	}
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flags into the provided Config. If no flag is set, nothing is
// loaded. Empty fields in the file leave the current value untouched; an
// unreadable or invalid file panics.
func parseJson(config *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	c := &jsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIfNotEmpty := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}

	setIfNotEmpty(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	setIfNotEmpty(&config.DatabaseDSN, c.DatabaseDSN)
	setIfNotEmpty(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration.Duration != 0 {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	setIfNotEmpty(&config.S3AccessKey, c.S3AccessKey)
	setIfNotEmpty(&config.S3SecretKey, c.S3SecretKey)
	setIfNotEmpty(&config.S3Bucket, c.S3Bucket)
	setIfNotEmpty(&config.S3Region, c.S3Region)
	setIfNotEmpty(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIfNotEmpty(&config.S3PublicBaseURL, c.S3PublicBaseURL)
	setIfNotEmpty(&config.InferenceToken, c.InferenceToken)
	setIfNotEmpty(&config.ChatURL, c.ChatURL)
	setIfNotEmpty(&config.ChatModel, c.ChatModel)
	setIfNotEmpty(&config.TranscribeURL, c.TranscribeURL)
	setIfNotEmpty(&config.TranscribeModel, c.TranscribeModel)
}
