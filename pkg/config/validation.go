package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// validate is the singleton validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Validate validates the configuration using struct tags plus custom rules
// that cannot be expressed in tags.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return formatValidationError(err)
	}

	if err := validateCustomRules(cfg); err != nil {
		return err
	}

	return nil
}

// validateCustomRules performs custom validation beyond struct tags.
func validateCustomRules(cfg *Config) error {
	// The badger grant store needs somewhere to put its files.
	if cfg.Grants.Type == "badger" {
		if path, _ := cfg.Grants.Badger["db_path"].(string); path == "" {
			return fmt.Errorf("grants.badger: db_path is required")
		}
	}

	// The S3 provider cannot guess its bucket.
	if cfg.Provider.Type == "s3" {
		if bucket, _ := cfg.Provider.S3["bucket"].(string); bucket == "" {
			return fmt.Errorf("provider.s3: bucket is required")
		}
		if region, _ := cfg.Provider.S3["region"].(string); region == "" {
			return fmt.Errorf("provider.s3: region is required")
		}
	}

	return nil
}

// formatValidationError converts validator errors into user-friendly
// messages.
func formatValidationError(err error) error {
	if validationErrs, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrs) > 0 {
			e := validationErrs[0]
			return fmt.Errorf("%s: validation failed on '%s' tag (value: %v)",
				e.Namespace(), e.Tag(), e.Value())
		}
	}
	return err
}
