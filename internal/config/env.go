package config

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

// LoadEnv loads variables from a .env file in the working directory.
// Variables already present in the environment are left untouched.
// The returned error satisfies os.IsNotExist when there is no .env file.
func LoadEnv() error {
	return godotenv.Load()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// process fills target from the lookuper and validates the result.
// A nil lookuper reads the process environment.
func process(ctx context.Context, l envconfig.Lookuper, target any) error {
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{
		Target:   target,
		Lookuper: l,
	}); err != nil {
		return err
	}
	if err := validate.Struct(target); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
