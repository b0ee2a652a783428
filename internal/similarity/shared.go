package similarity

import "github.com/go-playground/validator/v10"

// Package-level validator for configuration structs.
var validate = validator.New()
