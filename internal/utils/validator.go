package utils

import "github.com/go-playground/validator/v10"

// Validate — общий валидатор тел запросов
var Validate = validator.New()
