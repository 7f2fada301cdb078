package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var ErrInvalidInput = errors.New("invalid input")

var validate = validator.New()

type HabitInput struct {
	Name        string `json:"name" validate:"required,max=80"`
	Description string `json:"description" validate:"max=280"`
	Points      int    `json:"points" validate:"gt=0,lte=1000"`
	Category    string `json:"category" validate:"required,oneof=health productivity mindfulness fitness other"`
}

type TeamInput struct {
	Name  string `json:"name" validate:"required,max=64"`
	Color string `json:"color" validate:"omitempty,hexcolor"`
}

type SettingsInput struct {
	Name        string  `json:"name" validate:"required,max=120"`
	StartDate   string  `json:"start_date" validate:"required"`
	EndDate     string  `json:"end_date" validate:"required"`
	IsActive    bool    `json:"is_active"`
	Rules       string  `json:"rules" validate:"max=4000"`
	StakeAmount float64 `json:"stake_amount" validate:"gte=0,lte=1000000"`
}

type AvatarInput struct {
	AvatarURL string `json:"avatar_url" validate:"required,max=2048,http_url"`
}

// ValidateInput checks validator tags and reports the failing fields.
func ValidateInput(value any) error {
	err := validate.Struct(value)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	fields := make([]string, 0, len(fieldErrors))
	for _, fieldError := range fieldErrors {
		fields = append(fields, strings.ToLower(fieldError.Field())+":"+fieldError.Tag())
	}
	return fmt.Errorf("%w: %s", ErrInvalidInput, strings.Join(fields, ", "))
}

func trimHabitInput(input HabitInput) HabitInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Description = strings.TrimSpace(input.Description)
	input.Category = strings.ToLower(strings.TrimSpace(input.Category))
	return input
}

func trimTeamInput(input TeamInput) TeamInput {
	input.Name = strings.TrimSpace(input.Name)
	input.Color = strings.TrimSpace(input.Color)
	return input
}
