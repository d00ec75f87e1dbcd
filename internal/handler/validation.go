package handler

import (
	"regexp"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Slot tokens are fixed-format "HH:MM-HH:MM" strings drawn from the slot
// catalog, not arbitrary ranges.
var slotTokenPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]-([01][0-9]|2[0-3]):[0-5][0-9]$`)

// RegisterValidations installs custom binding validations. Call once at
// startup before the router handles traffic.
func RegisterValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("timeslot", func(fl validator.FieldLevel) bool {
			return slotTokenPattern.MatchString(fl.Field().String())
		})
	}
}
