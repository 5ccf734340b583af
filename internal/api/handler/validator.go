package handler

import (
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"shelter-caller/pkg/businessday"
)

// RegisterValidators 在 gin 的校验引擎上注册自定义 tag：
// timeofday（HH:MM）与 timezone（IANA 时区名）
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("timeofday", validateTimeOfDay); err != nil {
		return err
	}
	return v.RegisterValidation("timezone", validateTimezone)
}

func validateTimeOfDay(fl validator.FieldLevel) bool {
	_, err := businessday.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

func validateTimezone(fl validator.FieldLevel) bool {
	tz := fl.Field().String()
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}
