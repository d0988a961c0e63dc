package pipeline

import (
	"errors"
	"fmt"

	"ap-script-web/internal/domain"

	"github.com/go-playground/validator/v10"
)

const (
	msgMissingAPIKey    = "Please enter your Gemini API key"
	msgMissingSourceURL = "Please enter a URL"
	msgMissingGenre     = "Please select a genre"
)

// fieldMessages は入力フィールドごとの表示文言です。
var fieldMessages = map[string]string{
	"APIKey":    msgMissingAPIKey,
	"SourceURL": msgMissingSourceURL,
	"Genre":     msgMissingGenre,
}

func newValidator() (*validator.Validate, error) {
	v := validator.New()
	err := v.RegisterValidation("genre", func(fl validator.FieldLevel) bool {
		_, ok := domain.ParseGenre(fl.Field().String())
		return ok
	})
	if err != nil {
		return nil, fmt.Errorf("failed to register genre validation: %w", err)
	}
	return v, nil
}

// validateInput は最初に違反したフィールドの文言を持つ入力エラーを返します。
func (p *AdaptationPipeline) validateInput(in any) error {
	err := p.validate.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		if msg, ok := fieldMessages[verrs[0].Field()]; ok {
			return domain.NewValidationError(msg)
		}
		return domain.NewValidationError(verrs[0].Error())
	}
	return fmt.Errorf("input validation failed: %w", err)
}
