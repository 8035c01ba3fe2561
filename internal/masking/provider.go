package masking

import (
	"maps"

	validation "github.com/jellydator/validation"

	appValidation "github.com/allisson/credguard/internal/validation"
)

// Provider is the closed set of email integrations whose configuration may hold secrets.
type Provider string

const (
	ProviderSMTP     Provider = "smtp"
	ProviderResend   Provider = "resend"
	ProviderSendGrid Provider = "sendgrid"
	ProviderMailgun  Provider = "mailgun"
	ProviderPostmark Provider = "postmark"
	ProviderSES      Provider = "ses"
)

// Rule describes a provider configuration: which fields hold secrets and which
// fields must be present.
type Rule struct {
	SecretFields   []string
	RequiredFields []string
}

// AllProviders returns every known provider.
func AllProviders() []Provider {
	return []Provider{
		ProviderSMTP,
		ProviderResend,
		ProviderSendGrid,
		ProviderMailgun,
		ProviderPostmark,
		ProviderSES,
	}
}

// ParseProvider maps a provider name to a known Provider.
func ParseProvider(name string) (Provider, bool) {
	p := Provider(name)
	_, ok := p.Rule()
	return p, ok
}

// Rule returns the provider's configuration rule. Unknown providers have none.
func (p Provider) Rule() (Rule, bool) {
	switch p {
	case ProviderSMTP:
		return Rule{
			SecretFields:   []string{"password"},
			RequiredFields: []string{"host", "port", "username"},
		}, true
	case ProviderResend, ProviderSendGrid:
		return Rule{SecretFields: []string{"apiKey"}}, true
	case ProviderMailgun:
		return Rule{
			SecretFields:   []string{"apiKey"},
			RequiredFields: []string{"domain"},
		}, true
	case ProviderPostmark:
		return Rule{SecretFields: []string{"serverToken"}}, true
	case ProviderSES:
		return Rule{
			SecretFields:   []string{"secretAccessKey"},
			RequiredFields: []string{"accessKeyId", "region"},
		}, true
	default:
		return Rule{}, false
	}
}

// String returns the provider name.
func (p Provider) String() string {
	return string(p)
}

// MaskProviderConfig returns a copy of cfg with the provider's non-empty string
// secret fields masked. Configurations of unknown providers are copied unchanged.
func MaskProviderConfig(name string, cfg map[string]any) map[string]any {
	if cfg == nil {
		return nil
	}
	masked := maps.Clone(cfg)

	rule, ok := Provider(name).Rule()
	if !ok {
		return masked
	}

	for _, field := range rule.SecretFields {
		if s, ok := masked[field].(string); ok && s != "" {
			masked[field] = MaskDefault(s)
		}
	}
	return masked
}

// MergeProviderConfig applies an edit-form submission to a stored configuration.
// Non-secret fields are taken from incoming; secret fields are only replaced when
// ShouldUpdateField says the submission is a real change.
func MergeProviderConfig(p Provider, stored, incoming map[string]any) map[string]any {
	merged := maps.Clone(stored)
	if merged == nil {
		merged = make(map[string]any, len(incoming))
	}

	rule, _ := p.Rule()
	secret := make(map[string]struct{}, len(rule.SecretFields))
	for _, field := range rule.SecretFields {
		secret[field] = struct{}{}
	}

	for key, value := range incoming {
		if _, isSecret := secret[key]; !isSecret {
			merged[key] = value
			continue
		}

		current, _ := stored[key].(string)
		submitted, _ := value.(string)
		if ShouldUpdateField(current, submitted, current) {
			merged[key] = submitted
		}
	}
	return merged
}

const senderField = "from"

// ValidateProviderConfig checks that the provider is known, that its required and
// secret fields are present, and that secrets carry no surrounding whitespace. An
// optional "from" sender address must be a valid email.
func ValidateProviderConfig(p Provider, cfg map[string]any) error {
	rule, ok := p.Rule()
	if !ok {
		return appValidation.WrapValidationError(
			validation.NewError("validation_provider_unknown", "unknown provider: "+p.String()),
		)
	}

	if cfg == nil {
		cfg = map[string]any{}
	}

	keys := make([]*validation.KeyRules, 0, len(rule.RequiredFields)+len(rule.SecretFields)+1)
	for _, field := range rule.RequiredFields {
		keys = append(keys, validation.Key(field, validation.Required))
	}
	for _, field := range rule.SecretFields {
		keys = append(keys, validation.Key(
			field,
			validation.Required,
			appValidation.NotBlank,
			appValidation.NoWhitespace,
		))
	}
	keys = append(keys, validation.Key(senderField, appValidation.Email).Optional())

	err := validation.Validate(cfg, validation.Map(keys...).AllowExtraKeys())
	return appValidation.WrapValidationError(err)
}
