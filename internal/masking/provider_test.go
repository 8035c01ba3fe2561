package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/credguard/internal/errors"
)

func TestAllProviders_HaveRules(t *testing.T) {
	for _, p := range AllProviders() {
		rule, ok := p.Rule()
		assert.True(t, ok, "provider %s has no rule", p)
		assert.NotEmpty(t, rule.SecretFields, "provider %s has no secret fields", p)
	}
}

func TestParseProvider(t *testing.T) {
	p, ok := ParseProvider("resend")
	assert.True(t, ok)
	assert.Equal(t, ProviderResend, p)

	_, ok = ParseProvider("carrier-pigeon")
	assert.False(t, ok)

	_, ok = ParseProvider("SMTP")
	assert.False(t, ok)
}

func TestMaskProviderConfig(t *testing.T) {
	t.Run("smtp masks only the password", func(t *testing.T) {
		cfg := map[string]any{
			"host":     "smtp.example.com",
			"port":     587,
			"username": "mailer@example.com",
			"password": "hunter2hunter2",
		}

		masked := MaskProviderConfig("smtp", cfg)
		assert.Equal(t, "**********ter2", masked["password"])
		assert.Equal(t, "smtp.example.com", masked["host"])
		assert.Equal(t, 587, masked["port"])
		assert.Equal(t, "mailer@example.com", masked["username"])

		assert.Equal(t, "hunter2hunter2", cfg["password"], "input must not be modified")
	})

	t.Run("api key providers", func(t *testing.T) {
		for _, name := range []string{"resend", "sendgrid", "mailgun"} {
			masked := MaskProviderConfig(name, map[string]any{"apiKey": "key-0123456789", "from": "a@b.co"})
			assert.Equal(t, "**********6789", masked["apiKey"], name)
			assert.Equal(t, "a@b.co", masked["from"], name)
		}
	})

	t.Run("postmark and ses", func(t *testing.T) {
		masked := MaskProviderConfig("postmark", map[string]any{"serverToken": "pm-token-abcd"})
		assert.Equal(t, "*********abcd", masked["serverToken"])

		masked = MaskProviderConfig("ses", map[string]any{
			"accessKeyId":     "AKIAEXAMPLE",
			"secretAccessKey": "wJalrXUtnFEMI",
			"region":          "us-east-1",
		})
		assert.Equal(t, "AKIAEXAMPLE", masked["accessKeyId"])
		assert.Equal(t, "*********FEMI", masked["secretAccessKey"])
	})

	t.Run("unknown provider passes through", func(t *testing.T) {
		cfg := map[string]any{"apiKey": "visible-by-design", "password": "also-visible"}
		masked := MaskProviderConfig("unknown", cfg)
		assert.Equal(t, cfg, masked)

		masked["apiKey"] = "changed"
		assert.Equal(t, "visible-by-design", cfg["apiKey"], "result must be a copy")
	})

	t.Run("empty and non-string secrets are left alone", func(t *testing.T) {
		masked := MaskProviderConfig("resend", map[string]any{"apiKey": ""})
		assert.Equal(t, "", masked["apiKey"])

		masked = MaskProviderConfig("resend", map[string]any{"apiKey": 42})
		assert.Equal(t, 42, masked["apiKey"])
	})

	t.Run("nil config", func(t *testing.T) {
		assert.Nil(t, MaskProviderConfig("smtp", nil))
	})
}

func TestMergeProviderConfig(t *testing.T) {
	stored := map[string]any{
		"host":     "smtp.example.com",
		"port":     587,
		"username": "mailer",
		"password": "original-password",
	}

	t.Run("masked secret keeps stored value", func(t *testing.T) {
		incoming := MaskProviderConfig("smtp", stored)
		incoming["host"] = "smtp2.example.com"

		merged := MergeProviderConfig(ProviderSMTP, stored, incoming)
		assert.Equal(t, "original-password", merged["password"])
		assert.Equal(t, "smtp2.example.com", merged["host"])
	})

	t.Run("empty secret keeps stored value", func(t *testing.T) {
		merged := MergeProviderConfig(ProviderSMTP, stored, map[string]any{"password": ""})
		assert.Equal(t, "original-password", merged["password"])
	})

	t.Run("new secret replaces stored value", func(t *testing.T) {
		merged := MergeProviderConfig(ProviderSMTP, stored, map[string]any{"password": "rotated-password"})
		assert.Equal(t, "rotated-password", merged["password"])
		assert.Equal(t, "original-password", stored["password"])
	})

	t.Run("nil stored config", func(t *testing.T) {
		merged := MergeProviderConfig(ProviderResend, nil, map[string]any{"apiKey": "re_new_key"})
		assert.Equal(t, "re_new_key", merged["apiKey"])
	})
}

func TestValidateProviderConfig(t *testing.T) {
	tests := []struct {
		name     string
		provider Provider
		cfg      map[string]any
		wantErr  bool
	}{
		{
			name:     "valid smtp",
			provider: ProviderSMTP,
			cfg:      map[string]any{"host": "smtp.example.com", "port": 587, "username": "u", "password": "p"},
		},
		{
			name:     "smtp missing password",
			provider: ProviderSMTP,
			cfg:      map[string]any{"host": "smtp.example.com", "port": 587, "username": "u"},
			wantErr:  true,
		},
		{
			name:     "blank api key",
			provider: ProviderResend,
			cfg:      map[string]any{"apiKey": "   "},
			wantErr:  true,
		},
		{
			name:     "extra keys allowed",
			provider: ProviderResend,
			cfg:      map[string]any{"apiKey": "re_abc", "from": "noreply@example.com"},
		},
		{
			name:     "invalid sender address",
			provider: ProviderResend,
			cfg:      map[string]any{"apiKey": "re_abc", "from": "not-an-email"},
			wantErr:  true,
		},
		{
			name:     "secret with trailing whitespace",
			provider: ProviderPostmark,
			cfg:      map[string]any{"serverToken": "pm-token\n"},
			wantErr:  true,
		},
		{
			name:     "mailgun requires domain",
			provider: ProviderMailgun,
			cfg:      map[string]any{"apiKey": "key"},
			wantErr:  true,
		},
		{
			name:     "nil config",
			provider: ProviderPostmark,
			cfg:      nil,
			wantErr:  true,
		},
		{
			name:     "unknown provider",
			provider: Provider("fax"),
			cfg:      map[string]any{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProviderConfig(tt.provider, tt.cfg)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
		})
	}
}
