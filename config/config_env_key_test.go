package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"mail": map[string]any{
			"fromName": "",
			"queue": map[string]any{
				"topicUrl":      "",
				"localEndpoint": "",
			},
		},
		"secretKey": map[string]any{
			"otp": "",
		},
		"auth": map[string]any{
			"maxOTPAttempts": 5,
			"otpTTL":         "15m",
		},
		"cookie": map[string]any{
			"refreshName": "refreshToken",
		},
	}

	tests := map[string]string{
		"POSTGRES_SSLMODE":          "postgres.sslMode",
		"POSTGRES_MASTER_USERNAME":  "postgres.master.userName",
		"MAIL_FROMNAME":             "mail.fromName",
		"MAIL_QUEUE_TOPICURL":       "mail.queue.topicUrl",
		"MAIL_QUEUE_LOCALENDPOINT":  "mail.queue.localEndpoint",
		"SECRETKEY_OTP":             "secretKey.otp",
		"AUTH_MAXOTPATTEMPTS":       "auth.maxOTPAttempts",
		"AUTH_OTPTTL":               "auth.otpTTL",
		"COOKIE_REFRESHNAME":        "cookie.refreshName",
		"REDIS_KEYPREFIX":           "redis.keyprefix",
		"BRAND_NEW_SECTION_SETTING": "brand.new.section.setting",
	}

	for envKey, want := range tests {
		t.Run(envKey, func(t *testing.T) {
			assert.Equal(t, want, canonicalizeEnvKey(envKey, existing))
		})
	}
}
