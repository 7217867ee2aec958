package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSensitiveKey(t *testing.T) {
	assert.True(t, SensitiveKey("password"))
	assert.True(t, SensitiveKey("Session_Token"))
	assert.True(t, SensitiveKey("api_key"))
	assert.True(t, SensitiveKey("  AUTHORIZATION  "))

	assert.False(t, SensitiveKey("amount"))
	assert.False(t, SensitiveKey("request_id"))
	assert.False(t, SensitiveKey(""))
}

func TestRedactValue(t *testing.T) {
	assert.Equal(t, "", RedactValue(""))
	assert.Equal(t, "****", RedactValue("abcd"))
	assert.Equal(t, "****2345", RedactValue("hunter12345"))
	assert.Equal(t, "sk_live_****1234", RedactValue("sk_live_abcd1234"))
}

func TestRedactMetadataMasksSensitiveKeys(t *testing.T) {
	out := RedactMetadata(map[string]any{
		"action":   "user.login",
		"password": "hunter12345",
		"amount":   1500,
	})

	assert.Equal(t, "user.login", out["action"])
	assert.Equal(t, 1500, out["amount"])
	assert.Equal(t, "****2345", out["password"])
}

func TestRedactMetadataWalksNestedValues(t *testing.T) {
	out := RedactMetadata(map[string]any{
		"credentials": map[string]any{
			"api_key": "sk_live_abcd1234",
			"note":    "rotated",
		},
		"attempts": []any{
			map[string]any{"token": "abc123xyz", "ip": "10.0.0.1"},
		},
	})

	creds := out["credentials"].(map[string]any)
	assert.Equal(t, "sk_live_****1234", creds["api_key"])
	assert.Equal(t, "rotated", creds["note"])

	attempts := out["attempts"].([]any)
	first := attempts[0].(map[string]any)
	assert.Equal(t, "****3xyz", first["token"])
	assert.Equal(t, "10.0.0.1", first["ip"])
}

func TestRedactMetadataSensitiveSubtree(t *testing.T) {
	out := RedactMetadata(map[string]any{
		"secrets": map[string]any{
			"primary": "abcdefgh",
			"count":   2,
		},
	})

	subtree := out["secrets"].(map[string]any)
	assert.Equal(t, "****efgh", subtree["primary"])
	assert.Equal(t, "****", subtree["count"])
}
