package privacy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAnonymizeIP(t *testing.T) {
	cases := map[string]string{
		"192.168.1.47":                "192.168.1.0",
		"2001:db8:85a3::8a2e:370:7334": "2001:0db8:85a3::",
		"":                            "unknown",
		"not-an-ip":                   "invalid",
	}
	for in, want := range cases {
		assert.Equal(t, want, AnonymizeIP(in), in)
	}
}

func TestMaskIdentity(t *testing.T) {
	assert.Equal(t, "********9012", MaskIdentity("123456789012"))
	assert.Equal(t, "******234F", MaskIdentity("ABCDE1234F"))
	assert.Equal(t, "***", MaskIdentity("A12"))
	assert.Equal(t, "", MaskIdentity(""))
}

func TestMaskEmail(t *testing.T) {
	assert.Equal(t, "r***@example.com", MaskEmail("ravi@example.com"))
	assert.Equal(t, "***", MaskEmail("no-at-sign"))
}
