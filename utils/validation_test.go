package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateEmail(t *testing.T) {
	valid := []string{
		"alex@univ.edu",
		"first.last+tag@example.co.uk",
		"a_b-c%d@sub.domain.org",
	}
	for _, email := range valid {
		assert.True(t, ValidateEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{
		"",
		"plainaddress",
		"@missing-local.org",
		"missing-domain@",
		"spaces in@address.com",
		"no-tld@domain",
	}
	for _, email := range invalid {
		assert.False(t, ValidateEmail(email), "expected %q to be invalid", email)
	}
}
