package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "бейджей"},
		{1, "бейдж"},
		{2, "бейджа"},
		{4, "бейджа"},
		{5, "бейджей"},
		{11, "бейджей"},
		{12, "бейджей"},
		{21, "бейдж"},
		{22, "бейджа"},
		{111, "бейджей"},
		{-1, "бейдж"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Pluralize(tt.n, "бейдж", "бейджа", "бейджей"), "n=%d", tt.n)
	}
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "1 000", FormatNumber(1000))
	assert.Equal(t, "12 350", FormatNumber(12350))
	assert.Equal(t, "1 000 005", FormatNumber(1000005))
	assert.Equal(t, "-2 500", FormatNumber(-2500))
}

func TestFormatClout(t *testing.T) {
	assert.Equal(t, "+15 клаута", FormatClout(15))
	assert.Equal(t, "+1 клаут", FormatClout(1))
	assert.Equal(t, "+0 клаута", FormatClout(0))
	assert.Equal(t, "-48 клаута", FormatClout(-48))
	assert.Equal(t, "+10 000 клаута", FormatClout(10000))
}

func TestFormatCounts(t *testing.T) {
	assert.Equal(t, "3 бейджа", FormatBadges(3))
	assert.Equal(t, "1 пользователь", FormatUsers(1))
	assert.Equal(t, "1 500 пользователей", FormatUsers(1500))
}
