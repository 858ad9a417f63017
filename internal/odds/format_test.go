package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"-0.75", "-0.75"},
		{"0", "0"},
		{"1.1", "1"},
		{"-", "-"},
		{"?", "-"},
		{"", "-"},
		{"abc", "-"},
		{"0/0.5", "0.25"},
		{"-0/0.5", "-0.25"},
		{"1/1.5", "1.25"},
		{"-1", "-1"},
		{"2.0", "2"},
		{"-1.5", "-1.5"},
		{"0.5", "0.5"},
		{"1.3", "1.5"},
		{"1.6", "1.5"},
		{"1.8", "2"},
		{"0.1", "0"},
		{"-0.1", "0"},
		{"0,75", "0.75"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Format(tt.in))
		})
	}
}

func TestFormat_Spreadsheet(t *testing.T) {
	assert.Equal(t, "'-0,75", Format("-0.75", WithSpreadsheet()))
	assert.Equal(t, "'1", Format("1", WithSpreadsheet()))
	assert.Equal(t, "'0", Format("0", WithSpreadsheet()))
	assert.Equal(t, "-", Format("-", WithSpreadsheet()))
	assert.Equal(t, "-", Format("?", WithSpreadsheet()))
}

func TestFormat_Idempotent(t *testing.T) {
	for _, in := range []string{"-0.75", "0.25", "1", "-2", "1.5", "0", "-", "3/3.5", "0.9", "-1.1"} {
		once := Format(in)
		assert.Equal(t, once, Format(once), "input %q", in)
	}
}

func TestFormatValue(t *testing.T) {
	assert.Equal(t, "-1", FormatValue(-1))
	assert.Equal(t, "0.25", FormatValue(0.25000000001))
	assert.Equal(t, "1", FormatValue(0.99999999999))
}
