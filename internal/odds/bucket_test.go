package odds

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBucket(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0.25", "0.5"},
		{"-0.25", "-0.5"},
		{"1.0", "1.0"},
		{"0", "0.0"},
		{"0.5", "0.5"},
		{"0.75", "0.5"},
		{"-1.25", "-1.5"},
		{"-1.75", "-1.5"},
		{"2", "2.0"},
		{"0/0.5", "0.5"},
		{"1.1", "1.5"},
		{"0.9", "1.0"},
		{"2.4", "2.5"},
		{"0,25", "0.5"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Bucket(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBucket_Absent(t *testing.T) {
	for _, in := range []string{"", "-", "?", "x"} {
		_, ok := Bucket(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestBucket_CoarserThanFormat(t *testing.T) {
	// Quarter lines keep their own display value but share a bucket.
	assert.NotEqual(t, Format("0.25"), Format("0.75"))
	b1, _ := Bucket("0.25")
	b2, _ := Bucket("0.75")
	assert.Equal(t, b1, b2)
}
