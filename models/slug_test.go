package models

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Wireless Mouse", "wireless-mouse"},
		{"  --Çay Bardağı Seti--  ", "cay-bardagi-seti"},
		{"İstanbul Şalı", "istanbul-sali"},
		{"Crème Brûlée Torch", "creme-brulee-torch"},
		{"Ünïcödé & Friends!!", "unicode-friends"},
		{"USB-C   Hub (4 ports)", "usb-c-hub-4-ports"},
		{"Straße", "strasse"},
		{"***", "product"},
		{"", "product"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := Slugify(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Regexp(t, slugShape, got)
		})
	}
}

func TestSuffixSlug(t *testing.T) {
	at := time.UnixMilli(1700000000123)
	assert.Equal(t, "desk-lamp-1700000000123", SuffixSlug("desk-lamp", at))
	assert.Regexp(t, slugShape, SuffixSlug("desk-lamp", at))
}
