package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	assert.Equal(t, "wireless-mouse", Make("Wireless Mouse"))
	assert.Equal(t, "cafe-creme-2", Make("  Café  Crème 2 "))
	assert.Equal(t, "usb-c-hub", Make("USB-C Hub!"))
	assert.Equal(t, "", Make("***"))
}

func TestMake_FoldsDiacritics(t *testing.T) {
	assert.Equal(t, "jalapeno-grinder", Make("Jalapeño Grinder"))
	assert.Equal(t, "uber-apero-set", Make("Über Apéro Set"))
	assert.Equal(t, "creme-brulee-torch", Make("Crème Brûlée Torch"))
}

func TestMakeUnique_NoCollision(t *testing.T) {
	got := MakeUnique("Gaming Keyboard", func(string) bool { return false })
	assert.Equal(t, "gaming-keyboard", got)
}

func TestMakeUnique_AppendsCounterUntilFree(t *testing.T) {
	taken := map[string]bool{
		"gaming-keyboard":   true,
		"gaming-keyboard-1": true,
		"gaming-keyboard-2": true,
	}
	got := MakeUnique("Gaming Keyboard", func(s string) bool { return taken[s] })
	assert.Equal(t, "gaming-keyboard-3", got)
}
