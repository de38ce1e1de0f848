package appname

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeStripsVersions(t *testing.T) {
	assert.Equal(t, Normalize("GIMP"), Normalize("GIMP-3.0.4"))
	assert.Equal(t, "gimp", Normalize("GIMP-3.0.4"))
	assert.Equal(t, "foo", Normalize("Foo 2.0"))
	assert.Equal(t, "krita", Normalize("krita-v5.1.5"))
}

func TestNormalizeStripsArchAndPackagingTokens(t *testing.T) {
	assert.Equal(t, "inkscape", Normalize("Inkscape-1.2-x86_64"))
	assert.Equal(t, "firefox", Normalize("Firefox-appimage"))
	assert.Equal(t, "myapp", Normalize("MyApp_amd64_linux"))
	assert.Equal(t, "obsidian", Normalize("Obsidian-1.4.16-arm64"))
	assert.Equal(t, "shotwell", Normalize("Shotwell-linux-x86_64.AppImage"))
}

func TestNormalizeStripsWholeTokensOnly(t *testing.T) {
	// Tokens embedded inside a word are part of the name, not metadata.
	assert.Equal(t, "linuxbrew", Normalize("Linuxbrew"))
	assert.Equal(t, "portablenotes", Normalize("PortableNotes"))
	assert.Equal(t, "marm64fan", Normalize("Marm64fan"))
}

func TestNormalizeCollapsesSeparators(t *testing.T) {
	assert.Equal(t, "my cool app", Normalize("My__Cool--App"))
	assert.Equal(t, "", Normalize("---"))
}

func TestSame(t *testing.T) {
	assert.True(t, Same("gimp", "gimp image editor"))
	assert.True(t, Same("GIMP-3.0.4", "GIMP"))
	assert.True(t, Same("Foo 2.0", "Foo"))
	assert.False(t, Same("gimp", "inkscape"))
	assert.False(t, Same("", "gimp"))
	assert.False(t, Same("1.0.0", "2.0.0"))
}
