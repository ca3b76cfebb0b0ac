package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestObjectKeyFromURL(t *testing.T) {
	prev := cdnBaseURL
	cdnBaseURL = "https://cdn.example.com"
	defer func() { cdnBaseURL = prev }()

	assert.Equal(t, "sports/logos/abc.png",
		ObjectKeyFromURL("https://cdn.example.com/sports/logos/abc.png"))
	assert.Equal(t, "profiles/avatars/x.jpg",
		ObjectKeyFromURL("https://cdn.example.com/profiles/avatars/x.jpg"))

	// Foreign hosts (e.g. an avatar imported from the auth provider) are not
	// ours to delete.
	assert.Equal(t, "", ObjectKeyFromURL("https://elsewhere.example.com/sports/logos/abc.png"))
	assert.Equal(t, "", ObjectKeyFromURL(""))
}

func TestObjectKeyFromURLUnconfigured(t *testing.T) {
	prev := cdnBaseURL
	cdnBaseURL = ""
	defer func() { cdnBaseURL = prev }()

	assert.Equal(t, "", ObjectKeyFromURL("/sports/logos/abc.png"))
}
