package media

import (
	"crypto/sha1"
	"encoding/hex"
	"testing"

	"github.com/insomnia-fuel/cafe-api/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignParamsSortsKeys(t *testing.T) {
	// Keys must be signed in sorted order regardless of map iteration.
	got := signParams(map[string]string{
		"timestamp": "1700000000",
		"folder":    "insomnia-fuel/gallery",
	}, "secret")

	sum := sha1.Sum([]byte("folder=insomnia-fuel/gallery&timestamp=1700000000secret"))
	assert.Equal(t, hex.EncodeToString(sum[:]), got)
}

func TestSignUpload(t *testing.T) {
	c := NewCloudinary(&config.CloudinaryConfig{
		CloudName: "demo",
		APIKey:    "key",
		APISecret: "secret",
	})

	sig, err := c.SignUpload()
	require.NoError(t, err)
	assert.Equal(t, "demo", sig.CloudName)
	assert.Equal(t, "key", sig.APIKey)
	assert.Equal(t, "insomnia-fuel/gallery", sig.Folder)
	assert.NotZero(t, sig.Timestamp)
	assert.Len(t, sig.Signature, 40)
}

func TestSignUploadUnconfigured(t *testing.T) {
	c := NewCloudinary(&config.CloudinaryConfig{})
	_, err := c.SignUpload()
	assert.Error(t, err)
}
