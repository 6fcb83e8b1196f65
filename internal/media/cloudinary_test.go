package media

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCloudinaryUploaderRequiresCredentials(t *testing.T) {
	_, err := NewCloudinaryUploader("demo", "", "secret", "miturno/services")
	assert.ErrorIs(t, err, ErrNotConfigured)

	up, err := NewCloudinaryUploader("demo", "key", "secret", "miturno/services")
	require.NoError(t, err)
	assert.Equal(t, "miturno/services", up.folder)
}

func TestDisabledRejectsUploads(t *testing.T) {
	url, err := Disabled{}.UploadImage(context.Background(), strings.NewReader("x"), "svc")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Empty(t, url)
}
