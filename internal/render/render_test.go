package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVhost(t *testing.T) {
	out, err := File("vhost.conf.tmpl", map[string]string{
		"Domain":  "cloud.example.com",
		"WebRoot": "/var/www/nextcloud",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "ServerName cloud.example.com")
	assert.Contains(t, out, "DocumentRoot /var/www/nextcloud")
	assert.Contains(t, out, "<Directory /var/www/nextcloud>")
}

func TestRenderPHPTuningDefaults(t *testing.T) {
	out, err := File("php-tuning.ini.tmpl", map[string]string{})
	require.NoError(t, err)

	assert.Contains(t, out, "memory_limit = 512M")
	assert.Contains(t, out, "opcache.enable = 1")
}

func TestRenderDatabaseSQLIsConditional(t *testing.T) {
	out, err := File("create-database.sql.tmpl", map[string]string{
		"Name":     "nextcloud",
		"User":     "nextcloud",
		"Password": "s3cret",
	})
	require.NoError(t, err)

	assert.Contains(t, out, "CREATE DATABASE IF NOT EXISTS `nextcloud`")
	assert.Contains(t, out, "CREATE USER IF NOT EXISTS 'nextcloud'@'localhost'")
	assert.Contains(t, out, "IDENTIFIED BY 's3cret'")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, err := File("does-not-exist.tmpl", nil)
	require.Error(t, err)
}
