package catalog

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShellQuote(t *testing.T) {
	assert.Equal(t, "plain", shellQuote("plain"))
	assert.Equal(t, "''", shellQuote(""))
	assert.Equal(t, "'two words'", shellQuote("two words"))
	assert.Equal(t, `'pa$$word'`, shellQuote("pa$$word"))
	assert.Equal(t, `'it'\''s'`, shellQuote("it's"))
}

func TestFilesWriteIsAtomic(t *testing.T) {
	runner := &fakeRunner{}
	files := Files{runner: runner}

	err := files.Write(context.Background(), "/etc/example.conf", "key = value\n", "root:root", "0644")
	require.NoError(t, err)

	require.Len(t, runner.commands, 4)
	assert.Contains(t, runner.commands[0], "tee /etc/example.conf.provision.tmp")
	assert.Contains(t, runner.commands[0], "key = value")
	assert.Contains(t, runner.commands[1], "chmod 0644")
	assert.Contains(t, runner.commands[2], "chown root:root")
	assert.Equal(t, "sudo mv -f /etc/example.conf.provision.tmp /etc/example.conf", runner.commands[3])
}

func TestOccRunsAsWebServerUser(t *testing.T) {
	runner := &fakeRunner{}
	occ := Occ{runner: runner, webRoot: "/var/www/nextcloud"}

	err := occ.Run(context.Background(), "config:system:set", "loglevel", "--value=2")
	require.NoError(t, err)

	require.Len(t, runner.commands, 1)
	cmd := runner.commands[0]
	assert.True(t, strings.HasPrefix(cmd, "sudo -u www-data php /var/www/nextcloud/occ "))
	assert.Contains(t, cmd, "config:system:set")
}

func TestAptInstallNonInteractive(t *testing.T) {
	runner := &fakeRunner{}
	apt := Apt{runner: runner}

	err := apt.Install(context.Background(), "apache2", "curl")
	require.NoError(t, err)

	require.Len(t, runner.commands, 1)
	assert.Contains(t, runner.commands[0], "DEBIAN_FRONTEND=noninteractive")
	assert.Contains(t, runner.commands[0], "apache2 curl")
}
