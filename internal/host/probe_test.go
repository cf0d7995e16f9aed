package host

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/groundworkhq/provision/internal/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedRunner struct {
	testOK  bool
	testErr error
	output  string
	outErr  error

	lastCommand string
}

func (s *scriptedRunner) Run(ctx context.Context, command string) error {
	s.lastCommand = command
	return nil
}

func (s *scriptedRunner) Output(ctx context.Context, command string) (string, error) {
	s.lastCommand = command
	return s.output, s.outErr
}

func (s *scriptedRunner) Test(ctx context.Context, command string) (bool, error) {
	s.lastCommand = command
	return s.testOK, s.testErr
}

func (s *scriptedRunner) Close() error { return nil }

func TestProbeMapsExitStatusToSatisfaction(t *testing.T) {
	runner := &scriptedRunner{testOK: true}
	probe := NewProbe(runner)

	status, err := probe.PackageInstalled(context.Background(), "apache2")
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusSatisfied, status)
	assert.True(t, strings.Contains(runner.lastCommand, "dpkg-query"))

	runner.testOK = false
	status, err = probe.ServiceActive(context.Background(), "mariadb")
	require.NoError(t, err)
	assert.Equal(t, pipeline.StatusUnsatisfied, status)
}

func TestProbeTransportFailureIsUnknown(t *testing.T) {
	runner := &scriptedRunner{testErr: errors.New("connection reset")}
	probe := NewProbe(runner)

	status, err := probe.FileExists(context.Background(), "/etc/nextcloud/config.php")
	require.Error(t, err)
	assert.Equal(t, pipeline.StatusUnknown, status)
}

func TestOSRelease(t *testing.T) {
	runner := &scriptedRunner{output: "ubuntu 24.04\n"}
	probe := NewProbe(runner)

	id, version, err := probe.OSRelease(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ubuntu", id)
	assert.Equal(t, "24.04", version)
}

func TestOSReleaseMalformedOutput(t *testing.T) {
	runner := &scriptedRunner{output: "garbage"}
	probe := NewProbe(runner)

	_, _, err := probe.OSRelease(context.Background())
	require.Error(t, err)
}
