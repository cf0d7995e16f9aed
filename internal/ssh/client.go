package ssh

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/groundworkhq/provision/internal/types"
	"golang.org/x/crypto/ssh"
)

// Client runs commands on the target host over SSH. It implements
// host.Runner.
type Client struct {
	client  *ssh.Client
	verbose bool
}

func Dial(host types.Host, verbose bool) (*Client, error) {
	keyPath := host.KeyPath
	if keyPath == "" {
		keyPath = "~/.ssh/id_rsa"
	}

	if strings.HasPrefix(keyPath, "~") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to resolve home directory: %v", err)
		}
		keyPath = filepath.Join(homeDir, keyPath[1:])
	}

	key, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("unable to read private key %s: %v", keyPath, err)
	}

	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		if _, missing := err.(*ssh.PassphraseMissingError); missing {
			return nil, fmt.Errorf("private key %s is passphrase-protected, add it to your agent or use an unencrypted key", keyPath)
		}
		return nil, fmt.Errorf("unable to parse private key: %v", err)
	}

	config := &ssh.ClientConfig{
		User: host.Username,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(signer),
		},
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         10 * time.Second,
	}

	client, err := ssh.Dial("tcp", fmt.Sprintf("%s:%d", host.Address, host.Port), config)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %v", host.Address, err)
	}

	return &Client{client: client, verbose: verbose}, nil
}

func (c *Client) session(ctx context.Context) (*ssh.Session, func(), error) {
	session, err := c.client.NewSession()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create session: %v", err)
	}

	done := make(chan struct{})
	go func() {
		select {
		case <-ctx.Done():
			session.Close()
		case <-done:
		}
	}()

	cleanup := func() {
		close(done)
		session.Close()
	}
	return session, cleanup, nil
}

func (c *Client) Run(ctx context.Context, command string) error {
	session, cleanup, err := c.session(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if c.verbose {
		session.Stdout = os.Stdout
		session.Stderr = os.Stderr
		return session.Run(command)
	}

	var buf bytes.Buffer
	session.Stdout = &buf
	session.Stderr = &buf
	if err := session.Run(command); err != nil {
		return fmt.Errorf("%v: %s", err, tail(buf.String()))
	}
	return nil
}

func (c *Client) Output(ctx context.Context, command string) (string, error) {
	session, cleanup, err := c.session(ctx)
	if err != nil {
		return "", err
	}
	defer cleanup()

	output, err := session.Output(command)
	if err != nil {
		return "", fmt.Errorf("failed to execute command: %v", err)
	}
	return string(output), nil
}

func (c *Client) Test(ctx context.Context, command string) (bool, error) {
	session, cleanup, err := c.session(ctx)
	if err != nil {
		return false, err
	}
	defer cleanup()

	err = session.Run(command)
	if err == nil {
		return true, nil
	}
	if _, exited := err.(*ssh.ExitError); exited {
		return false, nil
	}
	return false, err
}

func (c *Client) Close() error {
	return c.client.Close()
}

func tail(s string) string {
	const max = 400
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return "..." + s[len(s)-max:]
}
