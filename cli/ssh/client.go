// Package ssh provides the secure command channel to the remote rig
// controller.
package ssh

import (
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/ssh"
)

const (
	defaultUser = "root"
	defaultPort = 22
)

// targetRegexp is used to parse targets passed to ParseTarget.
var targetRegexp = regexp.MustCompile("^([^@]+@)?([^@]+)$")

// Options contains options used when connecting to the rig controller.
type Options struct {
	// User is the username to use when connecting.
	User string
	// Hostname is the SSH server's host:port.
	Hostname string
	// KeyFile is the path to an unencrypted SSH private key.
	KeyFile string
	// ConnectTimeout bounds establishing the TCP connection.
	ConnectTimeout time.Duration
}

// ParseTarget parses target (of the form "[user@]host[:port]") and fills
// the User and Hostname fields in o, using defaults for unspecified values.
func ParseTarget(target string, o *Options) error {
	m := targetRegexp.FindStringSubmatch(target)
	if m == nil {
		return fmt.Errorf("couldn't parse %q as \"[user@]hostname[:port]\"", target)
	}

	o.User = defaultUser
	if m[1] != "" {
		o.User = m[1][0 : len(m[1])-1]
	}

	if _, _, err := net.SplitHostPort(m[2]); err != nil {
		o.Hostname = net.JoinHostPort(m[2], strconv.Itoa(defaultPort))
	} else {
		o.Hostname = m[2]
	}

	return nil
}

// Client is an SSH connection to the rig controller.
type Client struct {
	logger zerolog.Logger
	cl     *ssh.Client
}

// New dials the rig controller using key-file authentication.
func New(logger zerolog.Logger, o *Options) (*Client, error) {
	key, err := os.ReadFile(o.KeyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", o.KeyFile, err)
	}

	cfg := &ssh.ClientConfig{
		User: o.User,
		Auth: []ssh.AuthMethod{ssh.PublicKeys(signer)},
		// Lab rigs are reprovisioned from snapshots and change host keys
		// constantly; pinning host keys would break every restore.
		HostKeyCallback: ssh.InsecureIgnoreHostKey(),
		Timeout:         o.ConnectTimeout,
	}

	logger.Debug().Str("host", o.Hostname).Str("user", o.User).Msg("Dialing rig controller")
	cl, err := ssh.Dial("tcp", o.Hostname, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", o.Hostname, err)
	}

	return &Client{logger: logger, cl: cl}, nil
}

// RunCommand executes a command on the rig controller and returns its
// combined output. A non-zero remote exit status is returned as an error
// alongside whatever output was produced, since the caller may still be
// able to extract a verdict from it.
func (c *Client) RunCommand(command string) (string, error) {
	sess, err := c.cl.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to open session: %w", err)
	}
	defer sess.Close()

	c.logger.Debug().Str("command", command).Msg("Running remote command")

	out, err := sess.CombinedOutput(command)
	if err != nil {
		return string(out), fmt.Errorf("remote command failed: %w", err)
	}
	return string(out), nil
}

// Close closes the connection to the rig controller.
func (c *Client) Close() error {
	return c.cl.Close()
}
