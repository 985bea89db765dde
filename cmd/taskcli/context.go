package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/sethvargo/go-retry"

	"taskapp/internal/cliconfig"
	"taskapp/internal/tokenfile"
	"taskapp/pkg/taskclient"
)

type globalFlags struct {
	configPath string
	serverURL  string
	tokenFile  string
	retries    int
	plain      bool
	verbose    bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     cliconfig.Config
	configErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (cliconfig.Config, error) {
	c.configOnce.Do(func() {
		path := strings.TrimSpace(c.flags.configPath)
		if path == "" {
			path = cliconfig.DefaultPath()
		}

		cfg, err := cliconfig.Load(path)
		if err != nil {
			c.configErr = err
			return
		}

		if c.flags.serverURL != "" {
			cfg.ServerURL = strings.TrimSpace(c.flags.serverURL)
		}
		if c.flags.tokenFile != "" {
			cfg.TokenFile = c.flags.tokenFile
		}
		if c.flags.retries >= 0 {
			cfg.Retries = c.flags.retries
		}
		if err := cfg.Validate(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) logger() zerolog.Logger {
	level := zerolog.WarnLevel
	if c.flags.verbose {
		level = zerolog.DebugLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen}
	return zerolog.New(writer).Level(level).With().Timestamp().Logger()
}

func (c *commandContext) tokenStore() (*tokenfile.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	return tokenfile.NewStore(cfg.TokenFile), nil
}

// newClient builds a client against the configured server, seeded with the
// persisted credential when one exists for that server.
func (c *commandContext) newClient() (*taskclient.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}

	opts := []taskclient.Option{taskclient.WithTimeout(cfg.Timeout())}

	tokens, err := c.tokenStore()
	if err != nil {
		return nil, err
	}
	state, err := tokens.Load()
	if err != nil {
		return nil, err
	}
	if !state.Empty() && (state.ServerURL == "" || state.ServerURL == cfg.ServerURL) {
		opts = append(opts, taskclient.WithToken(state.Token))
	}

	return taskclient.New(cfg.ServerURL, opts...)
}

// withRetries runs op, retrying transient transport failures with
// exponential backoff. Anything the server actually answered is final.
func (c *commandContext) withRetries(ctx context.Context, op func(context.Context) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger := c.logger()

	backoff := retry.WithMaxRetries(uint64(cfg.Retries), retry.NewExponential(500*time.Millisecond))
	return retry.Do(ctx, backoff, func(ctx context.Context) error {
		err := op(ctx)
		if err != nil && taskclient.Retryable(err) {
			logger.Warn().Err(err).Msg("transient failure, retrying")
			return retry.RetryableError(err)
		}
		return err
	})
}

// decorate turns client errors into messages that tell the user what to
// do next. A 401 additionally drops the persisted credential, which is no
// longer good.
func (c *commandContext) decorate(err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, taskclient.ErrUnauthorized) {
		if tokens, storeErr := c.tokenStore(); storeErr == nil {
			_ = tokens.Clear()
		}
		return errors.New("not authorized: log in with `taskcli login`")
	}
	if errors.Is(err, taskclient.ErrNotFound) {
		return errors.New("task not found")
	}

	var validationErr *taskclient.ValidationError
	if errors.As(err, &validationErr) {
		return fmt.Errorf("the server rejected the input: %s", validationMessage(validationErr))
	}

	var transportErr *taskclient.TransportError
	if errors.As(err, &transportErr) {
		cfg, cfgErr := c.ensureConfig()
		if cfgErr == nil {
			return fmt.Errorf("cannot reach %s: %w", cfg.ServerURL, err)
		}
	}

	return err
}

func validationMessage(err *taskclient.ValidationError) string {
	if len(err.Fields) == 0 {
		if err.Message != "" {
			return err.Message
		}
		return "invalid input"
	}
	fields := make([]string, 0, len(err.Fields))
	for field := range err.Fields {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+strings.Join(err.Fields[field], "; "))
	}
	return strings.Join(parts, ", ")
}
