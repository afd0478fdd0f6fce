package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mesh-intelligence/assetfix/internal/store"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// session is an open store plus the run-scoped logger of one command.
type session struct {
	cfg     types.Config
	store   *store.Store
	log     *logrus.Entry
	logFile *os.File
}

// openSession loads the configuration, sets up logging and connects to
// the database.
func (a *app) openSession(cmd *cobra.Command) (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}

	s := &session{cfg: cfg}
	logger, logFile, err := newLogger(cfg, cmd.OutOrStdout())
	if err != nil {
		return nil, err
	}
	s.logFile = logFile
	s.log = logger.WithField("run", newRunID())

	if path := configFileUsed(a.v); path != "" {
		s.log.WithField("config", path).Debug("configuration loaded")
	}

	s.store, err = store.Open(cmd.Context(), cfg, s.log.WithField("phase", "store"))
	if err != nil {
		s.Close()
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"driver": cfg.Driver,
		"prefix": cfg.Prefix,
	}).Debug("connected")
	return s, nil
}

// Close releases the store and the log file.
func (s *session) Close() error {
	var err error
	if s.store != nil {
		err = s.store.Close()
	}
	if s.logFile != nil {
		if cerr := s.logFile.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// phase returns the session logger tagged with a phase name.
func (s *session) phase(name string) *logrus.Entry {
	return s.log.WithField("phase", name)
}

// newLogger builds a text logger writing to out and, when configured, to
// the log file as well.
func newLogger(cfg types.Config, out io.Writer) (*logrus.Logger, *os.File, error) {
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %w", errConfig, err)
	}

	logger := logrus.New()
	logger.SetLevel(level)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:    true,
		DisableColors:    true,
		QuoteEmptyFields: true,
	})
	logger.SetOutput(out)

	if cfg.LogFile == "" {
		return logger, nil, nil
	}
	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	logger.SetOutput(io.MultiWriter(out, f))
	return logger, f, nil
}

// newRunID generates a UUID v7 identifying one invocation in the logs.
func newRunID() string {
	id, err := uuid.NewV7()
	if err != nil {
		// Fallback to UUID v4 if v7 generation fails
		return uuid.New().String()
	}
	return id.String()
}
