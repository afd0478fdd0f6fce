// Package seed resets the asset table from the canonical SQL script that
// ships with the tool.
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/assetfix/internal/store"
	"github.com/mesh-intelligence/assetfix/pkg/types"
)

// Loader executes seed scripts against a store.
type Loader struct {
	store *store.Store
	log   logrus.FieldLogger
}

// NewLoader returns a Loader working on s.
func NewLoader(s *store.Store, log logrus.FieldLogger) *Loader {
	return &Loader{store: s, log: log}
}

// Load reads the script at path and executes its statements in order. A
// missing, unreadable or empty file returns ErrSeedUnreadable and nothing is
// executed. Any statement failure stops the load.
func (l *Loader) Load(ctx context.Context, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrSeedUnreadable, err)
	}
	stmts := SplitStatements(string(data))
	if len(stmts) == 0 {
		return fmt.Errorf("%w: %s holds no statements", types.ErrSeedUnreadable, path)
	}

	for i, stmt := range stmts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := l.store.ExecStatement(ctx, stmt); err != nil {
			return fmt.Errorf("seed statement %d of %s: %w", i+1, path, err)
		}
	}
	l.log.WithFields(logrus.Fields{
		"script":     path,
		"statements": len(stmts),
	}).Info("seed script loaded")
	return nil
}

// SplitStatements splits script on semicolons that sit outside quoted
// literals. Lines whose first non-blank characters are '#' are comments,
// except when they start with the #__ table placeholder. Empty statements
// are dropped.
func SplitStatements(script string) []string {
	var (
		stmts []string
		cur   strings.Builder
		quote byte
	)
	flush := func() {
		if s := strings.TrimSpace(cur.String()); s != "" {
			stmts = append(stmts, s)
		}
		cur.Reset()
	}

	for _, line := range strings.SplitAfter(script, "\n") {
		if quote == 0 && isComment(line) {
			continue
		}
		for i := 0; i < len(line); i++ {
			c := line[i]
			switch {
			case quote != 0:
				cur.WriteByte(c)
				if c == '\\' && i+1 < len(line) {
					i++
					cur.WriteByte(line[i])
				} else if c == quote {
					quote = 0
				}
			case c == '\'' || c == '"':
				quote = c
				cur.WriteByte(c)
			case c == ';':
				flush()
			default:
				cur.WriteByte(c)
			}
		}
	}
	flush()
	return stmts
}

func isComment(line string) bool {
	t := strings.TrimSpace(line)
	return strings.HasPrefix(t, "#") && !strings.HasPrefix(t, types.TablePrefixPlaceholder)
}
