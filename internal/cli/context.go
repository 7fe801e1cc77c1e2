package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/habitlit/internal/analytics"
	"github.com/julianstephens/habitlit/internal/backup"
	"github.com/julianstephens/habitlit/internal/config"
	"github.com/julianstephens/habitlit/internal/logger"
	"github.com/julianstephens/habitlit/internal/storage"
	"github.com/julianstephens/habitlit/internal/storage/sqlite"
	"github.com/julianstephens/habitlit/internal/tracker"
	"github.com/julianstephens/habitlit/internal/utils"
)

// Context is handed to every command's Run method
type Context struct {
	Store    storage.Provider
	Tracker  *tracker.Tracker
	Analyzer *analytics.Analyzer

	// Settings holds the effective global settings after flags, config file
	// and environment have been resolved
	Settings   *config.Config
	ConfigFile string

	// Interactive is set when stdin is a terminal, enabling huh prompts
	Interactive bool

	Out io.Writer
	In  io.Reader
}

func NewContext(store storage.Provider, clock utils.Clock, loc *time.Location) *Context {
	return &Context{
		Store:    store,
		Tracker:  tracker.New(store, clock, loc),
		Analyzer: analytics.New(store, clock, loc),
		Settings: config.Default(),
		Out:      os.Stdout,
		In:       os.Stdin,
	}
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// FileBacked reports whether the store lives in a single SQLite file that
// the backup manager can snapshot.
func (c *Context) FileBacked() bool {
	_, ok := c.Store.(*sqlite.Store)
	return ok
}

// PerformAutomaticBackup creates an automatic backup and silently handles errors
func (c *Context) PerformAutomaticBackup() {
	if c.Settings != nil && !c.Settings.AutoBackup {
		return
	}
	if !c.FileBacked() {
		logger.Debug("Skipping automatic backup for non-file store", "store", c.Store.GetConfigPath())
		return
	}
	mgr := backup.NewManager(c.Store.GetConfigPath())
	if _, err := mgr.CreateBackup(); err != nil {
		// Log warning but don't interrupt user workflow
		logger.Warn("Automatic backup failed", "error", err)
	}
}

// Confirm asks a yes/no question. On a terminal it shows a huh prompt;
// otherwise it reads a y/N answer from In.
func (c *Context) Confirm(title, description string) (bool, error) {
	if c.Interactive {
		var ok bool
		err := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(title).
					Description(description).
					Affirmative("Yes").
					Negative("No").
					Value(&ok),
			),
		).WithTheme(huh.ThemeDracula()).Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return false, nil
		}
		return ok, err
	}

	if description != "" {
		c.Println(description)
	}
	c.Printf("%s [y/N]: ", title)
	reader := bufio.NewReader(c.In)
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}
