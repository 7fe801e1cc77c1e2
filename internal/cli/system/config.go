package system

import (
	"github.com/julianstephens/habitlit/internal/cli"
	"github.com/julianstephens/habitlit/internal/config"
)

type ConfigCmd struct {
	Init ConfigInitCmd `cmd:"" help:"Write a default config file."`
	Show ConfigShowCmd `cmd:"" help:"Show the effective settings." default:"1"`
}

type ConfigInitCmd struct {
	Force bool `help:"Overwrite an existing config file."`
}

func (c *ConfigInitCmd) Run(ctx *cli.Context) error {
	if err := config.Init(ctx.ConfigFile, config.Default(), c.Force); err != nil {
		return err
	}
	ctx.Printf("✓ Config file written to: %s\n", ctx.ConfigFile)
	return nil
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(ctx *cli.Context) error {
	ctx.Printf("# config file: %s\n", ctx.ConfigFile)
	settings := ctx.Settings
	if settings == nil {
		settings = config.Default()
	}
	return config.Write(ctx.Out, settings)
}
