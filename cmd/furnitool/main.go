// furnitool is a CLI utility for working with furniture model packages.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/furniture-core/internal/config"
	"github.com/Faultbox/furniture-core/internal/logger"
	"github.com/Faultbox/furniture-core/pkg/archive"
	"github.com/Faultbox/furniture-core/pkg/codec"
	"github.com/Faultbox/furniture-core/pkg/imagecodec"
	"github.com/Faultbox/furniture-core/pkg/schema"
)

// app carries what every command needs.
type app struct {
	cfg      *config.Config
	log      *zap.Logger
	archives archive.Service
	codec    *codec.Codec
}

func main() {
	config.ParseFlags()
	if flag.NArg() < 1 {
		printUsage()
		os.Exit(1)
	}

	command := flag.Arg(0)
	args := flag.Args()[1:]

	if command == "help" || command == "-h" || command == "--help" {
		printUsage()
		return
	}

	a, err := setup()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	ctx := context.Background()
	switch command {
	case "info":
		err = a.cmdInfo(ctx, args)
	case "list", "ls":
		err = a.cmdList(args)
	case "extract", "x":
		err = a.cmdExtract(args)
	case "validate":
		err = a.cmdValidate(args)
	case "textures":
		err = a.cmdTextures(ctx, args)
	case "schema":
		err = a.cmdSchema(args)
	case "repack":
		err = a.cmdRepack(ctx, args)
	case "merge":
		err = a.cmdMerge(ctx, args)
	case "pack":
		err = a.cmdPack(ctx, args)
	case "follow":
		err = a.cmdFollow(ctx, args)
	case "config":
		err = a.cmdConfig(args)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		a.log.Debug("command failed", zap.String("command", command), zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func setup() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		return nil, err
	}
	log := logger.Named("furnitool")

	archives, err := archive.NewService(cfg.Import.LegacyCharset, cfg.Export.CompressionLevel)
	if err != nil {
		return nil, err
	}
	c := codec.New(cfg.CodecSettings(logger.Named("codec")), archives, imagecodec.Codec{})
	if cfg.Import.ValidateSchema {
		v, err := schema.New()
		if err != nil {
			return nil, fmt.Errorf("loading schemas: %w", err)
		}
		c.Schema = v
	}
	return &app{cfg: cfg, log: log, archives: archives, codec: c}, nil
}

func printUsage() {
	fmt.Println(`furnitool - furniture model package utility

Usage:
  furnitool [global options] <command> [options]

Global options:
  -config <file>    Config file (default: ./furnitool.yaml, then user config dir)
  -debug            Enable debug logging
  -strip-names      Omit element names from exported models
  -no-groups        Do not export the groups hierarchy
  -charset <name>   Charset of zip entry names without the UTF-8 flag
  -log-file <file>  Also write logs to this file

Commands:
  info <pkg.zip>                        Show model, properties and textures
  list <pkg.zip> [pattern]              List package entries
  extract <pkg.zip> <path> [output]     Extract entries (glob patterns allowed)
  validate <pkg.zip>                    Check documents against the schemas
  textures <pkg.zip>                    Show texture slots and images
  schema <model|properties>             Print a document schema
  repack <in.zip> <out.zip>             Re-export a package
  merge <out.zip> <a.zip> <b.zip>...    Merge packages into one model
  pack <dir> <out.zip>                  Build a package from model.json and images
  follow <pkg.zip> <out.zip>            Open the parent of a child-only model
  config init [path]                    Write the default config

Examples:
  furnitool info chair.zip
  furnitool -strip-names repack chair.zip chair-min.zip
  furnitool repack -fix move lamp.zip lamp-fixed.zip
  furnitool merge set.zip table.zip chair.zip
  furnitool pack ./lamp lamp.zip`)
}
