package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/furniture-core/pkg/codec"
	"github.com/Faultbox/furniture-core/pkg/imagecodec"
	"github.com/Faultbox/furniture-core/pkg/scene"
)

// compile exports p and writes the package to out.
func (a *app) compile(ctx context.Context, p *scene.Project, out string, opts codec.ExportOptions) (*codec.ExportResult, error) {
	res, data, err := a.codec.Compile(ctx, p, opts)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}
	if err := os.WriteFile(out, data, 0644); err != nil {
		return nil, fmt.Errorf("writing %s: %w", out, err)
	}
	fmt.Printf("Wrote: %s (%d elements, %d bytes)\n", out, len(res.Model.Elements), len(data))
	return res, nil
}

func (a *app) cmdRepack(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("repack", flag.ExitOnError)
	fix := fs.String("fix", "none", "Handle elements outside the coordinate limits: none, move or clamp")
	quiet := fs.Bool("q", false, "Do not report export notices")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return errors.New("usage: furnitool repack [-fix none|move|clamp] <in.zip> <out.zip>")
	}
	env := a.codec.Settings.Envelope
	var repair func(*scene.Box)
	switch *fix {
	case "none":
	case "move":
		repair = env.Move
	case "clamp":
		repair = env.Clamp
	default:
		return fmt.Errorf("unknown -fix mode %q", *fix)
	}

	p, _, err := a.load(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	if repair != nil {
		s := a.codec.Settings
		s.WarnOverflow = true
		probe := codec.ExportModel(p, s, codec.ExportOptions{})
		ui := newCLIUI(a.log)
		ui.answers[codec.ModelClipping] = codec.ChoiceSelectOverflow
		codec.Present(ui, probe.Notices)
		for _, id := range ui.selected {
			if b := p.Find(id); b != nil {
				repair(b)
				a.log.Info("element repaired", zap.String("name", b.Name), zap.String("mode", *fix))
			}
		}
	}

	res, err := a.compile(ctx, p, fs.Arg(1), codec.ExportOptions{PreventNotices: *quiet})
	if err != nil {
		return err
	}
	printNotices(res.Notices)
	return nil
}

func (a *app) cmdMerge(ctx context.Context, args []string) error {
	if len(args) < 3 {
		return errors.New("usage: furnitool merge <out.zip> <a.zip> <b.zip>...")
	}

	p, res, err := a.load(ctx, args[1])
	if err != nil {
		return err
	}
	notices := res.Notices
	for _, path := range args[2:] {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		res, err := a.codec.Parse(ctx, data, p, codec.ImportOptions{Name: name, Add: true})
		if err != nil {
			return fmt.Errorf("merging %s: %w", path, err)
		}
		notices = append(notices, res.Notices...)
		fmt.Printf("Merged: %s (%d elements)\n", path, len(res.Elements))
	}
	printNotices(notices)

	out, err := a.compile(ctx, p, args[0], codec.ExportOptions{})
	if err != nil {
		return err
	}
	printNotices(out.Notices)
	return nil
}

// imageExts are tried, in order, when a texture has no .png file.
var imageExts = []string{".tga", ".bmp", ".webp", ".jpg", ".gif"}

// dirSource serves texture images from a directory, converting other
// formats to PNG.
func dirSource(dir string, log *zap.Logger) codec.ImageSource {
	return func(name string) ([]byte, bool) {
		base := filepath.Join(dir, filepath.FromSlash(name))
		if data, err := os.ReadFile(base); err == nil {
			return data, true
		}
		stem := strings.TrimSuffix(base, codec.TextureExt)
		for _, ext := range imageExts {
			data, err := os.ReadFile(stem + ext)
			if err != nil {
				continue
			}
			png, err := imagecodec.ToPNG(data)
			if err != nil {
				log.Warn("cannot convert texture", zap.String("file", stem+ext), zap.Error(err))
				return data, true
			}
			return png, true
		}
		return nil, false
	}
}

func (a *app) cmdPack(ctx context.Context, args []string) error {
	if len(args) < 2 {
		return errors.New("usage: furnitool pack <dir> <out.zip>")
	}
	dir := args[0]

	model, err := os.ReadFile(filepath.Join(dir, codec.ModelEntry))
	if err != nil {
		return err
	}
	props, err := os.ReadFile(filepath.Join(dir, codec.PropertiesEntry))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	p := scene.NewProject(filepath.Base(filepath.Clean(dir)))
	res, err := a.codec.ParseModel(ctx, model, props, dirSource(dir, a.log), p, codec.ImportOptions{Name: p.Name})
	if err != nil {
		return err
	}
	printNotices(res.Notices)

	out, err := a.compile(ctx, p, args[1], codec.ExportOptions{})
	if err != nil {
		return err
	}
	printNotices(out.Notices)
	return nil
}

func (a *app) cmdFollow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("follow", flag.ExitOnError)
	withTextures := fs.Bool("with-textures", false, "Carry the child's textures over to the parent")
	dir := fs.String("dir", "", "Directory holding parent packages (default: import.parent_dir)")
	fs.Parse(args)

	if fs.NArg() < 2 {
		return errors.New("usage: furnitool follow [-with-textures] <pkg.zip> <out.zip>")
	}
	if *dir == "" {
		*dir = a.cfg.Import.ParentDir
	}

	_, child, err := a.load(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	ui := newCLIUI(a.log)
	ui.answers[codec.ChildModelOnly] = codec.ChoiceOpen
	if *withTextures {
		ui.answers[codec.ChildModelOnly] = codec.ChoiceOpenWithTextures
	}
	answers := codec.Present(ui, child.Notices)

	for i, n := range child.Notices {
		if n.Kind != codec.ChildModelOnly || answers[i] == codec.ChoiceOK {
			continue
		}
		resolver := codec.DirResolver{Dir: *dir, Read: os.ReadFile}
		p, _, err := a.codec.FollowParent(ctx, child, n.Parent, resolver, answers[i] == codec.ChoiceOpenWithTextures)
		if err != nil {
			return err
		}
		_, err = a.compile(ctx, p, fs.Arg(1), codec.ExportOptions{})
		return err
	}
	return errors.New("model has elements of its own or extends a builtin parent")
}

func (a *app) cmdConfig(args []string) error {
	if len(args) < 1 || args[0] != "init" {
		return errors.New("usage: furnitool config init [path]")
	}

	var path string
	var err error
	if len(args) > 1 {
		path = args[1]
		err = a.cfg.SaveTo(path)
	} else {
		path, err = a.cfg.Save()
	}
	if err != nil {
		return err
	}
	fmt.Printf("Wrote: %s\n", path)
	return nil
}
