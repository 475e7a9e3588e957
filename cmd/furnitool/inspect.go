package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/furniture-core/pkg/archive"
	"github.com/Faultbox/furniture-core/pkg/codec"
	"github.com/Faultbox/furniture-core/pkg/imagecodec"
	"github.com/Faultbox/furniture-core/pkg/scene"
	"github.com/Faultbox/furniture-core/pkg/schema"
)

func (a *app) load(ctx context.Context, path string) (*scene.Project, *codec.ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return a.codec.Load(ctx, data, name)
}

func (a *app) cmdInfo(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: furnitool info <pkg.zip>")
	}

	p, res, err := a.load(ctx, args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Package:  %s\n", args[0])
	fmt.Printf("Name:     %s\n", p.Name)
	if p.Properties.DisplayName != "" {
		fmt.Printf("Display:  %s\n", p.Properties.DisplayName)
	}
	if p.Credit != "" {
		fmt.Printf("Credit:   %s\n", p.Credit)
	}
	if p.Parent != "" {
		fmt.Printf("Parent:   %s\n", p.Parent)
	}
	fmt.Printf("Function: %s\n", p.Properties.Function.Type())
	fmt.Printf("Flags:    rotate=%t hanging=%t\n", p.Properties.CanRotate, p.Properties.CanHanging)
	fmt.Printf("Grid:     %dx%d\n", p.TextureWidth, p.TextureHeight)
	fmt.Printf("Elements: %d\n", len(p.Boxes()))
	fmt.Printf("Groups:   %d\n", len(p.Groups()))
	fmt.Printf("Textures: %d\n", len(p.Textures))

	overflow := 0
	for _, b := range p.Boxes() {
		if a.codec.Settings.Envelope.Test(b) {
			overflow++
		}
	}
	if overflow > 0 {
		fmt.Printf("Overflow: %d elements outside [%g, %g]\n", overflow, a.codec.Settings.Envelope.Min, a.codec.Settings.Envelope.Max)
	}
	if len(p.Unhandled) > 0 {
		keys := make([]string, 0, len(p.Unhandled))
		for k := range p.Unhandled {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Printf("Extra:    %s\n", strings.Join(keys, ", "))
	}
	printNotices(res.Notices)
	return nil
}

func (a *app) cmdList(args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: furnitool list <pkg.zip> [pattern]")
	}

	pkg, err := archive.OpenFile(fs.Arg(0), a.archives.Charset)
	if err != nil {
		return err
	}

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, f := range pkg.List() {
		if pattern != "" && !matches(pattern, f) {
			continue
		}
		size, _ := pkg.Size(f)
		fmt.Printf("%10d  %s\n", size, f)
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
	return nil
}

func matches(pattern, name string) bool {
	matched, _ := filepath.Match(pattern, strings.ToLower(filepath.Base(name)))
	return matched || strings.Contains(strings.ToLower(name), pattern)
}

func (a *app) cmdExtract(args []string) error {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		return errors.New("usage: furnitool extract <pkg.zip> <path> [output_dir]")
	}

	filePath := fs.Arg(1)
	outputDir := "."
	if fs.NArg() > 2 {
		outputDir = fs.Arg(2)
	}

	pkg, err := archive.OpenFile(fs.Arg(0), a.archives.Charset)
	if err != nil {
		return err
	}

	var names []string
	if strings.Contains(filePath, "*") {
		pattern := strings.ToLower(filePath)
		for _, f := range pkg.List() {
			if matched, _ := filepath.Match(pattern, strings.ToLower(filepath.Base(f))); matched {
				names = append(names, f)
			}
		}
	} else {
		if !pkg.Contains(filePath) {
			return fmt.Errorf("file not found: %s", filePath)
		}
		names = []string{filePath}
	}

	extracted := 0
	for _, f := range names {
		data, err := pkg.Read(f)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", f, err)
			continue
		}

		// Preserve directory structure
		outputPath := filepath.Join(outputDir, filepath.FromSlash(f))
		if !strings.HasPrefix(outputPath, filepath.Clean(outputDir)) {
			a.log.Warn("skipping entry outside output directory", zap.String("entry", f))
			continue
		}
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			return fmt.Errorf("creating directory: %w", err)
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
			continue
		}

		fmt.Printf("Extracted: %s (%d bytes)\n", outputPath, len(data))
		extracted++
	}

	fmt.Fprintf(os.Stderr, "\nExtracted %d files\n", extracted)
	return nil
}

func (a *app) cmdValidate(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: furnitool validate <pkg.zip>")
	}

	pkg, err := archive.OpenFile(args[0], a.archives.Charset)
	if err != nil {
		return err
	}
	v, err := schema.New()
	if err != nil {
		return err
	}

	failed := false
	check := func(entry string, validate func([]byte) error, required bool) error {
		if !pkg.Contains(entry) {
			if required {
				failed = true
				fmt.Printf("%-16s missing\n", entry)
			} else {
				fmt.Printf("%-16s absent (defaults apply)\n", entry)
			}
			return nil
		}
		data, err := pkg.Read(entry)
		if err != nil {
			return err
		}
		if err := validate(data); err != nil {
			failed = true
			fmt.Printf("%-16s invalid\n%v\n", entry, err)
			return nil
		}
		fmt.Printf("%-16s ok\n", entry)
		return nil
	}
	if err := check(codec.ModelEntry, v.ValidateModel, true); err != nil {
		return err
	}
	if err := check(codec.PropertiesEntry, v.ValidateProperties, false); err != nil {
		return err
	}

	for _, f := range pkg.List() {
		if !strings.HasSuffix(f, codec.TextureExt) {
			continue
		}
		data, err := pkg.Read(f)
		if err != nil {
			return err
		}
		format, err := imagecodec.Sniff(data)
		if err != nil || format != imagecodec.FormatPNG {
			failed = true
			fmt.Printf("%-16s not a png image\n", f)
			continue
		}
		w, h, err := imagecodec.Size(data)
		if err != nil {
			failed = true
			fmt.Printf("%-16s unreadable\n%v\n", f, err)
			continue
		}
		fmt.Printf("%-16s ok (%dx%d)\n", f, w, h)
	}

	if failed {
		return errors.New("package is not valid")
	}
	return nil
}

func (a *app) cmdTextures(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("textures", flag.ExitOnError)
	dataURL := fs.Bool("data-url", false, "Print image data URLs")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return errors.New("usage: furnitool textures <pkg.zip>")
	}

	p, _, err := a.load(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Printf("%-16s %-32s %-9s %-10s %s\n", "SLOT", "LINK", "SIZE", "STATE", "PARTICLE")
	for _, t := range p.Textures {
		size := "-"
		if t.Width > 0 {
			size = fmt.Sprintf("%dx%d", t.Width, t.Height)
		}
		fmt.Printf("%-16s %-32s %-9s %-10s %t\n", t.ID, t.Link(), size, t.Error, t.Particle)
		if *dataURL && len(t.Data) > 0 {
			fmt.Println(imagecodec.DataURL(t.Data))
		}
	}
	return nil
}

func (a *app) cmdSchema(args []string) error {
	if len(args) < 1 {
		return errors.New("usage: furnitool schema <model|properties>")
	}

	var name string
	switch args[0] {
	case "model":
		name = schema.Model
	case "properties":
		name = schema.Properties
	default:
		return fmt.Errorf("unknown schema: %s", args[0])
	}
	data, err := schema.Source(name)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(data)
	return err
}

func printNotices(notices []codec.Notice) {
	if len(notices) == 0 {
		return
	}
	fmt.Println()
	fmt.Println("Notices:")
	for _, n := range notices {
		fmt.Printf("  %s\n", n)
	}
}
