// Command jiten is the local dictionary engine's command-line front end.
//
// Usage:
//
//	jiten import <archive.zip>     import a dictionary archive
//	jiten lookup <sentence>        deinflect and look up at a cursor position
//	jiten ls                       list imported dictionaries and profiles
//
// Configuration is read from CONFIG_PATH (YAML) and environment variables.
//
// Exit codes: 0 = success, 1 = error.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/marumori/jiten/internal/app"
	"github.com/marumori/jiten/internal/archive"
	"github.com/marumori/jiten/internal/config"
	"github.com/marumori/jiten/internal/domain"
	"github.com/marumori/jiten/internal/service/importer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	logger := app.NewLogger(cfg.Log)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	engine, err := app.New(ctx, *cfg, logger)
	if err != nil {
		log.Fatalf("start engine: %v", err)
	}
	defer engine.Close()

	switch os.Args[1] {
	case "import":
		err = runImport(ctx, engine, os.Args[2:])
	case "lookup":
		err = runLookup(ctx, engine, os.Args[2:])
	case "ls":
		err = runList(engine)
	default:
		usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: jiten <import|lookup|ls> [flags]")
}

func runImport(ctx context.Context, engine *app.Engine, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: jiten import <archive.zip>")
	}

	data, err := os.ReadFile(fs.Arg(0))
	if err != nil {
		return err
	}

	stream := engine.ImportDictionary(ctx, data, archive.KindUnknown)
	defer stream.Close()

	for ev := range stream.Events() {
		switch e := ev.(type) {
		case importer.DeterminedKind:
			fmt.Printf("format: %s\n", e.Kind)
		case importer.ParsedMeta:
			fmt.Printf("importing %q (%s)\n", e.Meta.Name, e.Meta.Version)
		case importer.Progress:
			fmt.Printf("\r%3.0f%%", e.Frac*100)
		case importer.Done:
			fmt.Printf("\rdone: dictionary %d\n", e.ID)
		case importer.Err:
			fmt.Println()
			return e.Err
		}
	}
	return nil
}

func runLookup(ctx context.Context, engine *app.Engine, args []string) error {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	cursor := fs.Int("cursor", 0, "byte offset into the sentence")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: jiten lookup [--cursor=N] <sentence>")
	}

	kinds := []domain.RecordKind{domain.KindGlossary, domain.KindFrequency, domain.KindPitch}
	results, err := engine.Lookup(ctx, fs.Arg(0), *cursor, kinds)
	if err != nil {
		return err
	}

	snap := engine.Snapshot()
	for _, r := range results {
		name := fmt.Sprintf("#%d", r.Record.Source)
		if d, ok := snap.Dictionary(r.Record.Source); ok {
			name = d.Meta.Name
		}
		fmt.Printf("[%s] %s  %v\n", name, r.Record.Term, r.Record.Payload)
	}
	if len(results) == 0 {
		fmt.Println("no results")
	}
	return nil
}

func runList(engine *app.Engine) error {
	snap := engine.Snapshot()

	fmt.Println("dictionaries:")
	for _, d := range snap.Dictionaries() {
		fmt.Printf("  %3d  pos=%d  %s (%s)\n", d.ID, d.Position, d.Meta.Name, d.Meta.Version)
	}

	current := snap.CurrentProfileID()
	profiles := make([]domain.Profile, 0, len(snap.Profiles()))
	for _, p := range snap.Profiles() {
		profiles = append(profiles, p)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })

	fmt.Println("profiles:")
	for _, p := range profiles {
		marker := " "
		if p.ID == current {
			marker = "*"
		}
		name := p.Name
		if name == "" {
			name = "(default)"
		}
		fmt.Printf("  %s %3d  %s  enabled=%d\n", marker, p.ID, name, len(p.EnabledDictionaries))
	}
	return nil
}
