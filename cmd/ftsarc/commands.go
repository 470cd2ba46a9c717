package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/pflag"

	"github.com/meigma/ftsarc"
	"github.com/meigma/ftsarc/compress"
)

type command struct {
	name    string
	summary string
	run     func(ctx context.Context, a *app, args []string) error
}

var commands = []command{
	{"pack", "build an archive from a directory", cmdPack},
	{"list", "list the chunks of archives", cmdList},
	{"extract", "extract an archive, or decompress a single file", cmdExtract},
	{"remove", "remove chunks from an archive", cmdRemove},
	{"compress", "compress a single file", cmdCompress},
	{"decompress", "decompress a single file", cmdDecompress},
	{"codecs", "list the available compressors", cmdCodecs},
}

func lookupCommand(name string) (command, bool) {
	for _, c := range commands {
		if c.name == name {
			return c, true
		}
	}
	return command{}, false
}

// helpOK turns a help request into a successful exit.
func helpOK(err error) error {
	if errors.Is(err, pflag.ErrHelp) {
		return nil
	}
	return err
}

// openOptions are the options used to open existing archives.
func (a *app) openOptions() ([]ftsarc.Option, error) {
	policy, err := a.cfg.CollisionPolicy()
	if err != nil {
		return nil, err
	}
	return []ftsarc.Option{
		ftsarc.WithFactory(a.codecs),
		ftsarc.WithLogger(a.logger),
		ftsarc.WithWorkers(a.cfg.Workers),
		ftsarc.WithCollisionPolicy(policy),
	}, nil
}

func (a *app) open(ctx context.Context, path string) (*ftsarc.Archive, error) {
	opts, err := a.openOptions()
	if err != nil {
		return nil, err
	}
	return ftsarc.Open(ctx, a.fsys, path, opts...)
}

func cmdPack(ctx context.Context, a *app, args []string) error {
	flags := a.flagSet("pack", "pack [flags] <dir> <archive>")
	codecName := flags.StringP("compressor", "c", a.cfg.Compressor, "codec wrapping the whole archive")
	fileCodec := flags.String("file-compressor", a.cfg.FileCompressor, "codec for each file; empty stores files as they are")
	update := flags.BoolP("update", "u", false, "add to an existing archive, replacing files with the same name")
	workers := flags.IntP("workers", "j", a.cfg.Workers, "files read concurrently; 0 uses GOMAXPROCS")
	prefix := flags.String("prefix", "", "prepended to every chunk name")
	if err := parse(flags, args, 2, 2); err != nil {
		return helpOK(err)
	}
	dir, out := flags.Arg(0), flags.Arg(1)

	archiveCodec, err := a.codec(*codecName)
	if err != nil {
		return err
	}
	unlock, err := a.lockArchive(out)
	if err != nil {
		return err
	}
	defer unlock()
	opts, err := a.openOptions()
	if err != nil {
		return err
	}
	buildOpts := append(slices.Clone(opts),
		ftsarc.WithName(out),
		ftsarc.WithCompressor(archiveCodec),
		ftsarc.WithWorkers(*workers),
		ftsarc.WithPrefix(*prefix),
	)
	if *fileCodec != "" {
		c, err := a.codec(*fileCodec)
		if err != nil {
			return err
		}
		buildOpts = append(buildOpts,
			ftsarc.WithFileCompressor(c),
			ftsarc.WithSkipCompression(a.cfg.skipCompression()...),
		)
	}

	arc, err := ftsarc.FromDirectory(ctx, a.fsys, dir, buildOpts...)
	if err != nil {
		return fmt.Errorf("pack %s: %w", dir, err)
	}
	if *update && ftsarc.IsValidFile(a.fsys, out, a.codecs) {
		existing, err := ftsarc.Open(ctx, a.fsys, out, opts...)
		if err != nil {
			return fmt.Errorf("pack: %w", err)
		}
		if flags.Changed("compressor") {
			existing.SetCompressor(archiveCodec)
		}
		for name, c := range arc.All() {
			if existing.Has(name) {
				a.logger.Info("replacing file", "name", name)
			}
			if err := existing.Give(c, true); err != nil {
				return fmt.Errorf("pack: %w", err)
			}
		}
		arc = existing
	}

	if err := arc.Store(a.fsys); err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	info, err := a.fsys.Stat(out)
	if err != nil {
		return fmt.Errorf("pack: %w", err)
	}
	fmt.Fprintf(a.stdout, "%s: %d files, %s, compressor %s\n",
		out, arc.FileCount(), humanize.IBytes(uint64(info.Size())), arc.Compressor().Name()) //nolint:gosec // size is non-negative
	return nil
}

func cmdList(ctx context.Context, a *app, args []string) error {
	flags := a.flagSet("list", "list [flags] <archive>...")
	long := flags.BoolP("long", "l", false, "also show codec, decoded size, and digest of each file")
	if err := parse(flags, args, 1, -1); err != nil {
		return helpOK(err)
	}

	for _, path := range flags.Args() {
		arc, err := a.open(ctx, path)
		if err != nil {
			return fmt.Errorf("list: %w", err)
		}
		fmt.Fprintf(a.stdout, "%s (%s, %d chunks):\n", path, arc.Compressor().Name(), arc.Len())

		tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
		if *long {
			desc, err := arc.Descriptor()
			if err != nil {
				return fmt.Errorf("list %s: %w", path, err)
			}
			fmt.Fprintf(a.stdout, "  %s %s %s\n", desc.MediaType, desc.Digest, humanize.IBytes(uint64(desc.Size))) //nolint:gosec // size is non-negative
			infos, err := arc.Inspect()
			if err != nil {
				return fmt.Errorf("list %s: %w", path, err)
			}
			for _, info := range infos {
				size, digest := "-", "-"
				if !info.Lossy {
					size, digest = humanize.IBytes(info.Size), info.Digest.Encoded()[:12]
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n", marker(info.Lossy), humanize.IBytes(info.PayloadLength),
					size, dash(info.Compressor), digest, info.Name)
			}
		} else {
			for name, c := range arc.All() {
				_, unknown := c.(*ftsarc.UnknownChunk)
				fmt.Fprintf(tw, "%s\t%s\t%s\n", marker(unknown), humanize.IBytes(c.PayloadLength()), name)
			}
		}
		if err := tw.Flush(); err != nil {
			return err
		}
	}
	return nil
}

// marker tags file chunks [F] and chunks whose payload is not kept [?].
func marker(lossy bool) string {
	if lossy {
		return "[?]"
	}
	return "[F]"
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func cmdExtract(ctx context.Context, a *app, args []string) error {
	flags := a.flagSet("extract", "extract [flags] <archive> <dir>")
	raw := flags.Bool("raw", false, "write files as stored, without removing their codec")
	workers := flags.IntP("workers", "j", a.cfg.Workers, "files written concurrently; 0 uses GOMAXPROCS")
	if err := parse(flags, args, 2, 2); err != nil {
		return helpOK(err)
	}
	in, dir := flags.Arg(0), flags.Arg(1)

	if !ftsarc.IsValidFile(a.fsys, in, a.codecs) {
		a.logger.Info("not an archive, decompressing as a single file", "path", in)
		out := "-"
		if dir != "-" {
			out = filepath.Join(dir, filepath.Base(in))
		}
		return decompressFile(a, in, out)
	}

	arc, err := a.open(ctx, in)
	if err != nil {
		return fmt.Errorf("extract: %w", err)
	}
	err = arc.Extract(ctx, a.fsys, dir, ftsarc.ExtractWithWorkers(*workers), ftsarc.ExtractDecoded(!*raw))
	if err != nil {
		return fmt.Errorf("extract %s: %w", in, err)
	}
	fmt.Fprintf(a.stdout, "%s: extracted %d files into %s\n", in, arc.FileCount(), dir)
	return nil
}

func cmdRemove(ctx context.Context, a *app, args []string) error {
	flags := a.flagSet("remove", "remove <archive> <name>...")
	if err := parse(flags, args, 2, -1); err != nil {
		return helpOK(err)
	}
	path := flags.Arg(0)

	unlock, err := a.lockArchive(path)
	if err != nil {
		return err
	}
	defer unlock()
	arc, err := a.open(ctx, path)
	if err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	removed := 0
	for _, name := range flags.Args()[1:] {
		if _, ok := arc.Take(name); ok {
			fmt.Fprintf(a.stdout, "removed %s\n", name)
			removed++
			continue
		}
		fmt.Fprintf(a.stdout, "%s: not in archive (names are case-sensitive)\n", name)
	}
	if removed == 0 {
		return nil
	}
	if err := arc.Store(a.fsys); err != nil {
		return fmt.Errorf("remove: %w", err)
	}
	return nil
}

func cmdCompress(_ context.Context, a *app, args []string) error {
	flags := a.flagSet("compress", "compress [flags] <in> <out>")
	codecName := flags.StringP("compressor", "c", a.cfg.Compressor, "codec to compress with")
	if err := parse(flags, args, 2, 2); err != nil {
		return helpOK(err)
	}
	in, out := flags.Arg(0), flags.Arg(1)

	c, err := a.codec(*codecName)
	if err != nil {
		return err
	}
	f, err := readFile(a, in)
	if err != nil {
		return fmt.Errorf("compress: %w", err)
	}
	f.SetCompressor(c)
	data := f.Encode()
	if err := writeOutput(a, out, data); err != nil {
		return fmt.Errorf("compress: %w", err)
	}

	how := c.Name()
	switch {
	case c.Name() == compress.NoneName:
		how = "uncompressed"
	case len(data) == len(f.Bytes()):
		how = "stored uncompressed, " + c.Name() + " did not shrink it"
	}
	if out != "-" {
		fmt.Fprintf(a.stdout, "%s -> %s: %s -> %s (%s)\n", in, out,
			humanize.IBytes(f.Size()), humanize.IBytes(uint64(len(data))), how)
	}
	return nil
}

func cmdDecompress(_ context.Context, a *app, args []string) error {
	flags := a.flagSet("decompress", "decompress <in> <out|->")
	if err := parse(flags, args, 2, 2); err != nil {
		return helpOK(err)
	}
	return decompressFile(a, flags.Arg(0), flags.Arg(1))
}

func decompressFile(a *app, in, out string) error {
	f, err := readFile(a, in)
	if err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	if err := writeOutput(a, out, f.Bytes()); err != nil {
		return fmt.Errorf("decompress: %w", err)
	}
	if out != "-" {
		fmt.Fprintf(a.stdout, "%s -> %s: %s (%s)\n", in, out, humanize.IBytes(f.Size()), f.Compressor().Name())
	}
	return nil
}

func cmdCodecs(_ context.Context, a *app, args []string) error {
	flags := a.flagSet("codecs", "codecs")
	if err := parse(flags, args, 0, 0); err != nil {
		return helpOK(err)
	}
	tw := tabwriter.NewWriter(a.stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tSIGNATURE\tDESCRIPTION")
	for _, info := range a.codecs.List() {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", info.Name, dash(info.Signature), info.Description)
	}
	return tw.Flush()
}
