// Command zidsbuild is the offline GDFA builder CLI: it reads an ODFA
// description, runs the offline builder, and writes the resulting garbled
// row matrix in either the two-file or single-file container format,
// optionally alongside a secrets dump.
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/urfave/cli"

	"github.com/SJieNg123/zids/container"
	"github.com/SJieNg123/zids/gdfa"
	"github.com/SJieNg123/zids/odfa"
	"github.com/SJieNg123/zids/secretstore"
	"github.com/SJieNg123/zids/zidslog"

	"github.com/op/go-logging"
)

var log = zidslog.Log

func fail(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	color.Red("error: %s", msg)
	return cli.NewExitError(msg, 1)
}

func ok(format string, args ...interface{}) {
	color.Green(format, args...)
}

func buildAction(c *cli.Context) error {
	zidslog.Setup("zidsbuild", logging.NOTICE, os.Stderr)

	odfaPath := c.String("odfa")
	outdir := c.String("outdir")
	if odfaPath == "" {
		return fail("--odfa is required")
	}
	if outdir == "" {
		return fail("--outdir is required")
	}
	format := c.String("format")
	if format != "jsonbin" && format != "container" {
		return fail("--format must be jsonbin or container")
	}

	sec := odfa.SecurityParams{
		KBits:        c.Int("k"),
		KPrimeBits:   c.Int("kprime"),
		Kappa:        c.Int("kappa"),
		AlphabetSize: c.Int("alphabet"),
	}
	sp := odfa.SparsityParams{
		Outmax: c.Int("outmax"),
		Cmax:   c.Int("cmax"),
	}
	if err := sec.Validate(); err != nil {
		return fail("%v", err)
	}
	if err := sp.Validate(sec.AlphabetSize); err != nil {
		return fail("%v", err)
	}

	saveMode, err := secretstore.ParseMode(c.String("save-secrets"))
	if err != nil {
		return fail("%v", err)
	}
	masterKey, err := secretstore.ParseMasterKeyHex(c.String("master-key-hex"))
	if err != nil {
		return fail("%v", err)
	}

	log.Infof("loading ODFA from %s", odfaPath)
	a, err := odfa.LoadFile(odfaPath, sec.AlphabetSize, sp.Outmax, sp.Cmax)
	if err != nil {
		return fail("%v", err)
	}
	log.Noticef("loaded ODFA: %d states, start=%d", a.NumStates, a.StartState)

	opts := gdfa.BuildOptions{AIDBits: c.Int("aid-bits"), PadSeedFunc: gdfa.GKBoundPadSeedFunc(sec.KPrimeBytes())}
	header, rows, _, secrets, err := gdfa.BuildGDFA(a, sec, sp, opts)
	if err != nil {
		return fail("build failed: %v", err)
	}
	log.Infof("built %d rows of %d bytes each", header.NumStates, header.RowBytes)

	if err := os.MkdirAll(outdir, 0o755); err != nil {
		return fail("create outdir: %v", err)
	}

	flat := make([]byte, 0, header.RowBytes*header.NumStates)
	for _, r := range rows {
		flat = append(flat, r...)
	}
	log.Infof("rows fingerprint (blake2b-128): %s", container.Fingerprint(flat))

	switch format {
	case "jsonbin":
		headerBytes, rowsBytes, err := container.WriteTwoFile(header, flat, c.Bool("gzip-header"), true)
		if err != nil {
			return fail("serialize: %v", err)
		}
		if err := os.WriteFile(outdir+"/header.json", headerBytes, 0o644); err != nil {
			return fail("write header.json: %v", err)
		}
		if err := os.WriteFile(outdir+"/rows.bin", rowsBytes, 0o644); err != nil {
			return fail("write rows.bin: %v", err)
		}
		ok("wrote %s/header.json and %s/rows.bin", outdir, outdir)
	case "container":
		path := c.String("container-path")
		if path == "" {
			path = outdir + "/gdfa.zids"
		}
		blob, err := container.WriteSingleFile(header, flat)
		if err != nil {
			return fail("serialize: %v", err)
		}
		if err := os.WriteFile(path, blob, 0o644); err != nil {
			return fail("write %s: %v", path, err)
		}
		ok("wrote %s", path)
	}

	secPath, err := secretstore.Write(outdir, saveMode, secrets, masterKey)
	if err != nil {
		return fail("write secrets: %v", err)
	}
	if secPath != "" {
		ok("wrote %s (mode=%s)", secPath, saveMode)
	}

	return nil
}

func main() {
	app := cli.NewApp()
	app.Name = "zidsbuild"
	app.Usage = "build a garbled-DFA (GDFA) container from an ODFA description"
	app.Version = "1.0.0"
	app.Flags = []cli.Flag{
		cli.StringFlag{Name: "odfa", Usage: "path to the ODFA JSON description"},
		cli.StringFlag{Name: "outdir", Usage: "directory to write build outputs into"},
		cli.StringFlag{Name: "format", Value: "jsonbin", Usage: "jsonbin|container"},
		cli.IntFlag{Name: "k", Value: 128, Usage: "k_bits"},
		cli.IntFlag{Name: "kprime", Value: 128, Usage: "kprime_bits"},
		cli.IntFlag{Name: "kappa", Value: 128, Usage: "kappa"},
		cli.IntFlag{Name: "alphabet", Value: 256, Usage: "alphabet_size"},
		cli.IntFlag{Name: "outmax", Value: 4, Usage: "max out-degree per row"},
		cli.IntFlag{Name: "cmax", Value: 4, Usage: "max column membership per symbol"},
		cli.IntFlag{Name: "aid-bits", Value: 16, Usage: "attack id field width in bits"},
		cli.StringFlag{Name: "master-key-hex", Usage: "hex AES key to seal the secrets file under"},
		cli.BoolFlag{Name: "gzip-header", Usage: "gzip-frame header.json in jsonbin format"},
		cli.StringFlag{Name: "container-path", Usage: "explicit output path for --format container"},
		cli.StringFlag{Name: "save-secrets", Value: "none", Usage: "none|invperm|full"},
	}
	app.Action = buildAction

	if err := app.Run(os.Args); err != nil {
		if ec, ok := err.(cli.ExitCoder); ok {
			os.Exit(ec.ExitCode())
		}
		color.Red("error: %v", err)
		os.Exit(1)
	}
}
