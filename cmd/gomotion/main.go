/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gomotion/internal/backend"
	"gomotion/internal/config"
	"gomotion/internal/crash"
	"gomotion/internal/export"
	applog "gomotion/internal/log"
	"gomotion/internal/storage"
	"gomotion/internal/telemetry"
	"gomotion/internal/transport"
	"gomotion/internal/version"
)

func usage() {
	fmt.Println("GoMotion — motion curve editor core")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  gomotion version|-v|--version                 Show version")
	fmt.Println("  gomotion init <dir> <name>                    Create a new curve bank at <dir> with name <name>")
	fmt.Println("  gomotion open <dir>                           Open curve bank at <dir> and print summary")
	fmt.Println("  gomotion save <dir>                           Save bank at <dir> (creates backup)")
	fmt.Println("  gomotion validate <dir>                       Check every curve in the bank for structural errors")
	fmt.Println("  gomotion export <dir> <curve> <svg|png|pdf> <out>  Render a curve to a plot file")
	fmt.Println("  gomotion play <dir> <curve> [loop] [offset]   Send a curve to the motion controller")
	fmt.Println("  gomotion stop                                 Stop playback on the motion controller")
	fmt.Println("  gomotion motors                               List motors known to the controller")
}

func main() {
	// initialize structured logging using environment defaults
	applog.Init(applog.FromEnv())
	l := applog.WithComponent("cli")
	telemetry.InitDefault()
	defer telemetry.Flush(context.Background())
	var bh *storage.BankHandle
	defer func() { crash.Recover(bh) }()

	args := os.Args
	l.Debug("start", slog.Int("args", len(args)))
	if len(args) > 1 {
		switch args[1] {
		case "version", "--version", "-v":
			fmt.Println("GoMotion — motion curve editor core")
			fmt.Println(version.String())
			return
		case "init":
			if len(args) < 4 {
				fmt.Println("init requires <dir> and <name>")
				usage()
				os.Exit(2)
			}
			dir := args[2]
			name := args[3]
			abs, _ := filepath.Abs(dir)
			l.Info("init bank", slog.String("root", abs), slog.String("name", name))
			b := storage.Bank{Name: name, Curves: []storage.NamedCurve{}}
			h, err := storage.Init(abs, b)
			if err != nil {
				l.Error("init failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			bh = h
			telemetry.Event("bank_created", nil)
			fmt.Println("Created curve bank at", abs)
			return
		case "open":
			if len(args) < 3 {
				fmt.Println("open requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("open bank", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			bh = h
			telemetry.Event("bank_opened", map[string]any{"curves": len(h.Bank.Curves)})
			fmt.Printf("Opened bank: %s\n", h.Bank.Name)
			fmt.Printf("Curves: %d\n", len(h.Bank.Curves))
			for _, nc := range h.Bank.Curves {
				fmt.Printf("  %s (%d channels)\n", nc.Name, len(nc.Channels))
			}
			fmt.Println("Root:", h.Root)
			return
		case "save":
			if len(args) < 3 {
				fmt.Println("save requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("save bank", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open before save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			bh = h
			h.Bank.Metadata.Notes = fmt.Sprintf("Saved at %s", time.Now().Format(time.RFC3339))
			if err := storage.Save(h); err != nil {
				l.Error("save failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			telemetry.Event("bank_saved", map[string]any{"curves": len(h.Bank.Curves)})
			fmt.Println("Saved bank and created a backup of previous manifest (if any).")
			return
		case "validate":
			if len(args) < 3 {
				fmt.Println("validate requires <dir>")
				usage()
				os.Exit(2)
			}
			abs, _ := filepath.Abs(args[2])
			l.Info("validate bank", slog.String("root", abs))
			h, err := storage.Open(abs)
			if err != nil {
				l.Error("open failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			bh = h
			bad := 0
			for _, nc := range h.Bank.Curves {
				if _, err := h.Bank.Curve(nc.Name); err != nil {
					bad++
					fmt.Printf("  %s: %v\n", nc.Name, err)
				}
			}
			if bad > 0 {
				fmt.Printf("%d of %d curves failed validation\n", bad, len(h.Bank.Curves))
				os.Exit(1)
			}
			fmt.Printf("All %d curves are valid.\n", len(h.Bank.Curves))
			return
		case "export":
			if len(args) < 6 {
				fmt.Println("export requires <dir> <curve> <svg|png|pdf> <out>")
				usage()
				os.Exit(2)
			}
			bh = runExport(l, args[2], args[3], args[4], args[5])
			return
		case "play":
			if len(args) < 4 {
				fmt.Println("play requires <dir> and <curve>")
				usage()
				os.Exit(2)
			}
			loop := false
			offset := 0.0
			for _, a := range args[4:] {
				if a == "loop" {
					loop = true
					continue
				}
				if v, err := strconv.ParseFloat(a, 64); err == nil {
					offset = v
				}
			}
			bh = runPlay(l, args[2], args[3], loop, offset)
			return
		case "stop":
			cli := controllerClient(l)
			if err := cli.StopPlayback(context.Background()); err != nil {
				l.Error("stop failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			telemetry.Event("playback_stopped", nil)
			fmt.Println("Playback stopped.")
			return
		case "motors":
			cli := controllerClient(l)
			motors, err := cli.ListMotors(context.Background())
			if err != nil {
				l.Error("list motors failed", slog.Any("err", err))
				fmt.Println("Error:", err)
				os.Exit(1)
			}
			for _, m := range motors {
				fmt.Printf("  %d  %-16s  [%g, %g]\n", m.Channel, m.Name, m.Min, m.Max)
			}
			return
		}
	}

	usage()
}

func controllerClient(l *slog.Logger) *backend.Client {
	cfg, token, err := config.Load()
	if err != nil {
		l.Warn("config load failed, using defaults", slog.Any("err", err))
		cfg = config.Defaults()
	}
	return backend.NewClient(cfg.Backend.BaseURL, token)
}

func runExport(l *slog.Logger, dir, curveName, format, out string) *storage.BankHandle {
	abs, _ := filepath.Abs(dir)
	h, err := storage.Open(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	c, err := h.Bank.Curve(curveName)
	if err != nil {
		l.Error("curve lookup failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	opt := export.Options{ShowKnots: true, Title: curveName}
	switch format {
	case "svg":
		err = export.ExportSVG(c, curveName, out, opt)
	case "png":
		err = export.ExportPNG(c, curveName, out, opt)
	case "pdf":
		err = export.ExportPDF(c, curveName, out, opt)
	default:
		fmt.Println("unknown export format:", format)
		os.Exit(2)
	}
	if err != nil {
		l.Error("export failed", slog.String("format", format), slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	telemetry.Event("curve_exported", map[string]any{"format": format, "channels": c.ChannelCount()})
	fmt.Println("Exported", curveName, "to", out)
	return h
}

func runPlay(l *slog.Logger, dir, curveName string, loop bool, offset float64) *storage.BankHandle {
	abs, _ := filepath.Abs(dir)
	h, err := storage.Open(abs)
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	c, err := h.Bank.Curve(curveName)
	if err != nil {
		l.Error("curve lookup failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	cli := controllerClient(l)
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	start, err := cli.Play(ctx, curveName, c.Records(), loop, offset)
	if err != nil {
		l.Error("play failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	tp := transport.NewTransport(c.Duration())
	if loop {
		tp.ToggleLooping()
	}
	tp.Play(start)
	telemetry.Event("playback_started", map[string]any{
		"channels": c.ChannelCount(),
		"duration": c.Duration(),
		"loop":     loop,
	})
	l.Info("playback started", slog.String("curve", curveName), slog.Float64("start", start), slog.Bool("loop", loop))
	fmt.Printf("Playing %q (duration %gs, start %g)\n", curveName, c.Duration(), start)
	return h
}
