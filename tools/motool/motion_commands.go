package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/mogaika/diva_mot/compose"
	"github.com/mogaika/diva_mot/mot"
	"github.com/mogaika/diva_mot/motscript"
	"github.com/mogaika/diva_mot/utils"
	"github.com/mogaika/diva_mot/utils/gltfutils"
)

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var dump bool
	cmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show record header and channel statistics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, data, err := readMotion(args[0])
			if err != nil {
				return err
			}
			h, err := mot.ReadHeader(data)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "size:     %d\n", len(data))
			fmt.Fprintf(out, "offsets:  count 0x%x tags 0x%x payload 0x%x bones 0x%x\n",
				h.CountOffset, h.TagsOffset, h.PayloadOffset, h.BonesOffset)
			fmt.Fprintf(out, "marker:   %d\n", h.Marker)
			fmt.Fprintf(out, "channels: %d\n", len(m.Channels))
			fmt.Fprintf(out, "frames:   %d\n", h.FrameCount)
			fmt.Fprintf(out, "bones:    %d\n", len(m.Bones))
			stats := m.Stats()
			for _, tag := range []mot.Tag{mot.TagEmpty, mot.TagConstant, mot.TagLinear, mot.TagSmooth} {
				fmt.Fprintf(out, "  %-8s %d\n", tag.String()+":", stats[tag])
			}
			if dump {
				fmt.Fprint(out, utils.DumpHex(data[:h.PayloadOffset]))
				fmt.Fprint(out, utils.SDump(m))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&dump, "dump", false, "Dump header bytes and decoded motion")
	return cmd
}

func newBonesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "bones <file>",
		Short: "List bones of record with names, types and ranks",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := readMotion(args[0])
			if err != nil {
				return err
			}
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for i, id := range m.Bones {
				name, typ, rank := "?", "?", "-"
				if n, ok := db.Names.BoneName(int(id)); ok {
					name = n
					if bt, ok := db.Types.BoneType(n); ok {
						typ = bt.String()
					} else if bt, ok := db.Overrides[n]; ok {
						typ = bt.String() + "*"
					}
					if r, ok := db.Ranks.Rank(n); ok {
						rank = fmt.Sprint(r)
					}
				}
				fmt.Fprintf(out, "%4d %5d %-24s %-10s %s\n", i, id, name, typ, rank)
			}
			return nil
		},
	}
}

func newDumpCommand(ctx *commandContext) *cobra.Command {
	var asYaml, flat bool
	var output string
	cmd := &cobra.Command{
		Use:   "dump <file>",
		Short: "Print motion as listing or yaml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var text []byte
			if flat {
				m, _, err := readMotion(args[0])
				if err != nil {
					return err
				}
				if text, err = yaml.Marshal(m); err != nil {
					return errors.Wrapf(err, "Failed to marshal")
				}
			} else {
				qm, err := ctx.readQualified(args[0])
				if err != nil {
					return err
				}
				if asYaml {
					if text, err = yaml.Marshal(qm); err != nil {
						return errors.Wrapf(err, "Failed to marshal")
					}
				} else {
					db, err := ctx.ensureDB()
					if err != nil {
						return err
					}
					text = []byte(motscript.Render(qm, db.Names))
				}
			}
			if output != "" {
				return writeOutput(output, text)
			}
			_, err := cmd.OutOrStdout().Write(text)
			return err
		},
	}
	cmd.Flags().BoolVar(&asYaml, "yaml", false, "Print qualified motion as yaml")
	cmd.Flags().BoolVar(&flat, "flat", false, "Print flat motion as yaml, without qualification")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var output string
	var noCompose, seek bool
	cmd := &cobra.Command{
		Use:   "build <listing>",
		Short: "Encode motion listing into record",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := os.ReadFile(args[0])
			if err != nil {
				return errors.Wrapf(err, "Failed to read listing")
			}
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			qm, err := motscript.Parse(text, db.Names)
			if err != nil {
				return errors.Wrapf(err, "Failed to parse %q", args[0])
			}
			if noCompose {
				qm.SortCanonical(db.Names, db.Ranks)
			} else {
				opts := compose.OptionsFromConfig(cfg)
				opts.Log = logger()
				if qm, err = compose.Compose(qm, db, opts); err != nil {
					return err
				}
			}

			if output == "" {
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ".bin"
			}
			if !seek {
				data, err := qm.Marshal(nil)
				if err != nil {
					return err
				}
				return writeOutput(output, data)
			}

			f, err := os.Create(output)
			if err != nil {
				return errors.Wrapf(err, "Failed to create %q", output)
			}
			defer f.Close()
			if _, err := qm.EncodeTo(f, nil); err != nil {
				return err
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output record (default: listing name with .bin)")
	cmd.Flags().BoolVar(&noCompose, "no-compose", false, "Do not add default bones, control points and custom poses")
	cmd.Flags().BoolVar(&seek, "seek", false, "Stream into file and patch header in place")
	return cmd
}

func newSortCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "sort <file>",
		Short: "Put bones of record into canonical order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qm, err := ctx.readQualified(args[0])
			if err != nil {
				return err
			}
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			qm.SortCanonical(db.Names, db.Ranks)
			data, err := qm.Marshal(nil)
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0]
			}
			return writeOutput(output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output record (default: overwrite input)")
	return cmd
}

func newSnapshotCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "snapshot <file>",
		Short: "Freeze every keyed channel to its first key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, _, err := readMotion(args[0])
			if err != nil {
				return err
			}
			m.Snapshot()
			data, err := m.Marshal()
			if err != nil {
				return err
			}
			if output == "" {
				output = args[0]
			}
			return writeOutput(output, data)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output record (default: overwrite input)")
	return cmd
}

func newGLTFCommand(ctx *commandContext) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "gltf <file>",
		Short: "Export motion as glTF binary animation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qm, err := ctx.readQualified(args[0])
			if err != nil {
				return err
			}
			db, err := ctx.ensureDB()
			if err != nil {
				return err
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			base := strings.TrimSuffix(args[0], filepath.Ext(args[0]))
			doc := gltfutils.NewDocument()
			if _, err := qm.ExportGLTF(doc, db.Names, filepath.Base(base), cfg.FPS); err != nil {
				return err
			}
			if output == "" {
				output = base + ".glb"
			}
			f, err := os.Create(output)
			if err != nil {
				return errors.Wrapf(err, "Failed to create %q", output)
			}
			defer f.Close()
			if err := gltfutils.ExportBinary(f, doc); err != nil {
				return errors.Wrapf(err, "Failed to write glb")
			}
			return f.Close()
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: input name with .glb)")
	return cmd
}
