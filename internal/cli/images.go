package cli

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ewilliams-labs/nekolog/internal/core/domain"
	"github.com/ewilliams-labs/nekolog/internal/core/services"
	"github.com/ewilliams-labs/nekolog/internal/imaging"
)

func newComposeCommand(opts *options) *cobra.Command {
	var user, assistant, stamp, out string
	cmd := &cobra.Command{
		Use:   "compose <image>",
		Short: "Render caption panels onto a photo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readImage(args[0])
			if err != nil {
				return err
			}
			fonts, err := loadFonts(opts.cfg.Imaging)
			if err != nil {
				return err
			}
			c := imaging.NewCompositor(fonts)

			rec := domain.NewPhotoRecord(filepath.Base(args[0]), img, time.Now())
			if user != "" {
				rec = rec.WithUserCaption(c, user, opts.cfg.Imaging.DrawUserText)
			}
			if assistant != "" {
				rec = rec.WithAssistantCaption(c, assistant)
			}
			result := rec.Display()
			if stamp != "" {
				result = c.Stamp(result, stamp)
			}

			if out == "" {
				out = siblingPath(args[0], "composite")
			}
			if err := writePNGFile(out, result); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", out, rec.Stage)
			return nil
		},
	}
	cmd.Flags().StringVar(&user, "user", "", "User caption")
	cmd.Flags().StringVar(&assistant, "assistant", "", "Assistant caption")
	cmd.Flags().StringVar(&stamp, "stamp", "", "Text stamped along the bottom, e.g. the day's score")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output PNG (default: <image>-composite.png)")
	return cmd
}

func newFrameCommand(opts *options) *cobra.Command {
	var wallpaperOut, iconOut string
	cmd := &cobra.Command{
		Use:   "frame <image>",
		Short: "Crop a photo into a wallpaper around the face and render an icon",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			img, err := readImage(args[0])
			if err != nil {
				return err
			}
			cfg := opts.cfg
			framer := imaging.NewFramer(cfg.Imaging.ScreenWidth, cfg.Imaging.ScreenHeight, cfg.Imaging.IconSize)
			portrait := services.NewPortrait(framer, newDetector(cmd.Context(), cfg.Vision, opts.logger), nil, nil, opts.logger)

			f, err := portrait.Frame(cmd.Context(), img, time.Now())
			if err != nil {
				return err
			}
			if wallpaperOut == "" {
				wallpaperOut = siblingPath(args[0], "wallpaper")
			}
			if iconOut == "" {
				iconOut = siblingPath(args[0], "icon")
			}
			if err := writePNGFile(wallpaperOut, f.Wallpaper); err != nil {
				return err
			}
			if err := writePNGFile(iconOut, f.Icon); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "crop %v\n%s\n%s\n", f.Crop, wallpaperOut, iconOut)
			return nil
		},
	}
	cmd.Flags().StringVar(&wallpaperOut, "wallpaper", "", "Wallpaper PNG (default: <image>-wallpaper.png)")
	cmd.Flags().StringVar(&iconOut, "icon", "", "Icon PNG (default: <image>-icon.png)")
	return cmd
}

func readImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := imaging.Decode(f)
	return img, err
}

func writePNGFile(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := imaging.EncodePNG(f, img); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// siblingPath returns <dir>/<name>-<suffix>.png for src.
func siblingPath(src, suffix string) string {
	return strings.TrimSuffix(src, filepath.Ext(src)) + "-" + suffix + ".png"
}
