package cmd

import (
	"fmt"

	"github.com/lepinkainen/markers-extractor/types"
	"github.com/lepinkainen/markers-extractor/ui"
	"github.com/lepinkainen/markers-extractor/utils"
	"github.com/lepinkainen/markers-extractor/video"
)

// ProbeCmd prints what an export would learn about a media file.
type ProbeCmd struct {
	Media string `arg:"" name:"media" help:"Media file to inspect" type:"existingfile"`
}

func (cmd *ProbeCmd) Run(appCtx *types.AppContext) error {
	if err := utils.RequireTools("ffprobe"); err != nil {
		return err
	}
	if !video.IsMediaFile(cmd.Media) {
		fmt.Printf("⚠️  %s does not have a known media extension\n", cmd.Media)
	}

	info, err := video.Probe(appCtx.Context(), cmd.Media)
	if err != nil {
		return err
	}

	fmt.Println(ui.HeaderStyle.Render(cmd.Media))
	fmt.Printf("Duration:   %s\n", info.Duration)
	if !info.HasVideo {
		fmt.Println(ui.WarningStyle.Render("No video stream: exports use a placeholder image"))
		return nil
	}
	fmt.Printf("Dimensions: %dx%d\n", info.Width, info.Height)
	fmt.Printf("Frame rate: %.3f\n", info.FrameRate)
	fmt.Printf("Codec:      %s\n", info.Codec)
	return nil
}
