package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/lepinkainen/markers-extractor/types"
	"github.com/lepinkainen/markers-extractor/ui"
	"github.com/lepinkainen/markers-extractor/video"
)

// SimilarCmd finds exported thumbnails that look alike, which usually means
// two markers sit on the same shot.
type SimilarCmd struct {
	Directory string `arg:"" name:"directory" help:"Export folder to scan" type:"existingdir"`
	Threshold int    `help:"Hamming distance threshold for similarity (0-64)" default:"10"`
}

func (cmd *SimilarCmd) Run(appCtx *types.AppContext) error {
	if cmd.Threshold < 0 || cmd.Threshold > 64 {
		return fmt.Errorf("threshold must be 0-64, got %d", cmd.Threshold)
	}

	fmt.Printf("%s\n", ui.InfoStyle.Render(fmt.Sprintf("Comparing images in %s (threshold: %d)...", cmd.Directory, cmd.Threshold)))

	pairs, err := video.FindSimilarImages(cmd.Directory, cmd.Threshold)
	if err != nil {
		return fmt.Errorf("failed to compare images: %w", err)
	}

	if len(pairs) == 0 {
		fmt.Printf("%s\n", ui.SuccessStyle.Render("✅ No similar images found within threshold"))
		return nil
	}

	for _, p := range pairs {
		fmt.Printf("🎯 Similar (distance %d): %s ↔ %s\n", p.Distance, filepath.Base(p.A), filepath.Base(p.B))
	}
	return nil
}
