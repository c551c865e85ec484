package cmd

import (
	"errors"
	"fmt"

	"github.com/lepinkainen/markers-extractor/marker"
	"github.com/lepinkainen/markers-extractor/types"
	"github.com/lepinkainen/markers-extractor/ui"
)

// CheckCmd validates a marker file without exporting anything.
type CheckCmd struct {
	Markers string `arg:"" name:"markers" help:"Marker JSON file" type:"existingfile"`
	IDMode  string `name:"id-mode" help:"Marker ID source (projectTimecode, name, notes)"`
}

func (cmd *CheckCmd) Run(appCtx *types.AppContext) error {
	modeName := cmd.IDMode
	if modeName == "" {
		modeName = appCtx.Config().IDMode
	}
	mode, err := marker.ParseIDMode(modeName)
	if err != nil {
		return err
	}

	doc, err := marker.LoadFile(cmd.Markers)
	if err != nil {
		return err
	}

	fmt.Println(ui.InfoStyle.Render(fmt.Sprintf("%s: %d markers at %s", doc.ProjectName, len(doc.Markers), doc.FrameRate)))

	if err := marker.Validate(doc.Markers, mode); err != nil {
		var dup *marker.DuplicateIDsError
		if errors.As(err, &dup) {
			for _, id := range dup.IDs {
				fmt.Println(ui.ErrorStyle.Render("❌ Duplicate ID: " + id))
			}
		}
		return err
	}

	fmt.Println(ui.SuccessStyle.Render(fmt.Sprintf("✅ All %d marker IDs are unique (%s)", len(doc.Markers), mode)))
	return nil
}
