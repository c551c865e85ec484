package ui

// Messages sent from the export goroutine to the TUI program

type ExportStartedMsg struct {
	Total int
}

type AssetDoneMsg struct {
	Filename string
	Err      error
}

type ExportFinishedMsg struct {
	Err error
}
