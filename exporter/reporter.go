package exporter

// Reporter receives progress while an export runs. All calls come from the
// exporting goroutine.
type Reporter interface {
	Start(total int)
	AssetDone(filename string, err error)
	Finish(err error)
}

type nopReporter struct{}

func (nopReporter) Start(int)               {}
func (nopReporter) AssetDone(string, error) {}
func (nopReporter) Finish(error)            {}
