package objects

import (
	"context"

	"github.com/hollowroad/pwdrive/internal/protocol"
	"github.com/hollowroad/pwdrive/internal/wire"
)

func init() {
	protocol.RegisterFactory("Download", newDownload)
}

// Download tracks one triggered file download.
type Download struct {
	channel

	url      string
	filename string
}

func newDownload(_ protocol.Object, guid string, init wire.Value, conn *protocol.Connection) protocol.Object {
	return &Download{
		channel:  newChannel(guid, "Download", conn),
		url:      init.Get("url").Str(),
		filename: init.Get("suggestedFilename").Str(),
	}
}

func (d *Download) OnEvent(string, wire.Value) {}

// URL returns the download's source URL.
func (d *Download) URL() string { return d.url }

// SuggestedFilename returns the engine's suggested filename.
func (d *Download) SuggestedFilename() string { return d.filename }

// SaveAs asks the engine to persist the downloaded file to path.
func (d *Download) SaveAs(ctx context.Context, path string) error {
	_, err := d.send(ctx, "saveAs", params(map[string]interface{}{"path": path}))
	return err
}
