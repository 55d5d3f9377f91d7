package objects

import "github.com/hollowroad/pwdrive/internal/protocol"

// Some engine builds emit a "*Dispatcher"-suffixed wire type for the
// same wrapper (e.g. "PageDispatcher" instead of "Page"). Register
// both names against the same constructors rather than special-casing
// the suffix at dispatch time.
func init() {
	aliases := map[string]protocol.Factory{
		"RootDispatcher":           newPlaywright,
		"PlaywrightDispatcher":     newPlaywright,
		"BrowserTypeDispatcher":    newBrowserType,
		"BrowserDispatcher":        newBrowser,
		"BrowserContextDispatcher": newBrowserContext,
		"PageDispatcher":           newPage,
		"FrameDispatcher":          newFrame,
		"RequestDispatcher":        newRequest,
		"ResponseDispatcher":       newResponse,
		"RouteDispatcher":          newRoute,
		"ElementHandleDispatcher":  newElementHandle,
		"WorkerDispatcher":         newWorker,
		"DownloadDispatcher":       newDownload,
		"DialogDispatcher":         newDialog,
		"SelectorsDispatcher":      newSelectors,
		"TracingDispatcher":        newTracing,
	}
	for typ, fn := range aliases {
		protocol.RegisterFactory(typ, fn)
	}
}
