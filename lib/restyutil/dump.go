// Package restyutil dumps the raw http exchanges of a resty client to disk,
// which is the quickest way to see what a page looked like when a selector
// stopped matching.
package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync/atomic"

	"github.com/go-resty/resty/v2"
)

type DumpDir struct {
	directory string
	idcounter atomic.Uint64
}

// NewDumpDir empties `dir` (creating it when needed) so that it only holds
// the exchanges of the current run.
func NewDumpDir(dir string) (*DumpDir, error) {
	err := os.RemoveAll(dir)
	if err != nil {
		return nil, err
	}
	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return nil, err
	}
	return &DumpDir{directory: dir}, nil
}

func (d *DumpDir) Dir() string {
	return d.directory
}

func (d *DumpDir) Write(id string, contents string) {
	err := os.WriteFile(filepath.Join(d.directory, id), []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write message info file", "id", id, "err", err)
	}
}

// DumpExchanges writes one numbered file per response received by `client`.
func DumpExchanges(client *resty.Client, dump *DumpDir) {
	client.OnAfterResponse(func(_ *resty.Client, res *resty.Response) error {
		messageId := strconv.FormatUint(dump.idcounter.Add(1), 10)
		dump.Write(messageId+".txt", formatHttpMessage(res))
		slog.DebugContext(
			res.Request.Context(), "dumped http exchange",
			"url", res.Request.URL,
			"message_id", messageId,
		)
		return nil
	})
}
