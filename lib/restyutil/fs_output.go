package restyutil

import (
	"log/slog"
	"os"
	"path/filepath"
)

// FilesystemOutput dumps each instrumented http exchange into its own
// file under a scratch directory, wiped on construction.
type FilesystemOutput struct {
	directory string
}

func NewFilesystemOutput(dir string) FilesystemOutput {
	os.RemoveAll(dir)
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		panic(err)
	}
	return FilesystemOutput{directory: dir}
}

func (o FilesystemOutput) Write(id string, contents string) {
	path := filepath.Join(o.directory, id+".http")
	err := os.WriteFile(path, []byte(contents), 0600)
	if err != nil {
		slog.Warn("failed to write exchange dump", "path", path, "err", err)
	}
}
