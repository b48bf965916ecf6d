package api

import (
	"net/http"
	"os"
	"path"
	"strings"
)

// capturedFS serves regular files only. Directories are never listed and
// dotfiles, such as the writer's in-flight temp files, stay hidden.
type capturedFS struct {
	fs http.FileSystem
}

func (c capturedFS) Open(name string) (http.File, error) {
	for _, part := range strings.Split(path.Clean("/"+name), "/") {
		if strings.HasPrefix(part, ".") {
			return nil, os.ErrNotExist
		}
	}
	f, err := c.fs.Open(name)
	if err != nil {
		return nil, err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if fi.IsDir() {
		f.Close()
		return nil, os.ErrNotExist
	}
	return f, nil
}
