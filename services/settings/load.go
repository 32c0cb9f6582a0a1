package settings

import (
	"errors"
	"io/fs"
	"os"

	"ledtree-go/errcode"
)

// LoadFile parses the file at path. A missing file yields the defaults and
// errcode.NotFound.
func LoadFile(path string) (Settings, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Defaults(), &errcode.E{C: errcode.NotFound, Op: "settings.LoadFile", Msg: path}
		}
		return Defaults(), errcode.Wrap(errcode.Error, "settings.LoadFile", err)
	}
	defer f.Close()
	return Parse(f)
}
