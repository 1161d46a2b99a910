package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/matryer/is"
)

func TestAttachLine(t *testing.T) {
	is := is.New(t)
	tm := newTestMachine(t)
	path := filepath.Join(t.TempDir(), "line2")
	is.NoErr(os.WriteFile(path, nil, 0o644))

	f, err := attachLine(tm.mux, "2="+path)
	is.NoErr(err)
	defer f.Close()
	is.Equal(tm.mux.units[2].mode, ModeRaw)
	is.Equal(tm.mux.units[2].in, f)

	for _, arg := range []string{"2", "x=" + path, "0=" + path, "9=" + path, "3=" + filepath.Join(path, "missing")} {
		if _, err := attachLine(tm.mux, arg); err == nil {
			t.Errorf("attachLine(%q): want error", arg)
		}
	}
}
