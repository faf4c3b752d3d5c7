package atomicfile_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/okian/loadmon/pkg/atomicfile"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWrite(t *testing.T) {
	Convey("Given an output directory", t, func() {
		dir := t.TempDir()
		path := filepath.Join(dir, "nested", "daily.csv")

		Convey("When the write succeeds", func() {
			So(atomicfile.WriteFile(path, []byte("a,b\n")), ShouldBeNil)

			Convey("Then the file holds the content and no temp remains", func() {
				raw, err := os.ReadFile(path)
				So(err, ShouldBeNil)
				So(string(raw), ShouldEqual, "a,b\n")
				entries, _ := os.ReadDir(filepath.Dir(path))
				So(len(entries), ShouldEqual, 1)
			})
		})

		Convey("When the writer fails midway", func() {
			So(atomicfile.WriteFile(path, []byte("old")), ShouldBeNil)
			boom := errors.New("boom")
			err := atomicfile.Write(path, func(w io.Writer) error {
				_, _ = io.WriteString(w, "partial")
				return boom
			})

			Convey("Then the previous file is untouched and the temp is gone", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
				raw, _ := os.ReadFile(path)
				So(string(raw), ShouldEqual, "old")
				entries, _ := os.ReadDir(filepath.Dir(path))
				So(len(entries), ShouldEqual, 1)
			})
		})
	})
}
