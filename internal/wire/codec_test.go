package wire

import (
	"bytes"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestDoubleRoundTrip(t *testing.T) {
	Convey("Given a double value", t, func() {
		buf := make([]byte, SizeDouble)

		Convey("pack then unpack returns the same millimeter-precision value", func() {
			PutDouble(buf, 123.456)
			got, err := Double(buf)
			So(err, ShouldBeNil)
			So(got, ShouldAlmostEqual, 123.456, 0.001)
		})

		Convey("a negative value round-trips", func() {
			PutDouble(buf, -30.0)
			got, err := Double(buf)
			So(err, ShouldBeNil)
			So(got, ShouldEqual, -30.0)
		})

		Convey("serial size is 4 bytes, not 8", func() {
			So(SizeDouble, ShouldEqual, 4)
		})
	})
}

func TestShortBufferFails(t *testing.T) {
	Convey("Given a buffer shorter than the required size", t, func() {
		buf := make([]byte, 2)

		Convey("U32 fails with ErrShort", func() {
			_, err := U32(buf)
			So(err, ShouldNotBeNil)
			_, ok := err.(*ErrShort)
			So(ok, ShouldBeTrue)
		})
	})
}

func TestFixedStringRoundTrip(t *testing.T) {
	Convey("Given a name shorter than the fixed width", t, func() {
		buf := make([]byte, MaxNameLen)
		PutFixedString(buf, "Serenity")

		Convey("it round-trips and is NUL-padded", func() {
			So(FixedString(buf), ShouldEqual, "Serenity")
			So(len(buf), ShouldEqual, MaxNameLen)
			So(buf[len(buf)-1], ShouldEqual, byte(0))
		})
	})

	Convey("Given a name longer than the fixed width", t, func() {
		buf := make([]byte, 4)
		PutFixedString(buf, "abcdefgh")

		Convey("it is truncated to the buffer width", func() {
			So(FixedString(buf), ShouldEqual, "abcd")
		})
	})
}

func TestFrameRoundTrip(t *testing.T) {
	Convey("Given a length-prefixed frame", t, func() {
		var buf bytes.Buffer
		payload := []byte{1, 2, 3, 4, 5}
		So(WriteFrame(&buf, payload), ShouldBeNil)

		Convey("ReadFrame recovers the exact payload", func() {
			got, err := ReadFrame(&buf)
			So(err, ShouldBeNil)
			So(got, ShouldResemble, payload)
		})
	})

	Convey("Given an implausible frame length header", t, func() {
		var buf bytes.Buffer
		hdr := []byte{0xFF, 0xFF, 0xFF, 0xFF}
		buf.Write(hdr)

		Convey("ReadFrame rejects it without attempting a partial decode", func() {
			_, err := ReadFrame(&buf)
			So(err, ShouldNotBeNil)
		})
	})
}
