package media

import (
	"bufio"
	"bytes"
	"io"
	"testing"
)

// fakeJPEG builds a minimal marker-delimited image with the given payload.
func fakeJPEG(payload []byte) []byte {
	var b bytes.Buffer
	b.Write([]byte{0xFF, 0xD8})
	b.Write(payload)
	b.Write([]byte{0xFF, 0xD9})
	return b.Bytes()
}

func TestReadJPEG(t *testing.T) {
	first := fakeJPEG([]byte{0x01, 0x02, 0x03})
	second := fakeJPEG([]byte{0x04, 0x05})

	stream := bufio.NewReader(bytes.NewReader(append(append([]byte{}, first...), second...)))

	got, err := readJPEG(stream)
	if err != nil {
		t.Fatalf("readJPEG failed: %v", err)
	}
	if !bytes.Equal(got, first) {
		t.Errorf("first image = %x, want %x", got, first)
	}

	got, err = readJPEG(stream)
	if err != nil {
		t.Fatalf("readJPEG failed on second image: %v", err)
	}
	if !bytes.Equal(got, second) {
		t.Errorf("second image = %x, want %x", got, second)
	}

	if _, err := readJPEG(stream); err != io.EOF {
		t.Errorf("readJPEG at end of stream = %v, want io.EOF", err)
	}
}

func TestReadJPEGSkipsLeadingGarbage(t *testing.T) {
	img := fakeJPEG([]byte{0xAA})
	stream := bufio.NewReader(bytes.NewReader(append([]byte{0x00, 0xFF, 0x00, 0x42}, img...)))

	got, err := readJPEG(stream)
	if err != nil {
		t.Fatalf("readJPEG failed: %v", err)
	}
	if !bytes.Equal(got, img) {
		t.Errorf("image = %x, want %x", got, img)
	}
}

func TestReadJPEGTruncatedImage(t *testing.T) {
	// SOI present but the stream ends before EOI.
	stream := bufio.NewReader(bytes.NewReader([]byte{0xFF, 0xD8, 0x01, 0x02}))
	if _, err := readJPEG(stream); err != io.ErrUnexpectedEOF {
		t.Errorf("readJPEG on truncated image = %v, want io.ErrUnexpectedEOF", err)
	}
}

func TestFrameArgs(t *testing.T) {
	t.Run("with start offset", func(t *testing.T) {
		args := frameArgs("video.mp4", 12.5, 5)
		assertArgPair(t, args, "-ss", "12.500")
		assertArgPair(t, args, "-i", "video.mp4")
		assertArgPair(t, args, "-vf", "fps=5,scale=640:-1")
		assertArgPair(t, args, "-f", "image2pipe")
		assertArgPair(t, args, "-c:v", "mjpeg")
		if args[len(args)-1] != "pipe:1" {
			t.Errorf("last argument = %q, want pipe:1", args[len(args)-1])
		}
	})

	t.Run("zero start omits seek", func(t *testing.T) {
		args := frameArgs("video.mp4", 0, 5)
		for _, a := range args {
			if a == "-ss" {
				t.Error("frameArgs with zero start should not seek")
			}
		}
	})
}

func TestExtractArgs(t *testing.T) {
	args := extractArgs("src.mp4", "out/clip.mp4", 10, 8)
	assertArgPair(t, args, "-ss", "10.000")
	assertArgPair(t, args, "-i", "src.mp4")
	assertArgPair(t, args, "-t", "8.000")
	assertArgPair(t, args, "-c", "copy")
	if args[len(args)-1] != "out/clip.mp4" {
		t.Errorf("last argument = %q, want destination path", args[len(args)-1])
	}
}

func assertArgPair(t *testing.T, args []string, flag, value string) {
	t.Helper()
	for i, a := range args {
		if a == flag {
			if i+1 >= len(args) {
				t.Errorf("argument %s has no value, want %q", flag, value)
			} else if args[i+1] != value {
				t.Errorf("argument %s = %q, want %q", flag, args[i+1], value)
			}
			return
		}
	}
	t.Errorf("argument %s not found in %v", flag, args)
}
