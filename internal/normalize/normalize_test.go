package normalize

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"testing"

	"golang.org/x/image/bmp"

	"github.com/campuscerts/cert-tracker/constants"
)

func testRaster(t *testing.T, w, h int, encode func(*bytes.Buffer, image.Image) error) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := encode(&buf, img); err != nil {
		t.Fatalf("encode test image: %v", err)
	}
	return buf.Bytes()
}

func pngBytes(t *testing.T, w, h int) []byte {
	return testRaster(t, w, h, func(b *bytes.Buffer, m image.Image) error { return png.Encode(b, m) })
}

func decodeDims(t *testing.T, img CanonicalImage) (int, int) {
	t.Helper()
	decoded, err := png.Decode(bytes.NewReader(img.PNG))
	if err != nil {
		t.Fatalf("output is not valid png: %v", err)
	}
	return decoded.Bounds().Dx(), decoded.Bounds().Dy()
}

func TestNormalizePNGRoundTrip(t *testing.T) {
	n := New(Config{}, nil)
	img, err := n.Normalize(context.Background(), pngBytes(t, 640, 480), "png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w, h := decodeDims(t, img); w != 640 || h != 480 {
		t.Errorf("dims = %dx%d, want 640x480", w, h)
	}
	if img.SourceFormat != constants.IMAGE {
		t.Errorf("source format = %q", img.SourceFormat)
	}
}

func TestNormalizeJPEGAndBMPBecomePNG(t *testing.T) {
	n := New(Config{}, nil)

	inputs := map[string][]byte{
		"jpg": testRaster(t, 320, 200, func(b *bytes.Buffer, m image.Image) error {
			return jpeg.Encode(b, m, nil)
		}),
		"bmp": testRaster(t, 320, 200, func(b *bytes.Buffer, m image.Image) error {
			return bmp.Encode(b, m)
		}),
	}
	for ext, raw := range inputs {
		img, err := n.Normalize(context.Background(), raw, ext)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", ext, err)
		}
		if w, h := decodeDims(t, img); w != 320 || h != 200 {
			t.Errorf("%s: dims = %dx%d, want 320x200", ext, w, h)
		}
	}
}

func TestNormalizeDownscalesOversizedImages(t *testing.T) {
	n := New(Config{MaxDimension: 1024}, nil)
	img, err := n.Normalize(context.Background(), pngBytes(t, 3000, 1500), "png")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.Width != 1024 || img.Height != 512 {
		t.Errorf("dims = %dx%d, want 1024x512", img.Width, img.Height)
	}
}

func TestNormalizeRejectsUnknownExtension(t *testing.T) {
	n := New(Config{}, nil)
	_, err := n.Normalize(context.Background(), pngBytes(t, 10, 10), "gif")
	if !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("error = %v, want ErrUnsupportedFormat", err)
	}
}

func TestNormalizeRejectsEmptyAndCorruptInput(t *testing.T) {
	n := New(Config{}, nil)

	if _, err := n.Normalize(context.Background(), nil, "png"); !errors.Is(err, ErrCorruptInput) {
		t.Fatalf("empty: error = %v, want ErrCorruptInput", err)
	}
	if _, err := n.Normalize(context.Background(), []byte("definitely not a png"), "png"); !errors.Is(err, ErrCorruptInput) {
		t.Fatalf("garbage: error = %v, want ErrCorruptInput", err)
	}
}

// fakeRunner stands in for pdftoppm.
type fakeRunner struct {
	lookErr error
	runErr  error
	stderr  string
	gotArgs []string
	page    []byte // written to <prefix>-1.png on success
}

func (f *fakeRunner) LookPath(string) (string, error) {
	if f.lookErr != nil {
		return "", f.lookErr
	}
	return "/usr/bin/pdftoppm", nil
}

func (f *fakeRunner) Run(_ context.Context, _ string, args ...string) ([]byte, []byte, error) {
	f.gotArgs = args
	if f.runErr != nil {
		return nil, []byte(f.stderr), f.runErr
	}
	prefix := args[len(args)-1]
	if err := os.WriteFile(prefix+"-1.png", f.page, 0o600); err != nil {
		return nil, nil, err
	}
	return nil, nil, nil
}

func TestNormalizePDFFirstPageOnly(t *testing.T) {
	fr := &fakeRunner{page: pngBytes(t, 800, 600)}
	n := New(Config{DPI: 150}, nil)
	n.runner = fr

	img, err := n.Normalize(context.Background(), []byte("%PDF-1.7 stub"), "pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if img.SourceFormat != constants.PDF {
		t.Errorf("source format = %q, want PDF", img.SourceFormat)
	}
	if w, h := decodeDims(t, img); w != 800 || h != 600 {
		t.Errorf("dims = %dx%d", w, h)
	}

	// only page one may be requested
	joined := ""
	for _, a := range fr.gotArgs {
		joined += a + " "
	}
	for _, want := range []string{"-f 1 ", "-l 1 ", "-r 150 ", "-png "} {
		if !bytes.Contains([]byte(joined), []byte(want)) {
			t.Errorf("pdftoppm args missing %q: %v", want, fr.gotArgs)
		}
	}
}

func TestNormalizePDFConverterMissing(t *testing.T) {
	n := New(Config{}, nil)
	n.runner = &fakeRunner{lookErr: errors.New("executable file not found in $PATH")}

	_, err := n.Normalize(context.Background(), []byte("%PDF-1.7"), "pdf")
	if !errors.Is(err, ErrConverterUnavailable) {
		t.Fatalf("error = %v, want ErrConverterUnavailable", err)
	}
}

func TestNormalizePDFFailureClassification(t *testing.T) {
	tests := []struct {
		name   string
		stderr string
		want   error
	}{
		{"encrypted", "Command Line Error: Incorrect password", ErrPasswordProtected},
		{"encrypted variant", "Error: file is encrypted", ErrPasswordProtected},
		{"not a pdf", "Syntax Error: May not be a PDF file", ErrCorruptInput},
		{"broken xref", "Syntax Error: Couldn't read xref table", ErrCorruptInput},
		{"unexplained", "segfault or something", ErrCorruptInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n := New(Config{}, nil)
			n.runner = &fakeRunner{runErr: errors.New("exit status 1"), stderr: tt.stderr}

			_, err := n.Normalize(context.Background(), []byte("%PDF-1.7"), "pdf")
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestFitWithin(t *testing.T) {
	tests := []struct {
		w, h, max, wantW, wantH int
	}{
		{4000, 2000, 2048, 2048, 1024},
		{2000, 4000, 2048, 1024, 2048},
		{5000, 1, 2048, 2048, 1},
	}
	for _, tt := range tests {
		w, h := fitWithin(tt.w, tt.h, tt.max)
		if w != tt.wantW || h != tt.wantH {
			t.Errorf("fitWithin(%d, %d, %d) = (%d, %d), want (%d, %d)",
				tt.w, tt.h, tt.max, w, h, tt.wantW, tt.wantH)
		}
	}
}
