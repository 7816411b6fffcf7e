package recognizer

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/disintegration/imaging"

	"toll_plaza/internal/domain"
)

func testImage(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func decode(t *testing.T, b []byte) image.Image {
	t.Helper()
	img, err := imaging.Decode(bytes.NewReader(b))
	if err != nil {
		t.Fatalf("decoding prepared image: %v", err)
	}
	return img
}

func TestPrepareNoop(t *testing.T) {
	src := testImage(t, 20, 10)
	got, err := ImagePrep{}.Prepare(src, nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	if !bytes.Equal(got, src) {
		t.Error("Prepare() without hint or enhancement should return the input unchanged")
	}
}

func TestPrepareCrop(t *testing.T) {
	tests := []struct {
		name  string
		hint  domain.RegionHint
		wantW int
		wantH int
	}{
		{"inside image", domain.RegionHint{X1: 10, Y1: 10, X2: 110, Y2: 90}, 100, 80},
		{"clamped to image", domain.RegionHint{X1: 150, Y1: 100, X2: 400, Y2: 400}, 50, 100},
		{"short crop is upscaled", domain.RegionHint{X1: 0, Y1: 0, X2: 64, Y2: 32}, 128, minCropHeight},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hint := tt.hint
			out, err := ImagePrep{}.Prepare(testImage(t, 200, 200), &hint)
			if err != nil {
				t.Fatalf("Prepare() error = %v", err)
			}
			b := decode(t, out).Bounds()
			if b.Dx() != tt.wantW || b.Dy() != tt.wantH {
				t.Errorf("cropped size = %dx%d, want %dx%d", b.Dx(), b.Dy(), tt.wantW, tt.wantH)
			}
		})
	}
}

func TestPrepareRejectsBadInput(t *testing.T) {
	if _, err := (ImagePrep{Enhance: true}).Prepare([]byte("not an image"), nil); !errors.Is(err, domain.ErrCollaboratorRejected) {
		t.Errorf("undecodable image: error = %v, want ErrCollaboratorRejected", err)
	}
	hint := &domain.RegionHint{X1: 500, Y1: 500, X2: 600, Y2: 600}
	if _, err := (ImagePrep{}).Prepare(testImage(t, 100, 100), hint); !errors.Is(err, domain.ErrCollaboratorRejected) {
		t.Errorf("region outside image: error = %v, want ErrCollaboratorRejected", err)
	}
}

func TestPrepareEnhanceIsGrayscale(t *testing.T) {
	out, err := ImagePrep{Enhance: true}.Prepare(testImage(t, 40, 40), nil)
	if err != nil {
		t.Fatalf("Prepare() error = %v", err)
	}
	img := decode(t, out)
	r, g, b, _ := img.At(30, 5).RGBA()
	if r != g || g != b {
		t.Errorf("enhanced pixel not gray: r=%d g=%d b=%d", r, g, b)
	}
}
