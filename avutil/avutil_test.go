//go:build !ios && !android && (amd64 || arm64)

package avutil

import (
	"errors"
	"fmt"
	"testing"

	"github.com/obinnaokechukwu/spherecmp/internal/bindings"
)

func TestNewErrorNonNegative(t *testing.T) {
	if err := NewError(0, "op"); err != nil {
		t.Errorf("NewError(0) = %v, want nil", err)
	}
	if err := NewError(5, "op"); err != nil {
		t.Errorf("NewError(5) = %v, want nil", err)
	}
}

func TestErrorClassification(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		again bool
		eof   bool
		code  int32
	}{
		{"eagain", NewError(AVERROR_EAGAIN, "av_buffersink_get_frame"), true, false, AVERROR_EAGAIN},
		{"eof", NewError(AVERROR_EOF, "av_buffersink_get_frame"), false, true, AVERROR_EOF},
		{"wrapped eof", fmt.Errorf("outer: %w", NewError(AVERROR_EOF, "x")), false, true, AVERROR_EOF},
		{"einval", NewError(AVERROR_EINVAL, "avfilter_graph_parse2"), false, false, AVERROR_EINVAL},
		{"plain", errors.New("boom"), false, false, 0},
		{"nil", nil, false, false, 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsAgain(tc.err); got != tc.again {
				t.Errorf("IsAgain = %v, want %v", got, tc.again)
			}
			if got := IsEOF(tc.err); got != tc.eof {
				t.Errorf("IsEOF = %v, want %v", got, tc.eof)
			}
			if got := Code(tc.err); got != tc.code {
				t.Errorf("Code = %d, want %d", got, tc.code)
			}
		})
	}
}

func TestErrorMessage(t *testing.T) {
	err := NewError(AVERROR_EINVAL, "avfilter_graph_config")
	var ffErr *Error
	if !errors.As(err, &ffErr) {
		t.Fatalf("expected *Error, got %T", err)
	}
	if ffErr.Op != "avfilter_graph_config" {
		t.Errorf("Op = %q", ffErr.Op)
	}
	if ffErr.Message == "" {
		t.Error("Message should not be empty")
	}
}

func TestRational(t *testing.T) {
	r := NewRational(1, 25)
	if !r.Valid() {
		t.Error("1/25 should be valid")
	}
	if r.String() != "1/25" {
		t.Errorf("String() = %q, want 1/25", r.String())
	}
	if r.Float64() != 0.04 {
		t.Errorf("Float64() = %v", r.Float64())
	}
	if (Rational{Num: 1, Den: 0}).Valid() {
		t.Error("zero denominator should be invalid")
	}
	if (Rational{Num: 1, Den: -2}).Valid() {
		t.Error("negative denominator should be invalid")
	}
}

func TestPixFmtNameRoundTrip(t *testing.T) {
	if !Loaded() {
		t.Skip("libavutil not available")
	}
	if got := PixFmtName(PixelFormatYUV420P); got != "yuv420p" {
		t.Errorf("PixFmtName(yuv420p) = %q", got)
	}
	if got := PixFmtFromName("rgb24"); got != PixelFormatRGB24 {
		t.Errorf("PixFmtFromName(rgb24) = %d", got)
	}
	if got := PixFmtName(PixelFormat(100000)); got != "" {
		t.Errorf("PixFmtName(unknown) = %q, want empty", got)
	}
}

func TestCheckFrameLayout(t *testing.T) {
	if !Loaded() {
		t.Skip("libavutil not available")
	}
	major := bindings.AVUtilMajor()
	_, known := offsetMetadata[major]

	err := CheckFrameLayout()
	if known && err != nil {
		t.Errorf("libavutil %d: unexpected error %v", major, err)
	}
	if !known && !errors.Is(err, ErrUnsupportedLayout) {
		t.Errorf("libavutil %d: error = %v, want ErrUnsupportedLayout", major, err)
	}
}

func TestDictPrefixWalk(t *testing.T) {
	if !Loaded() {
		t.Skip("libavutil not available")
	}
	var dict Dictionary
	defer DictFree(&dict)

	entries := [][2]string{
		{"lavfi.ssim360.all", "0.95"},
		{"other.key", "x"},
		{"lavfi.ssim360.Y", "0.97"},
	}
	for _, e := range entries {
		if err := DictSet(&dict, e[0], e[1], 0); err != nil {
			t.Fatalf("DictSet: %v", err)
		}
	}

	var got []string
	var entry DictionaryEntry
	for {
		entry = DictGet(dict, "lavfi.ssim360", entry, AV_DICT_IGNORE_SUFFIX)
		if entry == nil {
			break
		}
		got = append(got, DictEntryKey(entry)+"="+DictEntryValue(entry))
	}

	want := []string{"lavfi.ssim360.all=0.95", "lavfi.ssim360.Y=0.97"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("entry %d = %q, want %q", i, got[i], want[i])
		}
	}
}
