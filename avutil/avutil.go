//go:build !ios && !android && (amd64 || arm64)

// Package avutil provides bindings to FFmpeg's libavutil: frames, frame
// metadata dictionaries, pixel format names, logging level and error codes.
package avutil

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/obinnaokechukwu/spherecmp/internal/bindings"
)

// Frame is an opaque FFmpeg AVFrame pointer.
type Frame = unsafe.Pointer

// Dictionary is an opaque FFmpeg AVDictionary pointer.
type Dictionary = unsafe.Pointer

// DictionaryEntry is an opaque FFmpeg AVDictionaryEntry pointer.
type DictionaryEntry = unsafe.Pointer

// Dictionary lookup flags.
const (
	AV_DICT_MATCH_CASE    = 1
	AV_DICT_IGNORE_SUFFIX = 2
)

var (
	avFrameAlloc func() unsafe.Pointer
	avFrameFree  func(frame *unsafe.Pointer)
	avFrameUnref func(frame unsafe.Pointer)

	avMalloc func(size uintptr) unsafe.Pointer
	avFree   func(ptr unsafe.Pointer)

	avDictGet  func(m unsafe.Pointer, key string, prev unsafe.Pointer, flags int32) unsafe.Pointer
	avDictSet  func(pm *unsafe.Pointer, key, value string, flags int32) int32
	avDictFree func(pm *unsafe.Pointer)

	avGetPixFmtName func(pixFmt int32) unsafe.Pointer
	avGetPixFmt     func(name string) int32

	avLogSetLevel func(level int32)
	avStrerror    func(errnum int32, errbuf unsafe.Pointer, errbufSize uintptr) int32

	bindingsRegistered bool
)

func init() {
	registerBindings()
}

func registerBindings() {
	if bindingsRegistered {
		return
	}
	// A failed load surfaces later as ErrNotLoaded from the callers.
	if err := bindings.Load(); err != nil {
		return
	}
	lib := bindings.LibAVUtil()
	if lib == 0 {
		return
	}

	purego.RegisterLibFunc(&avFrameAlloc, lib, "av_frame_alloc")
	purego.RegisterLibFunc(&avFrameFree, lib, "av_frame_free")
	purego.RegisterLibFunc(&avFrameUnref, lib, "av_frame_unref")

	purego.RegisterLibFunc(&avMalloc, lib, "av_malloc")
	purego.RegisterLibFunc(&avFree, lib, "av_free")

	purego.RegisterLibFunc(&avDictGet, lib, "av_dict_get")
	purego.RegisterLibFunc(&avDictSet, lib, "av_dict_set")
	purego.RegisterLibFunc(&avDictFree, lib, "av_dict_free")

	purego.RegisterLibFunc(&avGetPixFmtName, lib, "av_get_pix_fmt_name")
	purego.RegisterLibFunc(&avGetPixFmt, lib, "av_get_pix_fmt")

	purego.RegisterLibFunc(&avLogSetLevel, lib, "av_log_set_level")
	purego.RegisterLibFunc(&avStrerror, lib, "av_strerror")

	bindingsRegistered = true
}

// Loaded reports whether the libavutil symbols are bound.
func Loaded() bool {
	return bindingsRegistered
}

// FrameAlloc allocates an AVFrame. It returns nil on allocation failure or
// when the library is not loaded.
func FrameAlloc() Frame {
	if avFrameAlloc == nil {
		return nil
	}
	return avFrameAlloc()
}

// FrameFree frees an AVFrame and sets *frame to nil. Safe with nil.
func FrameFree(frame *Frame) {
	if frame == nil || *frame == nil || avFrameFree == nil {
		return
	}
	avFrameFree(frame)
	*frame = nil
}

// FrameUnref drops all buffer references held by frame and resets its fields.
func FrameUnref(frame Frame) {
	if frame == nil || avFrameUnref == nil {
		return
	}
	avFrameUnref(frame)
}

// AVFrame field offsets shared by libavutil 58 and 59 (LP64).
const (
	offsetWidth  = 104 // int width
	offsetHeight = 108 // int height
	offsetFormat = 116 // int format
)

// offsetMetadata maps the libavutil major version to the offset of
// AVDictionary *metadata. Fields dropped in 59 shift it down.
var offsetMetadata = map[int]uintptr{
	58: 368, // FFmpeg 6.x
	59: 336, // FFmpeg 7.x
}

// GetFrameWidth returns the width of a video frame.
func GetFrameWidth(frame Frame) int32 {
	if frame == nil {
		return 0
	}
	return *(*int32)(unsafe.Add(frame, offsetWidth))
}

// GetFrameHeight returns the height of a video frame.
func GetFrameHeight(frame Frame) int32 {
	if frame == nil {
		return 0
	}
	return *(*int32)(unsafe.Add(frame, offsetHeight))
}

// GetFrameFormat returns the pixel format of a video frame, -1 if unset.
func GetFrameFormat(frame Frame) int32 {
	if frame == nil {
		return -1
	}
	return *(*int32)(unsafe.Add(frame, offsetFormat))
}

// GetFrameMetadata returns the frame's metadata dictionary, which may be nil.
func GetFrameMetadata(frame Frame) (Dictionary, error) {
	if frame == nil {
		return nil, nil
	}
	off, ok := offsetMetadata[bindings.AVUtilMajor()]
	if !ok {
		return nil, CheckFrameLayout()
	}
	return *(*unsafe.Pointer)(unsafe.Add(frame, off)), nil
}

// ErrUnsupportedLayout is wrapped by CheckFrameLayout when the AVFrame
// field offsets of the loaded libavutil are not known.
var ErrUnsupportedLayout = errors.New("avutil: AVFrame layout unknown")

// CheckFrameLayout reports whether frame metadata can be read with the
// loaded libavutil.
func CheckFrameLayout() error {
	major := bindings.AVUtilMajor()
	if _, ok := offsetMetadata[major]; !ok {
		return fmt.Errorf("%w for libavutil %d (supported: 58, 59)", ErrUnsupportedLayout, major)
	}
	return nil
}

// DictGet returns the entry matching key after prev, or nil. With
// AV_DICT_IGNORE_SUFFIX, key acts as a prefix, and passing the previous
// result as prev walks the matches in insertion order.
func DictGet(dict Dictionary, key string, prev DictionaryEntry, flags int32) DictionaryEntry {
	if dict == nil || avDictGet == nil {
		return nil
	}
	return avDictGet(dict, key, prev, flags)
}

// DictSet adds or replaces an entry, allocating the dictionary if *dict is nil.
func DictSet(dict *Dictionary, key, value string, flags int32) error {
	if avDictSet == nil {
		return bindings.ErrNotLoaded
	}
	if ret := avDictSet(dict, key, value, flags); ret < 0 {
		return NewError(ret, "av_dict_set")
	}
	return nil
}

// DictFree frees a dictionary and sets *dict to nil.
func DictFree(dict *Dictionary) {
	if dict == nil || *dict == nil || avDictFree == nil {
		return
	}
	avDictFree(dict)
	*dict = nil
}

// AVDictionaryEntry layout: char *key; char *value.
const (
	offsetEntryKey   = 0
	offsetEntryValue = 8
)

// DictEntryKey returns the key of a dictionary entry.
func DictEntryKey(entry DictionaryEntry) string {
	if entry == nil {
		return ""
	}
	return GoString(*(*unsafe.Pointer)(unsafe.Add(entry, offsetEntryKey)))
}

// DictEntryValue returns the value of a dictionary entry.
func DictEntryValue(entry DictionaryEntry) string {
	if entry == nil {
		return ""
	}
	return GoString(*(*unsafe.Pointer)(unsafe.Add(entry, offsetEntryValue)))
}

// PixFmtName returns FFmpeg's canonical name for a pixel format, or "" when
// the format is unknown.
func PixFmtName(pixFmt PixelFormat) string {
	if avGetPixFmtName == nil {
		return ""
	}
	return GoString(avGetPixFmtName(int32(pixFmt)))
}

// PixFmtFromName resolves a pixel format name, returning PixelFormatNone
// when it is unknown.
func PixFmtFromName(name string) PixelFormat {
	if avGetPixFmt == nil {
		return PixelFormatNone
	}
	return PixelFormat(avGetPixFmt(name))
}

// Log levels accepted by SetLogLevel (AV_LOG_*).
const (
	LogQuiet   int32 = -8
	LogPanic   int32 = 0
	LogFatal   int32 = 8
	LogError   int32 = 16
	LogWarning int32 = 24
	LogInfo    int32 = 32
	LogVerbose int32 = 40
	LogDebug   int32 = 48
	LogTrace   int32 = 56
)

// SetLogLevel sets the global libav* log level.
func SetLogLevel(level int32) error {
	if avLogSetLevel == nil {
		return bindings.ErrNotLoaded
	}
	avLogSetLevel(level)
	return nil
}

// Malloc allocates memory with FFmpeg's allocator.
func Malloc(size uintptr) unsafe.Pointer {
	if avMalloc == nil {
		return nil
	}
	return avMalloc(size)
}

// Free releases memory obtained from Malloc.
func Free(ptr unsafe.Pointer) {
	if ptr == nil || avFree == nil {
		return
	}
	avFree(ptr)
}

// ErrorString returns FFmpeg's message for an error code.
func ErrorString(errnum int32) string {
	if avStrerror == nil {
		return fallbackErrorString(errnum)
	}
	buf := make([]byte, 256)
	avStrerror(errnum, unsafe.Pointer(&buf[0]), uintptr(len(buf)))
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

// GoString copies a NUL-terminated C string.
func GoString(ptr unsafe.Pointer) string {
	if ptr == nil {
		return ""
	}
	n := 0
	for *(*byte)(unsafe.Add(ptr, n)) != 0 {
		n++
	}
	return string(unsafe.Slice((*byte)(ptr), n))
}
