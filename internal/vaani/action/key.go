// Package action defines the closed set of action keys Vaani can dispatch,
// the uniform Result every handler returns, and the Registry that maps keys
// to handlers.
package action

import "sort"

// Key identifies a recognised command. The set of keys is closed: every
// valid key is declared below, and Unknown marks input that matched nothing.
type Key string

// Unknown is the sentinel produced when no phrase or rule matched.
const Unknown Key = "unknown"

// Power
const (
	Shutdown Key = "shutdown"
	Restart  Key = "restart"
	Sleep    Key = "sleep"
)

// Audio
const (
	VolumeUp   Key = "volume_up"
	VolumeDown Key = "volume_down"
	Mute       Key = "mute"
)

// System information
const (
	Time         Key = "time"
	Date         Key = "date"
	Battery      Key = "battery"
	SystemStatus Key = "system_status"
	CleanupTemp  Key = "cleanup_temp"
)

// Applications and windows
const (
	OpenApp     Key = "open_app"
	CloseApp    Key = "close_app"
	Minimize    Key = "minimize"
	Maximize    Key = "maximize"
	CloseWindow Key = "close_window"
	ShowDesktop Key = "show_desktop"
	SnapLeft    Key = "snap_left"
	SnapRight   Key = "snap_right"
)

// Messaging
const (
	WhatsAppMessage Key = "whatsapp_message"
	WhatsAppCall    Key = "whatsapp_call"
)

// Input
const (
	MoveCursor  Key = "move_cursor"
	Click       Key = "click"
	DoubleClick Key = "double_click"
	RightClick  Key = "right_click"
	ScrollUp    Key = "scroll_up"
	ScrollDown  Key = "scroll_down"
	TypeText    Key = "type_text"
	PressKey    Key = "press_key"
	Hotkey      Key = "hotkey"
)

// Files
const (
	OpenFolder    Key = "open_folder"
	OpenDownloads Key = "open_downloads"
	OpenDocuments Key = "open_documents"
	OpenDesktop   Key = "open_desktop"
	OpenPictures  Key = "open_pictures"
	OpenVideos    Key = "open_videos"
	OpenMusic     Key = "open_music"
	OpenHome      Key = "open_home"
	SearchFiles   Key = "search_files"
	CreateFolder  Key = "create_folder"
	DeleteFile    Key = "delete_file"
	CopyFile      Key = "copy_file"
	MoveFile      Key = "move_file"
	RenameFile    Key = "rename_file"
	ScanFolder    Key = "scan_folder"
)

// Media processing
const (
	OCRImage      Key = "ocr_image"
	OCRPDF        Key = "ocr_pdf"
	ExtractText   Key = "extract_text"
	ConvertImage  Key = "convert_image"
	ResizeImage   Key = "resize_image"
	CompressImage Key = "compress_image"
	MergePDFs     Key = "merge_pdfs"
	PDFToImages   Key = "pdf_to_images"
	ImagesToPDF   Key = "images_to_pdf"
	BatchPDF      Key = "batch_pdf"
)

// Desktop utilities
const (
	TakeScreenshot  Key = "take_screenshot"
	GetClipboard    Key = "get_clipboard"
	SetClipboard    Key = "set_clipboard"
	MediaPlay       Key = "media_play"
	MediaNext       Key = "media_next"
	MediaPrevious   Key = "media_previous"
	ChangeWallpaper Key = "change_wallpaper"
	EmptyRecycleBin Key = "empty_recycle_bin"
	ToggleTaskbar   Key = "toggle_taskbar"
	ZoomIn          Key = "zoom_in"
	ZoomOut         Key = "zoom_out"
	MakeDrawing     Key = "make_drawing"
	GetSelectedText Key = "get_selected_text"
)

// Web
const (
	GoogleSearch Key = "google_search"
	OpenBrowser  Key = "open_browser"
)

// Automation
const (
	RunMacro         Key = "run_macro"
	AutomationStatus Key = "automation_status"
)

var known = map[Key]struct{}{}

func init() {
	for _, k := range []Key{
		Shutdown, Restart, Sleep,
		VolumeUp, VolumeDown, Mute,
		Time, Date, Battery, SystemStatus, CleanupTemp,
		OpenApp, CloseApp, Minimize, Maximize, CloseWindow, ShowDesktop, SnapLeft, SnapRight,
		WhatsAppMessage, WhatsAppCall,
		MoveCursor, Click, DoubleClick, RightClick, ScrollUp, ScrollDown, TypeText, PressKey, Hotkey,
		OpenFolder, OpenDownloads, OpenDocuments, OpenDesktop, OpenPictures, OpenVideos, OpenMusic,
		OpenHome, SearchFiles, CreateFolder, DeleteFile, CopyFile, MoveFile, RenameFile, ScanFolder,
		OCRImage, OCRPDF, ExtractText, ConvertImage, ResizeImage, CompressImage, MergePDFs,
		PDFToImages, ImagesToPDF, BatchPDF,
		TakeScreenshot, GetClipboard, SetClipboard, MediaPlay, MediaNext, MediaPrevious,
		ChangeWallpaper, EmptyRecycleBin, ToggleTaskbar, ZoomIn, ZoomOut, MakeDrawing, GetSelectedText,
		GoogleSearch, OpenBrowser,
		RunMacro, AutomationStatus,
	} {
		known[k] = struct{}{}
	}
}

// Known reports whether k is a declared key other than Unknown.
func (k Key) Known() bool {
	_, ok := known[k]
	return ok
}

// String implements fmt.Stringer.
func (k Key) String() string { return string(k) }

// ParseKey returns the Key named by s, or Unknown and false.
func ParseKey(s string) (Key, bool) {
	k := Key(s)
	if k.Known() {
		return k, true
	}
	return Unknown, false
}

// Keys returns every declared key in lexical order.
func Keys() []Key {
	out := make([]Key, 0, len(known))
	for k := range known {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
