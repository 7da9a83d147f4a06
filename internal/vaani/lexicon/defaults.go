package lexicon

import (
	"github.com/bdobrica/Vaani/internal/vaani/action"
	"github.com/bdobrica/Vaani/internal/vaani/lang"
)

type phraseSet struct {
	key     action.Key
	phrases []string
}

// builtin is the stock bilingual table. Order matters: a phrase listed under
// several keys resolves to the last key that lists it.
var builtin = []phraseSet{
	// Power
	{action.Shutdown, []string{"shutdown", "band karo", "band", "pc band", "computer band", "system band",
		"शटडाउन", "बंद करो", "कंप्यूटर बंद करो", "सिस्टम बंद करो", "पीसी बंद करो"}},
	{action.Restart, []string{"restart", "dobara shuru", "fir se chalu", "reboot",
		"रीस्टार्ट", "दोबारा शुरू", "दोबारा चालू", "फिर से चालू", "रिबूट"}},
	{action.Sleep, []string{"sleep", "sone do", "suspend", "स्लीप", "सोने दो"}},

	// Volume
	{action.VolumeUp, []string{"volume up", "aawaz badhao", "awaz badhao", "tez karo", "sound badhao", "volume badao",
		"आवाज़ बढ़ाओ", "आवाज बढ़ाओ", "वॉल्यूम बढ़ाओ", "तेज़ करो", "तेज करो", "साउंड बढ़ाओ",
		"increase volume", "increase sound", "increase audio", "raise volume", "raise sound", "raise audio",
		"louder", "sound up", "audio up", "turn up volume", "turn up sound"}},
	{action.VolumeDown, []string{"volume down", "aawaz kam karo", "awaz kam karo", "dheere karo", "sound kam", "volume ghatao",
		"आवाज़ कम करो", "आवाज कम करो", "वॉल्यूम कम करो", "धीरे करो", "साउंड कम करो", "साउंड घटाओ",
		"decrease volume", "decrease sound", "decrease audio", "lower volume", "lower sound", "lower audio",
		"reduce volume", "reduce sound", "quieter", "sound down", "audio down", "turn down volume", "turn down sound"}},
	{action.Mute, []string{"mute", "silent", "khamosh", "unmute",
		"म्यूट", "खामोश", "चुप रहो", "साइलेंट", "आवाज़ बंद करो", "आवाज बंद करो",
		"silence", "no sound", "toggle mute", "mute audio", "mute sound", "mute volume"}},

	// System
	{action.Time, []string{"time", "samay", "samay kya hai", "time kya hai", "baje kya hue", "kitne baje hai",
		"समय", "समय क्या है", "क्या समय हुआ है", "कितने बजे हैं", "कितने बजे है"}},
	{action.Date, []string{"date", "tareekh", "din", "aaj ka din", "date kya hai",
		"तारीख", "क्या तारीख है", "आज कौन सा दिन है", "दिन क्या है"}},
	{action.Battery, []string{"battery", "charge", "power", "kitni charge hai",
		"बैटरी", "कितनी चार्ज है", "बैटरी प्रतिशत", "बैटरी कितनी है"}},
	{action.SystemStatus, []string{"system status", "pc status", "computer status", "system check",
		"सिस्टम स्टेटस", "कंप्यूटर स्टेटस", "सिस्टम चेक", "पीसी स्टेटस"}},
	{action.CleanupTemp, []string{"cleanup temp", "clean temp files", "temp saaf karo", "टेम्प साफ करो"}},

	// Window
	{action.Minimize, []string{"minimize", "chhota karo", "niche karo", "मिनिमाइज", "छोटा करो", "नीचे करो"}},
	{action.Maximize, []string{"maximize", "bada karo", "pura screen", "मैक्सिमाइज", "बड़ा करो", "पूरी स्क्रीन"}},
	{action.CloseWindow, []string{"close window", "window band", "band karo", "विंडो बंद करो", "खिड़की बंद करो"}},

	// Apps
	{action.OpenApp, []string{"open", "kholo", "start karo", "chalu karo", "run karo",
		"खोलें", "खोलो", "चालू करो", "स्टार्ट करो", "चलाओ"}},
	{action.CloseApp, []string{"close", "band karo", "exit", "quit", "band",
		"बंद करो", "एग्जिट", "क्विट", "निकलो"}},

	// Messaging
	{action.WhatsAppMessage, []string{"whatsapp", "message bhejo", "msg bhejo", "send message", "sandesh bhejo",
		"व्हाट्सएप", "मैसेज भेजो", "संदेश भेजो", "व्हाट्सएप मैसेज"}},
	{action.WhatsAppCall, []string{"call", "phone karo", "baat karo", "whatsapp call",
		"कॉल करो", "फ़ोन करो", "फोन करो", "बात करो", "व्हाट्सएप कॉल"}},

	// Input
	{action.MoveCursor, []string{"move cursor", "cursor move", "mouse move", "pointer move", "कर्सर मूव", "माउस मूव", "कर्सर घुमाओ"}},
	{action.Click, []string{"click", "press", "select", "choose", "क्लिक", "दबाओ", "चुनो"}},
	{action.DoubleClick, []string{"double click", "do bar click", "double press", "डबल क्लिक", "दो बार क्लिक", "दो बार दबाएं", "दो बार दबाओ"}},
	{action.RightClick, []string{"right click", "context menu", "options", "राइट क्लिक", "ऑप्शंस दिखाओ"}},
	{action.ScrollUp, []string{"scroll up", "upar scroll", "up scroll", "ऊपर स्क्रॉल", "ऊपर जाओ"}},
	{action.ScrollDown, []string{"scroll down", "neeche scroll", "down scroll", "नीचे स्क्रॉल", "नीचे जाओ"}},
	{action.TypeText, []string{"type", "likho", "enter", "input", "टाइप करो", "लिखो", "टाइप"}},
	{action.PressKey, []string{"press", "daba", "click key", "दबाओ"}},
	{action.Hotkey, []string{"hotkey", "shortcut", "combination", "saath dabao", "शॉर्टकट", "हॉटकी", "साथ दबाओ"}},

	// Desktop
	{action.ShowDesktop, []string{"show desktop", "desktop dikhavo", "sab band karo", "डेस्कटॉप दिखाओ", "सब बंद करो", "सब कुछ बंद करो"}},
	{action.SnapLeft, []string{"snap left", "left side", "bayan taraf", "स्नैप लेफ्ट", "बाईं तरफ", "बायें तरफ", "बाएं तरफ"}},
	{action.SnapRight, []string{"snap right", "right side", "dayan taraf", "स्नैप राइट", "दायीं तरफ", "दायें तरफ", "दाएं तरफ"}},

	// Files
	{action.OpenFolder, []string{"open folder", "folder kholo", "directory kholo", "explore", "folder open karo",
		"फोल्डर खोलो", "फ़ोल्डर खोलो", "डायरेक्टरी खोलो", "फोल्डर ओपन करो"}},
	{action.OpenDownloads, []string{"open downloads", "open download", "downloads kholo", "download folder", "downloads", "download",
		"डाउनलोड ओपन करो", "डाउनलोड्स खोलो", "डाउनलोड"}},
	{action.OpenDocuments, []string{"open documents", "open document", "documents kholo", "docs kholo", "documents", "document", "docs",
		"डॉक्युमेंट्स खोलो", "डॉक्यूमेंट ओपन करो"}},
	{action.OpenDesktop, []string{"open desktop", "desktop kholo", "desktop", "डेस्कटॉप खोलो", "डेस्कटॉप"}},
	{action.OpenPictures, []string{"open pictures", "open picture", "pictures kholo", "photos kholo", "pictures", "picture", "photos", "photo",
		"पिक्चर्स खोलो", "फोटो खोलो"}},
	{action.OpenVideos, []string{"open videos", "open video", "videos kholo", "movies kholo", "videos", "video", "movies", "movie",
		"वीडियो खोलो", "मूवी खोलो"}},
	{action.OpenMusic, []string{"open music", "music kholo", "gaane kholo", "music", "songs", "gaane", "म्यूजिक खोलो", "गाने खोलो"}},
	{action.OpenHome, []string{"open home", "home kholo", "home directory", "home folder", "home", "main folder", "होम खोलो"}},
	{action.SearchFiles, []string{"search file", "file dhoondo", "find file", "dhundho", "search karo",
		"फ़ाइल ढूंढो", "फाइल ढूंढो", "खोजो", "सर्च करो", "फाइल सर्च करो"}},
	{action.CreateFolder, []string{"create folder", "naya folder", "new folder", "folder banao", "नया फोल्डर", "नया फोल्डर बनाओ", "फोल्डर क्रिएट करो"}},
	{action.DeleteFile, []string{"delete file", "file hatao", "remove file", "delete karo", "hatao", "फ़ाइल हटाओ", "फाइल डिलीट करो", "हटाओ", "डिलीट करो"}},
	{action.CopyFile, []string{"copy file", "file copy karo", "duplicate", "कॉपी फ़ाइल", "फ़ाइल कॉपी करो", "फाइल कॉपी करो"}},
	{action.MoveFile, []string{"move file", "file move karo", "shift karo", "फाइल स्थानांतरित करो", "फाइल मूव करो"}},
	{action.RenameFile, []string{"rename file", "file ka naam badlo", "naam badlo", "नाम बदलो", "फाइल का नाम बदलो"}},

	// Media processing
	{action.OCRImage, []string{"extract text from image", "image se text nikalo", "ocr image", "text nikalo",
		"इमेज से टेक्स्ट निकालो", "फोटो से टेक्स्ट निकालो", "टेक्स्ट निकालो"}},
	{action.OCRPDF, []string{"extract text from pdf", "pdf se text nikalo", "read pdf", "pdf padho", "पीडीएफ से टेक्स्ट निकालो", "पीडीएफ पढ़ो"}},
	{action.ExtractText, []string{"extract text", "text nikalo", "copy text", "text copy karo", "टेक्स्ट निकालो", "टेक्स्ट कॉपी करो"}},
	{action.ConvertImage, []string{"convert image", "image convert karo", "format change karo", "इमेज कन्वर्ट करो", "इमेज का फॉर्मेट बदलो"}},
	{action.ResizeImage, []string{"resize image", "image resize karo", "size badlo", "chhota karo", "इमेज रिसाइज करो", "इमेज का साइज बदलो", "साइज बदलो"}},
	{action.CompressImage, []string{"compress image", "image compress karo", "size kam karo", "इमेज कम्प्रेस करो", "साइज कम करो"}},
	{action.MergePDFs, []string{"merge pdfs", "pdfs jodo", "combine pdfs", "पीडीएफ मिलाओ", "पीडीएफ जोड़ो"}},
	{action.PDFToImages, []string{"pdf to images", "pdf ko images mein convert karo", "पीडीएफ को इमेज में बदलो"}},
	{action.ImagesToPDF, []string{"images to pdf", "images ko pdf mein convert karo", "इमेज को पीडीएफ में बदलो"}},

	// Desktop utilities
	{action.TakeScreenshot, []string{"take screenshot", "screenshot lo", "screen capture karo", "photo lo", "स्क्रीनशॉट लो", "स्क्रीन कैप्चर करो", "फोटो लो"}},
	{action.GetClipboard, []string{"get clipboard", "clipboard dekhoo", "copy kiya hua dekhoo", "क्लिपबोर्ड देखो", "क्या कॉपी किया है"}},
	{action.SetClipboard, []string{"set clipboard", "clipboard mein daalo", "copy karo", "क्लिपबोर्ड में डालो", "कॉपी करो"}},
	{action.MediaPlay, []string{"play media", "play pause", "music chalao", "video chalao",
		"मीडिया चलाओ", "म्यूजिक चलाओ", "गाना चलाओ", "वीडियो चलाओ", "प्ले", "पॉज", "रोको", "चलाओ",
		"play music", "play song", "play audio", "play video", "start music", "start playing", "start song",
		"resume music", "resume media", "resume playing", "pause music", "pause song", "pause media",
		"toggle music", "toggle media"}},
	{action.MediaNext, []string{"next track", "agla gaana", "next song", "next music", "skip song", "skip track", "अगला गाना", "नेक्स्ट ट्रैक", "अगला"}},
	{action.MediaPrevious, []string{"previous track", "pichla gaana", "previous song", "prev track", "previous music", "पिछला गाना", "पीछे का गाना", "पिछला"}},
	{action.ChangeWallpaper, []string{"change wallpaper", "wallpaper badlo", "background badlo", "desktop picture",
		"वॉलपेपर बदलो", "बैकग्राउंड बदलो", "वॉलपेपर चेंज करो"}},
	{action.EmptyRecycleBin, []string{"empty recycle bin", "recycle bin khali karo", "trash saaf karo", "kachra saaf karo",
		"रीसायकल बिन खाली करो", "रिसाइकिल बिन खाली करो", "कूड़ा साफ करो", "कचरा साफ करो"}},
	{action.ToggleTaskbar, []string{"toggle taskbar", "taskbar chhupao", "taskbar dikhao", "taskbar hide", "taskbar show",
		"टास्कबार छुपाओ", "टास्कबार दिखाओ", "टास्कबार हाइड करो"}},
	{action.ZoomIn, []string{"zoom in", "screen zoom karo", "bada dikhao", "zoom badhao", "ज़ूम इन", "ज़ूम करो", "स्क्रीन बड़ी करो", "बड़ा दिखाओ"}},
	{action.ZoomOut, []string{"zoom out", "screen zoom kam karo", "chhota dikhao", "zoom ghatao", "ज़ूम आउट", "ज़ूम कम करो", "छोटा दिखाओ"}},
	{action.BatchPDF, []string{"images to pdf", "sare photo pdf banao", "folder pdf banao", "batch pdf",
		"सारी फोटो पीडीएफ बनाओ", "फोल्डर पीडीएफ बनाओ", "सभी इमेज की पीडीएफ बनाओ"}},
	{action.ScanFolder, []string{"scan folder", "folder scan karo", "file dhoondo folder mein", "फोल्डर स्कैन करो", "फोल्डर में ढूंढो"}},
	{action.MakeDrawing, []string{"make drawing", "drawing banao", "paint kholo", "sketch banao", "ड्राइंग बनाओ", "पेंट खोलो", "स्केच बनाओ"}},
	{action.GetSelectedText, []string{"get selected text", "select kiya hua text", "selected text padho", "text copy karo selection se",
		"सेलेक्ट किया हुआ टेक्स्ट", "चुना हुआ टेक्स्ट पढ़ो", "सेलेक्टेड टेक्स्ट"}},

	// Web
	{action.GoogleSearch, []string{"search", "google search", "dhoondo", "dhundo", "pata karo", "khojo", "search karo",
		"सर्च", "गूगल सर्च", "ढूंढो", "पता करो", "खोजो", "सर्च करो"}},
	{action.OpenBrowser, []string{"open browser", "browser kholo", "new tab", "naya tab", "internet kholo",
		"ब्राउज़र खोलो", "नया टैब", "नया टैब खोलो", "इंटरनेट खोलो"}},

	// Automation
	{action.RunMacro, []string{"run macro", "macro chalao", "मैक्रो चलाओ"}},
	{action.AutomationStatus, []string{"automation status", "scheduler status", "automation ka status", "ऑटोमेशन स्टेटस"}},
}

// DefaultEntries returns the stock table as language-tagged entries. Each
// phrase is tagged with the language the detector assigns to it, so a key
// typically yields one English and one Hindi entry.
func DefaultEntries() []Entry {
	out := make([]Entry, 0, 2*len(builtin))
	for _, set := range builtin {
		var en, hi []string
		for _, p := range set.phrases {
			if Detect(Normalize(p)) == lang.Hindi {
				hi = append(hi, p)
			} else {
				en = append(en, p)
			}
		}
		if len(en) > 0 {
			out = append(out, Entry{Language: lang.English, Key: set.key, Phrases: en})
		}
		if len(hi) > 0 {
			out = append(out, Entry{Language: lang.Hindi, Key: set.key, Phrases: hi})
		}
	}
	return out
}

// Default compiles the stock table.
func Default() *Lexicon {
	return MustNew(DefaultEntries()...)
}
