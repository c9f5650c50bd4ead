package extract

import (
	"path/filepath"
	"strings"
)

// Kind is the closed set of file families the pipeline dispatches on.
type Kind int

const (
	KindUnknown Kind = iota
	KindBlocked
	KindArchive
	KindPlainText
	KindWordDocument
	KindPDF
	KindSpreadsheet
	KindLegacySpreadsheet
	KindDelimitedTable
	KindImage
)

var kindNames = map[Kind]string{
	KindUnknown:           "unknown",
	KindBlocked:           "blocked",
	KindArchive:           "archive",
	KindPlainText:         "text",
	KindWordDocument:      "docx",
	KindPDF:               "pdf",
	KindSpreadsheet:       "xlsx",
	KindLegacySpreadsheet: "xls",
	KindDelimitedTable:    "csv",
	KindImage:             "image",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return "unknown"
}

// extensionKinds maps normalized extensions to kinds. Executable, batch and
// script-host extensions are blocked outright.
var extensionKinds = map[string]Kind{
	".txt":  KindPlainText,
	".docx": KindWordDocument,
	".pdf":  KindPDF,
	".xlsx": KindSpreadsheet,
	".xls":  KindLegacySpreadsheet,
	".csv":  KindDelimitedTable,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
	".tiff": KindImage,
	".bmp":  KindImage,
	".zip":  KindArchive,
	".rar":  KindArchive,
	".7z":   KindArchive,
	".exe":  KindBlocked,
	".com":  KindBlocked,
	".scr":  KindBlocked,
	".msi":  KindBlocked,
	".bat":  KindBlocked,
	".cmd":  KindBlocked,
	".vbs":  KindBlocked,
	".vbe":  KindBlocked,
	".js":   KindBlocked,
	".jse":  KindBlocked,
	".wsf":  KindBlocked,
	".wsh":  KindBlocked,
	".ps1":  KindBlocked,
}

// Extension returns the lower-cased extension of path, including the dot.
func Extension(path string) string {
	return strings.ToLower(filepath.Ext(path))
}

// Classify returns the Kind for a normalized extension.
func Classify(ext string) Kind {
	return extensionKinds[ext]
}

// ClassifyPath is Classify(Extension(path)).
func ClassifyPath(path string) Kind {
	return Classify(Extension(path))
}
