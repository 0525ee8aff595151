package model

// UnknownSource is recorded when the export does not name its page image.
const UnknownSource = "unknown"

// AnnotationRecord describes one exported crop. It is appended once to the
// record log and never changed afterwards.
type AnnotationRecord struct {
	Category string `json:"category"`
	// DateTime is kept exactly as the client sent it.
	DateTime  string `json:"dateTime"`
	FilePath  string `json:"filePath"`
	FromImage string `json:"fromImage"`
}
