package dto

// UploadResponse reports the pages stored for one upload.
type UploadResponse struct {
	Message string   `json:"message"`
	Files   []string `json:"files"`
}

// GalleryData lists the stored page images as URLs, oldest page first.
type GalleryData struct {
	Images      []string `json:"images"`
	Length      int      `json:"length"`
	TotalPages  int      `json:"totalPages"`
	CurrentPage int      `json:"currentPage"`
	Limit       int      `json:"pageSize"`
}

// EditorData tells the annotation UI which page image to open.
type EditorData struct {
	ImagePath string `json:"imagePath"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
