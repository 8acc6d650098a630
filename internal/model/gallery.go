package model

// GalleryImage is the public projection of a published image message.
type GalleryImage struct {
	ImageURL string `json:"imageUrl"`
	UserName string `json:"userName"`
}
