package models

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

// Flash is a one-shot notification shown on the next rendered page.
type Flash struct {
	Kind        FlashKind `json:"kind"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
}

func NewErrorFlash(title, description string) *Flash {
	return &Flash{Kind: FlashError, Title: title, Description: description}
}

func NewSuccessFlash(title, description string) *Flash {
	return &Flash{Kind: FlashSuccess, Title: title, Description: description}
}
