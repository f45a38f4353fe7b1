// Package models defines the domain types shared by the importer packages.
package models

// BlockType identifies the variant carried by a Block.
type BlockType string

const (
	BlockTypeParagraph BlockType = "paragraph"
	BlockTypeImage     BlockType = "image"
)

// Block is one content unit attached to a remote page.
// Paragraph blocks use Text; image blocks use URL and Caption.
type Block struct {
	Type    BlockType `json:"type"`
	Text    string    `json:"text,omitempty"`
	URL     string    `json:"url,omitempty"`
	Caption string    `json:"caption,omitempty"`
}

// Paragraph returns a paragraph block holding text.
func Paragraph(text string) Block {
	return Block{Type: BlockTypeParagraph, Text: text}
}

// Image returns an image block pointing at a hosted url.
func Image(url, caption string) Block {
	return Block{Type: BlockTypeImage, URL: url, Caption: caption}
}

// CountImages returns the number of image blocks in blocks.
func CountImages(blocks []Block) int {
	n := 0
	for _, b := range blocks {
		if b.Type == BlockTypeImage {
			n++
		}
	}
	return n
}

// ResourceFile is a local file eligible for rehosting.
type ResourceFile struct {
	Path string `json:"path"` // absolute path
	Name string `json:"name"`
	Stem string `json:"stem"`
}
