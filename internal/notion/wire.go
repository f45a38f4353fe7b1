package notion

import "github.com/starford/notion-import/internal/models"

// RichText is a text segment of a rich_text array.
type RichText struct {
	Type string      `json:"type"`
	Text TextContent `json:"text"`
}

// TextContent holds plain text content.
type TextContent struct {
	Content string `json:"content"`
}

// Block is the wire form of a block child.
type Block struct {
	Object    string     `json:"object"`
	Type      string     `json:"type"`
	Paragraph *Paragraph `json:"paragraph,omitempty"`
	Image     *Image     `json:"image,omitempty"`
}

// Paragraph is the body of a paragraph block.
type Paragraph struct {
	RichText []RichText `json:"rich_text"`
}

// Image is the body of an external image block.
type Image struct {
	Type     string      `json:"type"`
	External ExternalURL `json:"external"`
	Caption  []RichText  `json:"caption"`
}

// ExternalURL points at a file hosted outside Notion.
type ExternalURL struct {
	URL string `json:"url"`
}

type parentRef struct {
	PageID string `json:"page_id"`
}

type titleProperty struct {
	Title []RichText `json:"title"`
}

type createPageRequest struct {
	Parent     parentRef                `json:"parent"`
	Properties map[string]titleProperty `json:"properties"`
}

type appendChildrenRequest struct {
	Children []Block `json:"children"`
}

// Page is the subset of a page object the importer reads.
type Page struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	URL    string `json:"url"`
}

// User is the subset of a user object the importer reads.
type User struct {
	Object string `json:"object"`
	ID     string `json:"id"`
	Type   string `json:"type"`
	Name   string `json:"name"`
}

type userList struct {
	Results []User `json:"results"`
}

func text(s string) []RichText {
	if s == "" {
		return []RichText{}
	}
	return []RichText{{Type: "text", Text: TextContent{Content: s}}}
}

// EncodeBlock converts a domain block into its wire form.
func EncodeBlock(b models.Block) Block {
	switch b.Type {
	case models.BlockTypeImage:
		return Block{
			Object: "block",
			Type:   "image",
			Image: &Image{
				Type:     "external",
				External: ExternalURL{URL: b.URL},
				Caption:  text(b.Caption),
			},
		}
	default:
		return Block{
			Object:    "block",
			Type:      "paragraph",
			Paragraph: &Paragraph{RichText: text(b.Text)},
		}
	}
}

// EncodeBlocks converts blocks preserving order.
func EncodeBlocks(blocks []models.Block) []Block {
	out := make([]Block, len(blocks))
	for i, b := range blocks {
		out[i] = EncodeBlock(b)
	}
	return out
}
