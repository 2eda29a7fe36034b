package notion

import (
	"context"
	"net/http"
	"strings"
)

// MaxChildDepth bounds recursive child fetches.
const MaxChildDepth = 10

// MaxAppendBlocks is the number of blocks Notion accepts per append.
const MaxAppendBlocks = 100

// RichText converts plain text to a single-element rich text array.
func RichText(text string) []any {
	return []any{
		Object{
			"type": "text",
			"text": Object{"content": text},
			"annotations": Object{
				"bold":          false,
				"italic":        false,
				"strikethrough": false,
				"underline":     false,
				"code":          false,
				"color":         "default",
			},
		},
	}
}

// Paragraph builds a paragraph block holding text.
func Paragraph(text string) Object {
	return Object{
		"object":    "block",
		"type":      "paragraph",
		"paragraph": Object{"rich_text": RichText(text)},
	}
}

// PlainText concatenates the plain text of a rich text array.
func PlainText(richText []any) string {
	var b strings.Builder
	for _, item := range richText {
		rt, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if s, ok := rt["plain_text"].(string); ok {
			b.WriteString(s)
			continue
		}
		if text, ok := rt["text"].(map[string]any); ok {
			if s, ok := text["content"].(string); ok {
				b.WriteString(s)
			}
		}
	}
	return b.String()
}

// Chunk splits blocks into slices of at most size elements.
func Chunk(blocks []any, size int) [][]any {
	if size <= 0 {
		size = MaxAppendBlocks
	}
	chunks := make([][]any, 0, (len(blocks)+size-1)/size)
	for i := 0; i < len(blocks); i += size {
		end := i + size
		if end > len(blocks) {
			end = len(blocks)
		}
		chunks = append(chunks, blocks[i:end])
	}
	return chunks
}

// AppendChildren appends blocks under parentID in MaxAppendBlocks batches and
// returns the last response. The batches are sequential and not atomic.
func AppendChildren(ctx context.Context, c Caller, parentID string, blocks []any) (Object, error) {
	var resp Object
	for _, chunk := range Chunk(blocks, MaxAppendBlocks) {
		var err error
		resp, err = c.Call(ctx, http.MethodPatch, "/blocks/"+parentID+"/children", nil, Object{"children": chunk})
		if err != nil {
			return nil, err
		}
	}
	return resp, nil
}

// FetchChildren returns the children of blockID, descending into blocks
// with has_children up to maxDepth levels. Nested children are stored under
// each block's "children" key.
func FetchChildren(ctx context.Context, c Caller, blockID string, maxDepth int) ([]any, error) {
	return fetchChildren(ctx, c, blockID, maxDepth, 0)
}

func fetchChildren(ctx context.Context, c Caller, blockID string, maxDepth, depth int) ([]any, error) {
	if depth >= maxDepth {
		return []any{}, nil
	}

	page, err := Paginate(ctx, c, http.MethodGet, "/blocks/"+blockID+"/children", nil, nil, 0)
	if err != nil {
		return nil, err
	}
	blocks, _ := page["results"].([]any)

	for _, item := range blocks {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if has, _ := block["has_children"].(bool); !has {
			continue
		}
		id, _ := block["id"].(string)
		if id == "" {
			continue
		}
		children, err := fetchChildren(ctx, c, id, maxDepth, depth+1)
		if err != nil {
			return nil, err
		}
		block["children"] = children
	}
	return blocks, nil
}

// readOnlyBlockFields are dropped from block content when copying.
var readOnlyBlockFields = []string{"id", "created_time", "last_edited_time"}

// PrepareBlocksForCopy strips identifiers and read-only fields from fetched
// blocks so they can be sent as new children. Nested children are moved into
// the type-specific content. Blocks without a type are skipped.
func PrepareBlocksForCopy(blocks []any) []any {
	prepared := make([]any, 0, len(blocks))
	for _, item := range blocks {
		block, ok := item.(map[string]any)
		if !ok {
			continue
		}
		blockType, _ := block["type"].(string)
		if blockType == "" {
			continue
		}

		out := Object{"object": "block", "type": blockType}

		content, hasContent := block[blockType].(map[string]any)
		if hasContent {
			copied := make(Object, len(content))
			for k, v := range content {
				copied[k] = v
			}
			for _, f := range readOnlyBlockFields {
				delete(copied, f)
			}
			out[blockType] = copied
		}

		if children, ok := block["children"].([]any); ok && len(children) > 0 {
			if nested := PrepareBlocksForCopy(children); len(nested) > 0 && hasContent {
				out[blockType].(Object)["children"] = nested
			}
		}

		prepared = append(prepared, out)
	}
	return prepared
}
