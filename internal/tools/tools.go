// Package tools holds the closed set of Notion tools: their argument
// descriptors, argument validation and handlers.
//
// The table is built once at package initialization and never mutated.
// Lookup is an exhaustive switch over the known names, so adding a tool means
// adding a name constant, a descriptor and a case.
package tools

import (
	"context"

	"github.com/iancoleman/strcase"

	"github.com/fyrsmithlabs/notionctl/internal/failure"
)

// Tool names.
const (
	Setup             = "setup"
	Fetch             = "fetch"
	Search            = "search"
	CreatePage        = "create-page"
	UpdatePage        = "update-page"
	CreateDatabase    = "create-database"
	UpdateDatabase    = "update-database"
	QueryDatabase     = "query-database"
	QueryMeetingNotes = "query-meeting-notes"
	CreateComment     = "create-comment"
	GetComments       = "get-comments"
	GetUsers          = "get-users"
	GetTeams          = "get-teams"
	MovePage          = "move-page"
	DuplicatePage     = "duplicate-page"
	Blocks            = "blocks"
)

// ProtocolPrefix is prepended to tool names exposed over MCP.
const ProtocolPrefix = "notion_"

// Kind is the expected shape of an argument.
type Kind string

const (
	KindString  Kind = "string"
	KindInteger Kind = "integer"
	KindBoolean Kind = "boolean"
	KindEnum    Kind = "enum"
	// KindObject accepts a JSON object or array, either as a decoded value
	// or as a string holding JSON text.
	KindObject Kind = "object"
)

// Field describes one tool argument.
type Field struct {
	Name        string
	Kind        Kind
	Required    bool
	Enum        []string
	Default     any
	Positional  bool
	Description string
}

// Handler executes a tool with validated arguments.
type Handler func(ctx context.Context, env *Env, args map[string]any) (any, error)

// Descriptor is the static definition of a tool.
type Descriptor struct {
	Name        string
	Description string
	Fields      []Field
	Handler     Handler
}

// ProtocolName is the tool's MCP name, e.g. notion_create_page.
func (d Descriptor) ProtocolName() string {
	return ProtocolPrefix + strcase.ToSnake(d.Name)
}

// Field returns the named field.
func (d Descriptor) Field(name string) (Field, bool) {
	for _, f := range d.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Required lists the names of required fields in declaration order.
func (d Descriptor) Required() []string {
	var out []string
	for _, f := range d.Fields {
		if f.Required {
			out = append(out, f.Name)
		}
	}
	return out
}

// Lookup returns the descriptor for name, or an UnknownTool error.
func Lookup(name string) (Descriptor, error) {
	switch name {
	case Setup:
		return setupTool, nil
	case Fetch:
		return fetchTool, nil
	case Search:
		return searchTool, nil
	case CreatePage:
		return createPageTool, nil
	case UpdatePage:
		return updatePageTool, nil
	case CreateDatabase:
		return createDatabaseTool, nil
	case UpdateDatabase:
		return updateDatabaseTool, nil
	case QueryDatabase:
		return queryDatabaseTool, nil
	case QueryMeetingNotes:
		return queryMeetingNotesTool, nil
	case CreateComment:
		return createCommentTool, nil
	case GetComments:
		return getCommentsTool, nil
	case GetUsers:
		return getUsersTool, nil
	case GetTeams:
		return getTeamsTool, nil
	case MovePage:
		return movePageTool, nil
	case DuplicatePage:
		return duplicatePageTool, nil
	case Blocks:
		return blocksTool, nil
	default:
		return Descriptor{}, failure.Unknown(name)
	}
}

// LookupProtocol resolves an MCP tool name (notion_<snake_name>).
func LookupProtocol(name string) (Descriptor, error) {
	for _, d := range All() {
		if d.ProtocolName() == name {
			return d, nil
		}
	}
	return Descriptor{}, failure.Unknown(name)
}

// All returns every descriptor in a fixed order.
func All() []Descriptor {
	return []Descriptor{
		setupTool,
		fetchTool,
		searchTool,
		createPageTool,
		updatePageTool,
		createDatabaseTool,
		updateDatabaseTool,
		queryDatabaseTool,
		queryMeetingNotesTool,
		createCommentTool,
		getCommentsTool,
		getUsersTool,
		getTeamsTool,
		movePageTool,
		duplicatePageTool,
		blocksTool,
	}
}

// Names returns every tool name in the order of All.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, d := range all {
		names[i] = d.Name
	}
	return names
}
