package tools

func str(name, desc string) Field {
	return Field{Name: name, Kind: KindString, Description: desc}
}

func integer(name, desc string) Field {
	return Field{Name: name, Kind: KindInteger, Description: desc}
}

func flag(name, desc string) Field {
	return Field{Name: name, Kind: KindBoolean, Description: desc}
}

func enum(name, desc string, values ...string) Field {
	return Field{Name: name, Kind: KindEnum, Enum: values, Description: desc}
}

func object(name, desc string) Field {
	return Field{Name: name, Kind: KindObject, Description: desc}
}

func required(f Field) Field {
	f.Required = true
	return f
}

func positional(f Field) Field {
	f.Positional = true
	return f
}

func withDefault(f Field, v any) Field {
	f.Default = v
	return f
}

const maxResultsDesc = "Maximum number of results to return (0 for all)"

var setupTool = Descriptor{
	Name:        Setup,
	Description: "Store an API token in the OS keychain and/or verify the current token",
	Fields: []Field{
		str("token", "API token to store in the keychain"),
		flag("verify", "Verify the token by calling /users/me"),
	},
	Handler: bind(handleSetup),
}

var fetchTool = Descriptor{
	Name:        Fetch,
	Description: "Retrieve a page, database or block by ID or URL",
	Fields: []Field{
		positional(required(str("id", "Page, database or block ID or URL"))),
		enum("type", "Object type; detected automatically when omitted", "page", "database", "block"),
		flag("include_children", "Recursively fetch child blocks"),
	},
	Handler: bind(handleFetch),
}

var searchTool = Descriptor{
	Name:        Search,
	Description: "Search pages and databases in the workspace",
	Fields: []Field{
		positional(required(str("query", "Search query"))),
		enum("filter", "Restrict results to one object type", "page", "database"),
		enum("sort", "Sort by last edited time", "asc", "desc"),
		integer("max_results", maxResultsDesc),
	},
	Handler: bind(handleSearch),
}

var createPageTool = Descriptor{
	Name:        CreatePage,
	Description: "Create a page under a page or database",
	Fields: []Field{
		required(str("parent_id", "Parent page or database ID or URL")),
		str("title", "Page title"),
		withDefault(enum("parent_type", "Kind of parent", "page_id", "database_id"), "page_id"),
		withDefault(str("title_property", "Title property name when the parent is a database"), "Name"),
		object("properties_json", "Page properties object"),
		object("content_json", "Array of block objects for the page body"),
		str("content_text", "Plain text body, added as a paragraph"),
		str("icon_emoji", "Page icon emoji"),
		str("cover_url", "Cover image URL"),
	},
	Handler: bind(handleCreatePage),
}

var updatePageTool = Descriptor{
	Name:        UpdatePage,
	Description: "Update a page's properties, metadata or content",
	Fields: []Field{
		positional(required(str("page_id", "Page ID or URL"))),
		object("properties_json", "Properties to update"),
		str("title", "New page title"),
		flag("archive", "Move the page to trash"),
		flag("unarchive", "Restore the page from trash"),
		str("icon_emoji", "New icon emoji"),
		str("cover_url", "New cover image URL"),
		object("append_blocks_json", "Array of blocks to append"),
		str("append_text", "Text to append as a paragraph"),
	},
	Handler: bind(handleUpdatePage),
}

var createDatabaseTool = Descriptor{
	Name:        CreateDatabase,
	Description: "Create a database under a page",
	Fields: []Field{
		required(str("parent_id", "Parent page ID or URL")),
		required(str("title", "Database title")),
		required(object("properties_json", "Property schema object")),
		str("description", "Database description"),
		flag("inline", "Create the database inline"),
		str("icon_emoji", "Database icon emoji"),
	},
	Handler: bind(handleCreateDatabase),
}

var updateDatabaseTool = Descriptor{
	Name:        UpdateDatabase,
	Description: "Update a database's title, description or schema",
	Fields: []Field{
		positional(required(str("database_id", "Database ID or URL"))),
		str("title", "New title"),
		str("description", "New description"),
		object("properties_json", "Properties to add or update"),
		str("remove_properties", "Comma separated property names to remove"),
		flag("archive", "Move the database to trash"),
	},
	Handler: bind(handleUpdateDatabase),
}

var queryDatabaseTool = Descriptor{
	Name:        QueryDatabase,
	Description: "Query a database with optional filter and sorts",
	Fields: []Field{
		positional(required(str("database_id", "Database ID or URL"))),
		object("filter_json", "Filter object"),
		object("sorts_json", "Array of sort objects"),
		integer("max_results", maxResultsDesc),
		integer("page_size", "Page size for manual pagination (at most 100)"),
		str("cursor", "Start cursor for manual pagination"),
		flag("no_auto_paginate", "Return a single page of results"),
	},
	Handler: bind(handleQueryDatabase),
}

var queryMeetingNotesTool = Descriptor{
	Name:        QueryMeetingNotes,
	Description: "Find meeting note pages by title, creation date and attendee",
	Fields: []Field{
		str("title_contains", "Title keyword (default \"meeting\")"),
		str("date_from", "Earliest creation date (YYYY-MM-DD)"),
		str("date_to", "Latest creation date (YYYY-MM-DD)"),
		enum("date_relative", "Relative creation window", "past_week", "past_month", "this_week"),
		str("attendee_id", "User ID that created the page or is listed in a people property"),
		withDefault(integer("max_results", "Maximum number of pages to scan (0 means the default)"), meetingScanLimit),
	},
	Handler: bind(handleQueryMeetingNotes),
}

var createCommentTool = Descriptor{
	Name:        CreateComment,
	Description: "Add a comment to a page or reply to a discussion",
	Fields: []Field{
		str("parent_id", "Page ID or URL"),
		str("discussion_id", "Discussion to reply to"),
		str("text", "Comment text"),
		object("rich_text_json", "Rich text array"),
	},
	Handler: bind(handleCreateComment),
}

var getCommentsTool = Descriptor{
	Name:        GetComments,
	Description: "List comments on a page or block",
	Fields: []Field{
		positional(required(str("page_id", "Page or block ID or URL"))),
		integer("max_results", maxResultsDesc),
	},
	Handler: bind(handleGetComments),
}

var getUsersTool = Descriptor{
	Name:        GetUsers,
	Description: "List workspace users or fetch one user",
	Fields: []Field{
		str("query", "Filter by name or email"),
		str("user_id", "Fetch a single user; \"me\" for the integration bot"),
		integer("max_results", maxResultsDesc),
	},
	Handler: bind(handleGetUsers),
}

var getTeamsTool = Descriptor{
	Name:        GetTeams,
	Description: "List teamspaces (returns workspace users, the public API has no teams endpoint)",
	Fields: []Field{
		str("query", "Filter by name"),
	},
	Handler: bind(handleGetTeams),
}

var movePageTool = Descriptor{
	Name:        MovePage,
	Description: "Move one or more pages to a new parent",
	Fields: []Field{
		positional(required(str("page_ids", "Comma separated page IDs or URLs"))),
		required(str("new_parent_id", "New parent ID or URL")),
		withDefault(enum("new_parent_type", "Kind of new parent", "page_id", "database_id"), "page_id"),
	},
	Handler: bind(handleMovePage),
}

var duplicatePageTool = Descriptor{
	Name:        DuplicatePage,
	Description: "Copy a page with its properties and content",
	Fields: []Field{
		positional(required(str("page_id", "Source page ID or URL"))),
		str("new_title", "Title for the copy (default \"Copy of <title>\")"),
		str("new_parent_id", "Parent page for the copy (default: same parent)"),
	},
	Handler: bind(handleDuplicatePage),
}

var blocksTool = Descriptor{
	Name:        Blocks,
	Description: "Get, list, append, update or delete blocks",
	Fields: []Field{
		positional(required(enum("action", "Block operation", blockActions...))),
		positional(str("block_id", "Block ID or URL")),
		object("blocks_json", "Array of blocks to append"),
		object("block_json", "Block update object"),
		str("text", "Text to append as a paragraph"),
		integer("max_results", maxResultsDesc),
	},
	Handler: bind(handleBlocks),
}
